// Package api serves statement extraction over HTTP.
// It can be started from the CLI or mounted in another server through Handler.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aqlanhadi/stmtx/export"
	"github.com/aqlanhadi/stmtx/extractor"
	"github.com/aqlanhadi/stmtx/extractor/common"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Request-ID"

// Config holds the API server configuration
type Config struct {
	Port      string
	LogPrefix string
	// DefaultBank is used when a request names no bank. Empty makes the bank
	// parameter required.
	DefaultBank common.Bank
	// MaxMemory is the part of an upload kept in memory; the rest is spooled
	// to temporary files that are removed after the request.
	MaxMemory int64
	Workbook  export.WorkbookOptions
}

// DefaultConfig returns the default API configuration
func DefaultConfig() Config {
	return Config{
		Port:      ":8080",
		LogPrefix: "API: ",
		MaxMemory: 32 << 20,
	}
}

// Server represents the HTTP API server
type Server struct {
	config  Config
	mux     *http.ServeMux
	metrics *metrics
}

// New creates a new API server with the given configuration
func New(cfg Config) *Server {
	if cfg.MaxMemory <= 0 {
		cfg.MaxMemory = DefaultConfig().MaxMemory
	}
	s := &Server{
		config:  cfg,
		mux:     http.NewServeMux(),
		metrics: newMetrics(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/extract", s.handleExtract)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/banks", s.handleBanks)
	s.mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
}

// Handler returns the http.Handler for the server
// This allows the server to be used with custom http.Server configurations
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the HTTP server (blocking)
func (s *Server) Start() error {
	log.Infof("%sStarting server on %s", s.config.LogPrefix, s.config.Port)
	return http.ListenAndServe(s.config.Port, s.mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type bankInfo struct {
	Key  common.Bank `json:"key"`
	Name string      `json:"name"`
}

func (s *Server) handleBanks(w http.ResponseWriter, r *http.Request) {
	banks := make([]bankInfo, 0, len(common.Banks))
	for _, b := range common.Banks {
		banks = append(banks, bankInfo{Key: b, Name: b.DisplayName()})
	}
	writeJSON(w, http.StatusOK, banks)
}

// handleExtract handles PDF extraction requests
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	requestID := coalesce(r.Header.Get(requestIDHeader), uuid.NewString())
	w.Header().Set(requestIDHeader, requestID)
	logger := log.WithFields(log.Fields{"request_id": requestID, "remote": r.RemoteAddr})
	logger.Debugf("%sReceived request", s.config.LogPrefix)

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(s.config.MaxMemory); err != nil {
		logger.Warnf("%sError parsing multipart form: %v", s.config.LogPrefix, err)
		http.Error(w, "Could not parse multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, handler, err := r.FormFile("file")
	if err != nil {
		logger.Warnf("%sError getting file from form: %v", s.config.LogPrefix, err)
		http.Error(w, "Could not get uploaded file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	opts, err := s.parseExtractOptions(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	logger = logger.WithFields(log.Fields{"bank": opts.Bank, "file": handler.Filename})

	doc, err := common.ReadDocument(file, handler.Filename)
	if err != nil {
		logger.Warnf("%sError reading document: %v", s.config.LogPrefix, err)
		http.Error(w, "Could not read PDF: "+err.Error(), http.StatusBadRequest)
		return
	}

	if opts.TextOnly {
		s.handleTextOnlyExtract(w, doc, handler.Filename)
		return
	}

	started := time.Now()
	statement, err := extractor.Process(doc, opts.Bank)
	if err != nil {
		s.metrics.observe(opts.Bank, outcomeError, started)
		logger.Errorf("%sExtraction failed: %v", s.config.LogPrefix, err)
		http.Error(w, "Could not extract statement: "+err.Error(), http.StatusBadRequest)
		return
	}
	s.metrics.observe(opts.Bank, string(statement.Outcome), started)
	logger.WithField("outcome", statement.Outcome).Infof("%sExtracted %d rows", s.config.LogPrefix, len(statement.Table.Rows))

	if opts.Format == export.FormatJSON {
		writeJSON(w, http.StatusOK, extractor.CreateFinalOutput(statement, opts.TableOnly, opts.SummaryOnly))
		return
	}

	if statement.Outcome != common.OutcomeOK {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"outcome": string(statement.Outcome),
			"message": statement.Outcome.Message(),
		})
		return
	}
	s.writeDownload(w, statement, opts.Format)
}

func (s *Server) writeDownload(w http.ResponseWriter, statement common.Statement, format string) {
	var (
		buf         bytes.Buffer
		err         error
		contentType string
	)
	switch format {
	case export.FormatCSV:
		contentType = "text/csv"
		err = export.WriteCSV(&buf, statement.Table)
	case export.FormatXLSX:
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = export.WriteWorkbook(&buf, statement, s.config.Workbook)
	}
	if err != nil {
		log.Errorf("%sError exporting %s: %v", s.config.LogPrefix, format, err)
		http.Error(w, "Could not export statement", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", export.FileName(statement.AccountNumber, format)))
	w.WriteHeader(http.StatusOK)
	io.Copy(w, &buf)
}

// ExtractOptions holds the options for extraction
type ExtractOptions struct {
	Bank        common.Bank
	Format      string
	TableOnly   bool
	SummaryOnly bool
	TextOnly    bool
}

// parseExtractOptions reads options from form values, falling back to the
// query string.
func (s *Server) parseExtractOptions(r *http.Request) (ExtractOptions, error) {
	value := func(key string) string {
		return coalesce(r.FormValue(key), r.URL.Query().Get(key))
	}

	opts := ExtractOptions{
		Format:      strings.ToLower(coalesce(value("format"), export.FormatJSON)),
		TableOnly:   value("table_only") == "true",
		SummaryOnly: value("summary_only") == "true",
		TextOnly:    value("text_only") == "true",
	}

	switch opts.Format {
	case export.FormatJSON, export.FormatCSV, export.FormatXLSX:
	default:
		return opts, fmt.Errorf("unsupported format %q", opts.Format)
	}

	name := value("bank")
	if name == "" {
		if s.config.DefaultBank == "" {
			return opts, fmt.Errorf("bank is required")
		}
		opts.Bank = s.config.DefaultBank
		return opts, nil
	}
	bank, err := common.ParseBank(name)
	if err != nil {
		return opts, err
	}
	opts.Bank = bank
	return opts, nil
}

func (s *Server) handleTextOnlyExtract(w http.ResponseWriter, doc *common.Document, filename string) {
	text, err := doc.Text()
	if err != nil {
		log.Warnf("%sError extracting text: %v", s.config.LogPrefix, err)
		http.Error(w, "Could not extract text from file: "+err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"filename": filename,
		"text":     text,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// coalesce returns the first non-empty string
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
