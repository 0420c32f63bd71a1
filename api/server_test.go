package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aqlanhadi/stmtx/export"
	"github.com/aqlanhadi/stmtx/extractor/common"
	"github.com/aqlanhadi/stmtx/extractor/pdftest"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var dhofarXs = []float64{20, 90, 150, 200, 300, 370, 430, 500}

func dhofarStatement(withAccount bool) []byte {
	doc := pdftest.New()
	page := doc.AddPage()
	title := "Statement of Account"
	if withAccount {
		title = "Account No:  01234567890123"
	}
	page.Text(20, 770, 6, title)
	page.Row(755, 6, dhofarXs, "Transaction Date", "Value Date", "Type of", "Details", "Instrument Id", "Debits", "Credits", "Balance")
	page.Row(743, 6, dhofarXs, "01/03/2024", "01/03/2024", "POS", "GROCERY", "100201", "12.500", "", "487.500")
	page.Row(731, 6, dhofarXs, "03/03/2024", "03/03/2024", "TRF", "SALARY", "100202", "", "900.000", "1,387.500")
	return doc.Bytes()
}

func uploadRequest(t *testing.T, target string, pdf []byte, fields map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if pdf != nil {
		part, err := writer.CreateFormFile("file", "march.pdf")
		require.NoError(t, err)
		part.Write(pdf)
	}
	for k, v := range fields {
		writer.WriteField(k, v)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func serve(server *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	return w
}

func TestNew(t *testing.T) {
	server := New(Config{Port: ":9090"})

	require.NotNil(t, server)
	assert.NotNil(t, server.mux)
	assert.Equal(t, int64(32<<20), server.config.MaxMemory)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ":8080", cfg.Port)
	assert.Empty(t, cfg.DefaultBank)
}

func TestHealthEndpoint(t *testing.T) {
	w := serve(New(DefaultConfig()), httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "ok", response["status"])
}

func TestBanksEndpoint(t *testing.T) {
	w := serve(New(DefaultConfig()), httptest.NewRequest(http.MethodGet, "/banks", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var banks []bankInfo
	require.NoError(t, json.NewDecoder(w.Body).Decode(&banks))
	require.Len(t, banks, 3)
	assert.Equal(t, bankInfo{Key: common.BankMuscat, Name: "Bank Muscat"}, banks[0])
	assert.Equal(t, "OAB Bank", banks[2].Name)
}

func TestExtractEndpoint_MethodNotAllowed(t *testing.T) {
	w := serve(New(DefaultConfig()), httptest.NewRequest(http.MethodGet, "/extract", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestExtractEndpoint_NoFile(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/extract", nil)
	req.Header.Set("Content-Type", "multipart/form-data")

	w := serve(New(DefaultConfig()), req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExtractEndpoint_InvalidFile(t *testing.T) {
	req := uploadRequest(t, "/extract", []byte("not a valid pdf"), map[string]string{"bank": "OAB"})

	w := serve(New(DefaultConfig()), req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestExtractEndpoint_MissingBank(t *testing.T) {
	req := uploadRequest(t, "/extract", dhofarStatement(true), nil)

	w := serve(New(DefaultConfig()), req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "bank is required")
}

func TestExtractEndpoint_JSON(t *testing.T) {
	viper.Reset()
	req := uploadRequest(t, "/extract", dhofarStatement(true), map[string]string{"bank": "Bank Dhofar"})
	req.Header.Set(requestIDHeader, "req-1")

	w := serve(New(DefaultConfig()), req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "req-1", w.Header().Get(requestIDHeader))

	var out struct {
		Bank          string     `json:"bank"`
		Outcome       string     `json:"outcome"`
		AccountNumber string     `json:"account_number"`
		Columns       []string   `json:"columns"`
		Rows          [][]string `json:"rows"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	assert.Equal(t, "BANK_DHOFAR", out.Bank)
	assert.Equal(t, "ok", out.Outcome)
	assert.Equal(t, "01234567890123", out.AccountNumber)
	assert.Len(t, out.Columns, 8)
	assert.Len(t, out.Rows, 2)
}

func TestExtractEndpoint_DefaultBankAndNoAccount(t *testing.T) {
	viper.Reset()
	cfg := DefaultConfig()
	cfg.DefaultBank = common.BankDhofar
	req := uploadRequest(t, "/extract", dhofarStatement(false), nil)

	w := serve(New(cfg), req)

	require.Equal(t, http.StatusOK, w.Code)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	assert.Equal(t, "no_account", out["outcome"])
	assert.Equal(t, "Account Number not found.", out["message"])
}

func TestExtractEndpoint_CSVDownload(t *testing.T) {
	viper.Reset()
	req := uploadRequest(t, "/extract?format=csv", dhofarStatement(true), map[string]string{"bank": "BANK_DHOFAR"})

	w := serve(New(DefaultConfig()), req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "statement_01234567890123.csv")

	table, err := export.ReadCSV(w.Body)
	require.NoError(t, err)
	assert.Equal(t, "Transaction Date", table.Columns[0])
	assert.Equal(t, "900.000", table.Rows[1][6])
}

func TestExtractEndpoint_XLSXDownload(t *testing.T) {
	viper.Reset()
	req := uploadRequest(t, "/extract", dhofarStatement(true), map[string]string{"bank": "BANK_DHOFAR", "format": "xlsx"})

	w := serve(New(DefaultConfig()), req)

	require.Equal(t, http.StatusOK, w.Code)
	f, err := excelize.OpenReader(w.Body)
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(0)
	account, _ := f.GetCellValue(sheet, "B1")
	assert.Equal(t, "01234567890123", account)
	details, _ := f.GetCellValue(sheet, "D3")
	assert.Equal(t, "GROCERY", details)
}

func TestExtractEndpoint_DownloadWithoutAccount(t *testing.T) {
	viper.Reset()
	req := uploadRequest(t, "/extract", dhofarStatement(false), map[string]string{"bank": "BANK_DHOFAR", "format": "csv"})

	w := serve(New(DefaultConfig()), req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Account Number not found.")
}

func TestExtractEndpoint_TextOnly(t *testing.T) {
	req := uploadRequest(t, "/extract?text_only=true", dhofarStatement(true), map[string]string{"bank": "OAB"})

	w := serve(New(DefaultConfig()), req)

	require.Equal(t, http.StatusOK, w.Code)
	var out map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	assert.Equal(t, "march.pdf", out["filename"])
	assert.True(t, strings.HasPrefix(out["text"], "Account No:  01234567890123\n"), out["text"])
}

func TestMetricsEndpoint(t *testing.T) {
	viper.Reset()
	server := New(DefaultConfig())
	serve(server, uploadRequest(t, "/extract", dhofarStatement(true), map[string]string{"bank": "BANK_DHOFAR"}))

	w := serve(server, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body, _ := io.ReadAll(w.Body)
	assert.Contains(t, string(body), `stmtx_extractions_total{bank="BANK_DHOFAR",outcome="ok"} 1`)
	assert.Contains(t, string(body), "stmtx_extraction_duration_seconds_count")
}

func TestParseExtractOptions_FormValues(t *testing.T) {
	server := New(DefaultConfig())
	req := uploadRequest(t, "/extract", nil, map[string]string{"summary_only": "true", "bank": "bank muscat", "format": "XLSX"})
	req.ParseMultipartForm(32 << 20)

	opts, err := server.parseExtractOptions(req)

	require.NoError(t, err)
	assert.True(t, opts.SummaryOnly)
	assert.Equal(t, common.BankMuscat, opts.Bank)
	assert.Equal(t, export.FormatXLSX, opts.Format)
}

func TestParseExtractOptions_QueryParams(t *testing.T) {
	server := New(DefaultConfig())
	req := httptest.NewRequest(http.MethodPost, "/extract?table_only=true&text_only=true&bank=OAB", nil)

	opts, err := server.parseExtractOptions(req)

	require.NoError(t, err)
	assert.True(t, opts.TableOnly)
	assert.True(t, opts.TextOnly)
	assert.Equal(t, common.OAB, opts.Bank)
	assert.Equal(t, export.FormatJSON, opts.Format)
}

func TestParseExtractOptions_Invalid(t *testing.T) {
	server := New(DefaultConfig())

	_, err := server.parseExtractOptions(httptest.NewRequest(http.MethodPost, "/extract?bank=OAB&format=pdf", nil))
	assert.Error(t, err)

	_, err = server.parseExtractOptions(httptest.NewRequest(http.MethodPost, "/extract?bank=HSBC", nil))
	assert.Error(t, err)
}

func TestCoalesce(t *testing.T) {
	tests := []struct {
		input    []string
		expected string
	}{
		{[]string{"", "", "third"}, "third"},
		{[]string{"first", "second"}, "first"},
		{[]string{"", ""}, ""},
		{[]string{}, ""},
		{[]string{"only"}, "only"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, coalesce(tt.input...), "coalesce(%v)", tt.input)
	}
}

func TestHandler(t *testing.T) {
	server := New(DefaultConfig())

	assert.Equal(t, http.Handler(server.mux), server.Handler())
}
