package extractor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/aqlanhadi/stmtx/extractor/bank_dhofar"
	"github.com/aqlanhadi/stmtx/extractor/bank_muscat"
	"github.com/aqlanhadi/stmtx/extractor/common"
	"github.com/aqlanhadi/stmtx/extractor/oab"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Extractor turns one bank's statement layout into a normalized table.
type Extractor interface {
	Bank() common.Bank
	// Extract returns an empty table, not an error, when the document holds
	// no usable rows for this layout.
	Extract(doc *common.Document) (common.Table, error)
	AccountPatterns() ([]*regexp.Regexp, error)
	Ledger() common.LedgerColumns
}

var registry = map[common.Bank]Extractor{}

func register(e Extractor) {
	registry[e.Bank()] = e
}

func init() {
	register(bank_muscat.Extractor{})
	register(bank_dhofar.Extractor{})
	register(oab.Extractor{})
}

// For returns the extractor registered for bank.
func For(bank common.Bank) (Extractor, error) {
	e, ok := registry[bank]
	if !ok {
		return nil, fmt.Errorf("no extractor for bank %q", bank)
	}
	return e, nil
}

// Process runs the whole workflow for one document: table first, then the
// account number. Both misses end the workflow with an outcome instead of an
// error.
func Process(doc *common.Document, bank common.Bank) (statement common.Statement, err error) {
	statement = common.Statement{
		Bank:     bank,
		Source:   doc.Source(),
		Checksum: doc.Checksum,
	}

	defer func() {
		if r := recover(); r != nil {
			statement.Outcome = ""
			err = fmt.Errorf("failed to process %s: %v", doc.Name, r)
		}
	}()

	e, err := For(bank)
	if err != nil {
		return statement, err
	}

	table, err := e.Extract(doc)
	if err != nil {
		return statement, fmt.Errorf("failed to extract tables from %s: %w", doc.Name, err)
	}
	if table.Empty() {
		statement.Outcome = common.OutcomeNoData
		return statement, nil
	}
	statement.Table = table

	patterns, err := e.AccountPatterns()
	if err != nil {
		return statement, err
	}
	text, err := doc.Text()
	if err != nil {
		return statement, fmt.Errorf("failed to read text from %s: %w", doc.Name, err)
	}

	account, ok := common.FindAccountNumber(text, patterns)
	if !ok {
		statement.Outcome = common.OutcomeNoAccount
		return statement, nil
	}

	statement.AccountNumber = account
	statement.Outcome = common.OutcomeOK
	if ledger := e.Ledger(); !ledger.IsZero() {
		summary := common.Summarize(table, ledger)
		statement.Summary = &summary
	}
	return statement, nil
}

// ProcessReader buffers r and processes it under the given name.
func ProcessReader(r io.Reader, name string, bank common.Bank) (common.Statement, error) {
	doc, err := common.ReadDocument(r, name)
	if err != nil {
		return common.Statement{Bank: bank}, err
	}
	return Process(doc, bank)
}

func ProcessFile(path string, bank common.Bank) (common.Statement, error) {
	doc, err := common.OpenDocumentFile(path)
	if err != nil {
		return common.Statement{Bank: bank}, err
	}
	return Process(doc, bank)
}

// Result is the outcome of one file of a batch.
type Result struct {
	Path      string
	Statement common.Statement
	Err       error
}

// ProcessPath processes a single PDF, or every PDF directly inside a
// directory using up to workers goroutines. Per-file failures are reported in
// the results; only an unreadable path is returned as an error. Results keep
// the directory order.
func ProcessPath(ctx context.Context, path string, bank common.Bank, workers int) ([]Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		log.WithField("file", path).Info("📄 Scanning")
		st, err := ProcessFile(path, bank)
		return []Result{{Path: path, Statement: st, Err: err}}, nil
	}

	log.WithField("dir", path).Info("📂 Scanning")
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	sort.Strings(files)

	if workers < 1 {
		workers = 1
	}
	results := make([]Result, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			st, err := ProcessFile(file, bank)
			if err != nil {
				log.WithField("file", file).Errorf("❌ %v", err)
			}
			results[i] = Result{Path: file, Statement: st, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// CreateFinalOutput shapes a statement for printing. tableOnly returns just
// the header and rows; summaryOnly drops the rows.
func CreateFinalOutput(statement common.Statement, tableOnly, summaryOnly bool) interface{} {
	if tableOnly {
		if statement.Table.Empty() {
			return [][]string{}
		}
		return statement.Table.Records()
	}

	output := map[string]interface{}{
		"bank":     statement.Bank,
		"source":   statement.Source,
		"checksum": statement.Checksum,
		"outcome":  statement.Outcome,
	}
	if statement.AccountNumber != "" {
		output["account_number"] = statement.AccountNumber
	}
	if msg := statement.Outcome.Message(); msg != "" {
		output["message"] = msg
	}
	if statement.Summary != nil {
		output["summary"] = statement.Summary
	}
	if !summaryOnly && !statement.Table.Empty() {
		output["columns"] = statement.Table.Columns
		output["rows"] = statement.Table.Rows
	}
	return output
}
