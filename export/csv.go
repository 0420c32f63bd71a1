package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/aqlanhadi/stmtx/extractor"
	"github.com/aqlanhadi/stmtx/extractor/common"
	"github.com/gocarina/gocsv"
)

// WriteCSV writes the header line followed by every row, values unchanged.
func WriteCSV(w io.Writer, table common.Table) error {
	writer := gocsv.NewSafeCSVWriter(csv.NewWriter(w))
	for _, record := range table.Records() {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("error writing CSV data: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadCSV parses a file written by WriteCSV back into a table.
func ReadCSV(r io.Reader) (common.Table, error) {
	records, err := gocsv.DefaultCSVReader(r).ReadAll()
	if err != nil {
		return common.Table{}, fmt.Errorf("error parsing CSV data: %w", err)
	}
	if len(records) == 0 {
		return common.Table{}, nil
	}
	return common.Table{Columns: records[0], Rows: records[1:]}, nil
}

// ReportRow is one line of a batch report.
type ReportRow struct {
	File          string `csv:"file"`
	Bank          string `csv:"bank"`
	Outcome       string `csv:"outcome"`
	AccountNumber string `csv:"account_number"`
	Rows          int    `csv:"rows"`
	Error         string `csv:"error"`
}

func NewReportRow(result extractor.Result) ReportRow {
	row := ReportRow{
		File:          result.Path,
		Bank:          string(result.Statement.Bank),
		Outcome:       string(result.Statement.Outcome),
		AccountNumber: result.Statement.AccountNumber,
		Rows:          len(result.Statement.Table.Rows),
	}
	if result.Err != nil {
		row.Outcome = "error"
		row.Error = result.Err.Error()
	}
	return row
}

// WriteReport writes one line per processed file.
func WriteReport(w io.Writer, results []extractor.Result) error {
	rows := make([]*ReportRow, 0, len(results))
	for _, r := range results {
		row := NewReportRow(r)
		rows = append(rows, &row)
	}
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csv.NewWriter(w))); err != nil {
		return fmt.Errorf("error writing report: %w", err)
	}
	return nil
}
