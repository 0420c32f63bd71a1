// Package export writes extracted statements as workbooks, CSV and JSON.
package export

import (
	"fmt"
	"io"

	"github.com/aqlanhadi/stmtx/extractor/common"
	"github.com/aqlanhadi/stmtx/extractor/tables"
	"github.com/xuri/excelize/v2"
)

const (
	// DataStartRow is the first worksheet row holding table data.
	DataStartRow = 3

	AccountLabel = "Account Number"

	// numFmtText is the built-in "@" format; it keeps the account number a
	// string when the workbook is edited.
	numFmtText = 49
)

type WorkbookOptions struct {
	// Sheet names the worksheet. Empty keeps the default "Sheet1".
	Sheet string
	// Header writes the column names above the rows of each table.
	Header bool
}

// BuildWorkbook lays out the account number in A1:B1 and then each grid
// from DataStartRow, leaving one empty row between grids. The caller closes
// the returned file.
func BuildWorkbook(account string, grids []tables.Grid, opts WorkbookOptions) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if opts.Sheet != "" && opts.Sheet != sheet {
		if err := f.SetSheetName(sheet, opts.Sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to name sheet: %w", err)
		}
		sheet = opts.Sheet
	}

	if err := writeAccount(f, sheet, account); err != nil {
		f.Close()
		return nil, err
	}

	row := DataStartRow
	for _, grid := range grids {
		for _, cells := range grid {
			for i, value := range cells {
				cell, err := excelize.CoordinatesToCellName(i+1, row)
				if err != nil {
					f.Close()
					return nil, err
				}
				if err := f.SetCellStr(sheet, cell, value); err != nil {
					f.Close()
					return nil, err
				}
			}
			row++
		}
		row++
	}

	return f, nil
}

func writeAccount(f *excelize.File, sheet, account string) error {
	if err := f.SetCellStr(sheet, "A1", AccountLabel); err != nil {
		return err
	}
	if err := f.SetCellStr(sheet, "B1", account); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{NumFmt: numFmtText})
	if err != nil {
		return fmt.Errorf("failed to create text style: %w", err)
	}
	return f.SetCellStyle(sheet, "B1", "B1", style)
}

// StatementGrids is the table of a statement as workbook grids.
func StatementGrids(table common.Table, header bool) []tables.Grid {
	grid := make(tables.Grid, 0, len(table.Rows)+1)
	if header {
		grid = append(grid, table.Columns)
	}
	grid = append(grid, table.Rows...)
	return []tables.Grid{grid}
}

// WriteWorkbook builds the statement workbook and streams it to w.
func WriteWorkbook(w io.Writer, statement common.Statement, opts WorkbookOptions) error {
	f, err := BuildWorkbook(statement.AccountNumber, StatementGrids(statement.Table, opts.Header), opts)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
