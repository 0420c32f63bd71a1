package common

import (
	"fmt"
	"strings"

	"github.com/aqlanhadi/stmtx/extractor/tables"
)

// SchemaError reports expected columns missing from a detected header.
type SchemaError struct {
	Missing []string
	Header  []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing columns [%s] in header [%s]",
		strings.Join(e.Missing, ", "), strings.Join(e.Header, ", "))
}

// ConcatGrids stacks grids on top of each other. Rows shorter than the widest
// row are padded with empty cells.
func ConcatGrids(grids ...tables.Grid) tables.Grid {
	width := 0
	for _, g := range grids {
		for _, row := range g {
			if len(row) > width {
				width = len(row)
			}
		}
	}

	var out tables.Grid
	for _, g := range grids {
		for _, row := range g {
			out = append(out, fit(row, width))
		}
	}
	return out
}

// PromoteHeader uses row headerRow as the header. Rows above it are dropped,
// rows below it are the data.
func PromoteHeader(grid tables.Grid, headerRow int) ([]string, [][]string, bool) {
	if headerRow < 0 || headerRow >= len(grid) {
		return nil, nil, false
	}
	header := make([]string, len(grid[headerRow]))
	for i, h := range grid[headerRow] {
		header[i] = NormalizeHeader(h)
	}
	return header, grid[headerRow+1:], true
}

// Project selects the schema's columns, in schema order. Every schema column
// must be present in the header.
func Project(header []string, rows [][]string, schema []string) (Table, error) {
	index := map[string]int{}
	for i, h := range header {
		key := NormalizeHeader(h)
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	picks := make([]int, len(schema))
	var missing []string
	for i, col := range schema {
		idx, ok := index[NormalizeHeader(col)]
		if !ok {
			missing = append(missing, col)
			continue
		}
		picks[i] = idx
	}
	if len(missing) > 0 {
		return Table{}, &SchemaError{Missing: missing, Header: header}
	}

	t := Table{
		Columns: append([]string(nil), schema...),
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		out := make([]string, len(picks))
		for i, idx := range picks {
			if idx < len(row) {
				out[i] = row[idx]
			}
		}
		t.Rows = append(t.Rows, out)
	}
	return t, nil
}

// NewTable keeps every column of the header. Rows are padded or cut to the
// header width.
func NewTable(header []string, rows [][]string) Table {
	t := Table{
		Columns: append([]string(nil), header...),
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		t.Rows = append(t.Rows, fit(row, len(header)))
	}
	return t
}

func fit(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}
