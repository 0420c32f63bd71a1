package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aqlanhadi/stmtx/extractor/common"
	log "github.com/sirupsen/logrus"
)

const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Formats lists every supported output format.
var Formats = []string{FormatXLSX, FormatCSV, FormatJSON}

// FileName is the output name for an account, e.g. statement_0123.csv.
func FileName(account, ext string) string {
	return fmt.Sprintf("statement_%s.%s", account, strings.TrimPrefix(ext, "."))
}

// ParseFormats validates a list of format names. Empty means xlsx and csv.
func ParseFormats(names []string) ([]string, error) {
	if len(names) == 0 {
		return []string{FormatXLSX, FormatCSV}, nil
	}
	seen := map[string]bool{}
	out := make([]string, 0, len(names))
	for _, n := range names {
		for _, part := range strings.Split(n, ",") {
			f := strings.ToLower(strings.TrimSpace(part))
			if f == "" || seen[f] {
				continue
			}
			switch f {
			case FormatXLSX, FormatCSV, FormatJSON:
			default:
				return nil, fmt.Errorf("unknown format %q", f)
			}
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// WriteStatement writes the statement to dir once per format and returns
// the paths written. Only statements with the ok outcome can be exported.
func WriteStatement(dir string, statement common.Statement, formats []string, opts WorkbookOptions) ([]string, error) {
	if statement.Outcome != common.OutcomeOK {
		return nil, fmt.Errorf("nothing to export for %s: %s", statement.Source, statement.Outcome.Message())
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("error creating directory: %w", err)
	}

	var written []string
	for _, format := range formats {
		path := filepath.Join(dir, FileName(statement.AccountNumber, format))
		if err := writeFile(path, format, statement, opts); err != nil {
			return written, err
		}
		log.WithFields(log.Fields{"file": path, "rows": len(statement.Table.Rows)}).Info("💾 Saved")
		written = append(written, path)
	}
	return written, nil
}

func writeFile(path, format string, statement common.Statement, opts WorkbookOptions) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	switch format {
	case FormatXLSX:
		return WriteWorkbook(file, statement, opts)
	case FormatCSV:
		return WriteCSV(file, statement.Table)
	case FormatJSON:
		enc := json.NewEncoder(file)
		enc.SetIndent("", "  ")
		return enc.Encode(statement)
	}
	return fmt.Errorf("unknown format %q", format)
}
