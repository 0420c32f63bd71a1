package bank_muscat

import (
	"regexp"

	"github.com/aqlanhadi/stmtx/extractor/common"
	"github.com/aqlanhadi/stmtx/extractor/tables"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Columns is the normalized Bank Muscat layout, in output order.
var Columns = []string{"Post Date", "Value Date", "Particular", "Debit", "Credit", "Balance"}

const (
	configKey = "statement." + string(common.BankMuscat)

	// Row 0 is the statement title, row 1 the column header.
	headerRow = 1

	defaultPages        = "3"
	defaultRowTolerance = 5
)

var defaultAccountPatterns = []string{`- Current Account\s+(\d{16})`}

type config struct {
	AccountPatterns []string
	Pages           string
	RowTolerance    float64
}

func loadConfig() config {
	cfg := config{
		AccountPatterns: defaultAccountPatterns,
		Pages:           defaultPages,
		RowTolerance:    defaultRowTolerance,
	}
	if viper.IsSet(configKey + ".account_patterns") {
		cfg.AccountPatterns = viper.GetStringSlice(configKey + ".account_patterns")
	}
	if viper.IsSet(configKey + ".pages") {
		cfg.Pages = viper.GetString(configKey + ".pages")
	}
	if tol := viper.GetFloat64(configKey + ".row_tolerance"); tol > 0 {
		cfg.RowTolerance = tol
	}
	return cfg
}

type Extractor struct{}

func (Extractor) Bank() common.Bank {
	return common.BankMuscat
}

func (Extractor) Extract(doc *common.Document) (common.Table, error) {
	return Extract(doc)
}

func (Extractor) AccountPatterns() ([]*regexp.Regexp, error) {
	return common.CompileAccountPatterns(loadConfig().AccountPatterns)
}

func (Extractor) Ledger() common.LedgerColumns {
	return common.LedgerColumns{Debit: "Debit", Credit: "Credit", Balance: "Balance"}
}

// Extract reads the transaction table from each selected page on its own.
// A page without a recognizable header is skipped; the rows of the other
// pages are appended in page order.
func Extract(doc *common.Document) (common.Table, error) {
	cfg := loadConfig()
	logger := log.WithFields(log.Fields{"bank": common.BankMuscat, "file": doc.Name})

	pages, err := doc.SelectPages(cfg.Pages)
	if err != nil {
		return common.Table{}, err
	}

	opts := tables.DefaultStreamOptions()
	opts.RowTolerance = cfg.RowTolerance

	var result common.Table
	for _, no := range pages {
		pc, err := doc.Page(no)
		if err != nil {
			return common.Table{}, err
		}

		grid := tables.DetectStream(tables.Merge(pc.Glyphs), opts)
		if len(grid) < headerRow+1 {
			logger.Debugf("📄 page %d: no table", no)
			continue
		}

		header, rows, _ := common.PromoteHeader(grid, headerRow)
		page, err := common.Project(header, rows, Columns)
		if err != nil {
			logger.Warnf("⚠️ page %d skipped: %v", no, err)
			continue
		}

		logger.Debugf("📄 page %d: %d rows", no, len(page.Rows))
		result.Columns = page.Columns
		result.Rows = append(result.Rows, page.Rows...)
	}

	return result, nil
}
