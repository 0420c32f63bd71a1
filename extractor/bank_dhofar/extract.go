package bank_dhofar

import (
	"regexp"

	"github.com/aqlanhadi/stmtx/extractor/common"
	"github.com/aqlanhadi/stmtx/extractor/tables"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var Columns = []string{
	"Transaction Date", "Value Date", "Type of", "Details",
	"Instrument Id", "Debits", "Credits", "Balance",
}

const (
	configKey = "statement." + string(common.BankDhofar)

	headerRow = 1

	defaultPages        = "all"
	defaultRowTolerance = 5
)

var defaultAccountPatterns = []string{`Account No:\s+(\d{14})`}

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
	return common.BankDhofar
}

func (Extractor) Extract(doc *common.Document) (common.Table, error) {
	return Extract(doc)
}

func (Extractor) AccountPatterns() ([]*regexp.Regexp, error) {
	return common.CompileAccountPatterns(loadConfig().AccountPatterns)
}

func (Extractor) Ledger() common.LedgerColumns {
	return common.LedgerColumns{Debit: "Debits", Credit: "Credits", Balance: "Balance"}
}

// Extract stacks the stream tables of every page and reads the header from
// the second row of the combined grid.
func Extract(doc *common.Document) (common.Table, error) {
	cfg := loadConfig()
	logger := log.WithFields(log.Fields{"bank": common.BankDhofar, "file": doc.Name})

	pages, err := doc.SelectPages(cfg.Pages)
	if err != nil {
		return common.Table{}, err
	}

	opts := tables.DefaultStreamOptions()
	opts.RowTolerance = cfg.RowTolerance

	grids := make([]tables.Grid, 0, len(pages))
	for _, no := range pages {
		pc, err := doc.Page(no)
		if err != nil {
			return common.Table{}, err
		}
		if grid := tables.DetectStream(tables.Merge(pc.Glyphs), opts); len(grid) > 0 {
			grids = append(grids, grid)
		}
	}

	header, rows, ok := common.PromoteHeader(common.ConcatGrids(grids...), headerRow)
	if !ok {
		logger.Debug("📄 no table found")
		return common.Table{}, nil
	}

	table, err := common.Project(header, rows, Columns)
	if err != nil {
		logger.Warnf("⚠️ unexpected layout: %v", err)
		return common.Table{}, nil
	}

	logger.Debugf("📄 %d rows from %d pages", len(table.Rows), len(grids))
	return table, nil
}
