package oab

import (
	"regexp"

	"github.com/aqlanhadi/stmtx/extractor/common"
	"github.com/aqlanhadi/stmtx/extractor/tables"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	configKey = "statement." + string(common.OAB)

	defaultPages = "all"
)

var defaultAccountPatterns = []string{`Account:\s*(\d+)`}

type config struct {
	AccountPatterns []string
	Pages           string
	Lattice         tables.LatticeOptions
}

func loadConfig() config {
	cfg := config{
		AccountPatterns: defaultAccountPatterns,
		Pages:           defaultPages,
		Lattice:         tables.DefaultLatticeOptions(),
	}
	if viper.IsSet(configKey + ".account_patterns") {
		cfg.AccountPatterns = viper.GetStringSlice(configKey + ".account_patterns")
	}
	if viper.IsSet(configKey + ".pages") {
		cfg.Pages = viper.GetString(configKey + ".pages")
	}
	if tol := viper.GetFloat64(configKey + ".snap_tolerance"); tol > 0 {
		cfg.Lattice.SnapTolerance = tol
		cfg.Lattice.JoinTolerance = tol
	}
	return cfg
}

type Extractor struct{}

func (Extractor) Bank() common.Bank {
	return common.OAB
}

func (Extractor) Extract(doc *common.Document) (common.Table, error) {
	return Extract(doc)
}

func (Extractor) AccountPatterns() ([]*regexp.Regexp, error) {
	return common.CompileAccountPatterns(loadConfig().AccountPatterns)
}

// Ledger is empty: the ruled layout has no fixed column names.
func (Extractor) Ledger() common.LedgerColumns {
	return common.LedgerColumns{}
}

// Extract joins every ruled table in the document into one. The first row
// is the header and all columns are kept.
func Extract(doc *common.Document) (common.Table, error) {
	cfg := loadConfig()
	logger := log.WithFields(log.Fields{"bank": common.OAB, "file": doc.Name})

	pages, err := doc.SelectPages(cfg.Pages)
	if err != nil {
		return common.Table{}, err
	}

	var grids []tables.Grid
	for _, no := range pages {
		pc, err := doc.Page(no)
		if err != nil {
			return common.Table{}, err
		}
		grids = append(grids, tables.DetectLattice(pc, cfg.Lattice)...)
	}

	header, rows, ok := common.PromoteHeader(common.ConcatGrids(grids...), 0)
	if !ok {
		logger.Debug("📄 no ruled tables found")
		return common.Table{}, nil
	}

	logger.Debugf("📄 %d rows from %d tables", len(rows), len(grids))
	return common.NewTable(header, rows), nil
}
