package oab

import (
	"bytes"
	"testing"

	"github.com/aqlanhadi/stmtx/extractor/common"
	"github.com/aqlanhadi/stmtx/extractor/pdftest"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
statement:
  OAB:
    account_patterns:
      - 'Account:\s*(\d+)'
    pages: all
`

func setupTestConfig() {
	viper.Reset()
	viper.SetConfigType("yaml")
	viper.ReadConfig(bytes.NewBufferString(testConfigYAML))
}

var (
	colXs  = []float64{50, 150, 250, 350, 450}
	textXs = []float64{55, 155, 255, 355}
)

// ruledPage draws one row per entry of cells, 20 points high, starting at top.
func ruledPage(doc *pdftest.Document, top float64, cells ...[]string) *pdftest.Page {
	page := doc.AddPage()
	ys := []float64{top}
	for i, r := range cells {
		rowTop := top - float64(i)*20
		page.Row(rowTop-14, 8, textXs, r...)
		ys = append(ys, rowTop-20)
	}
	return page.Grid(colXs, ys)
}

func openDoc(t *testing.T, doc *pdftest.Document) *common.Document {
	t.Helper()
	d, err := common.OpenDocument(doc.Bytes(), "oab.pdf")
	require.NoError(t, err)
	return d
}

func TestExtract_TablesAcrossPages(t *testing.T) {
	setupTestConfig()
	doc := pdftest.New()

	ruledPage(doc, 700,
		[]string{"Date", "Description", "Amount", "Balance"},
		[]string{"01/04/2024", "TRANSFER", "-12.500", "87.500"},
	).Text(50, 760, 10, "Account: 0012345678")

	ruledPage(doc, 740,
		[]string{"02/04/2024", "DEPOSIT", "20.000", "107.500"},
		[]string{"03/04/2024", "FEE", "-1.000", "106.500"},
	)

	table, err := Extract(openDoc(t, doc))

	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "Description", "Amount", "Balance"}, table.Columns)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, []string{"01/04/2024", "TRANSFER", "-12.500", "87.500"}, table.Rows[0])
	assert.Equal(t, []string{"03/04/2024", "FEE", "-1.000", "106.500"}, table.Rows[2])
}

func TestExtract_StrokedRulings(t *testing.T) {
	setupTestConfig()
	doc := pdftest.New()
	page := doc.AddPage().Text(50, 760, 10, "Account: 0012345678")
	page.Row(686, 8, textXs, "Date", "Description", "Amount", "Balance")
	page.Row(666, 8, textXs, "01/04/2024", "TRANSFER", "-12.500", "87.500")
	page.StrokedGrid(colXs, []float64{700, 680, 660})

	table, err := Extract(openDoc(t, doc))

	require.NoError(t, err)
	assert.Equal(t, []string{"Date", "Description", "Amount", "Balance"}, table.Columns)
	assert.Equal(t, [][]string{{"01/04/2024", "TRANSFER", "-12.500", "87.500"}}, table.Rows)
}

func TestExtract_NoRuledTables(t *testing.T) {
	setupTestConfig()
	doc := pdftest.New()
	doc.AddPage().
		Text(50, 760, 10, "Account: 0012345678").
		Row(700, 8, textXs, "Date", "Description", "Amount", "Balance")

	table, err := Extract(openDoc(t, doc))

	require.NoError(t, err)
	assert.True(t, table.Empty())
}

func TestAccountPatterns(t *testing.T) {
	setupTestConfig()

	patterns, err := Extractor{}.AccountPatterns()
	require.NoError(t, err)

	acct, ok := common.FindAccountNumber("Customer\nAccount:0012345678\n", patterns)
	assert.True(t, ok)
	assert.Equal(t, "0012345678", acct)

	_, ok = common.FindAccountNumber("No account here", patterns)
	assert.False(t, ok)
}

func TestLoadConfig_SnapTolerance(t *testing.T) {
	setupTestConfig()
	viper.Set(configKey+".snap_tolerance", 5)

	cfg := loadConfig()

	assert.Equal(t, 5.0, cfg.Lattice.SnapTolerance)
	assert.Equal(t, 5.0, cfg.Lattice.JoinTolerance)
}
