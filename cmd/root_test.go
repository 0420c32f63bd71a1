package cmd

import (
	"testing"

	"github.com/aqlanhadi/stmtx/export"
	"github.com/aqlanhadi/stmtx/extractor"
	"github.com/aqlanhadi/stmtx/extractor/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Loads(t *testing.T) {
	viper.Reset()
	require.NoError(t, loadDefaults())

	assert.Equal(t, "3", viper.GetString("statement.BANK_MUSCAT.pages"))
	assert.Equal(t, 5, viper.GetInt("statement.BANK_MUSCAT.row_tolerance"))
	assert.Equal(t, "all", viper.GetString("statement.OAB.pages"))
	assert.Equal(t, "8080", viper.GetString("server.port"))

	formats, err := export.ParseFormats(viper.GetStringSlice("export.formats"))
	require.NoError(t, err)
	assert.Equal(t, []string{"xlsx", "csv"}, formats)
}

func TestDefaultConfig_PatternsCompile(t *testing.T) {
	viper.Reset()
	require.NoError(t, loadDefaults())

	for _, bank := range common.Banks {
		e, err := extractor.For(bank)
		require.NoError(t, err)
		patterns, err := e.AccountPatterns()
		require.NoError(t, err, bank)
		assert.NotEmpty(t, patterns, bank)
	}
}

func TestSelectedBank(t *testing.T) {
	viper.Reset()
	_, err := selectedBank()
	assert.Error(t, err)

	viper.Set("bank", "bank dhofar")
	bank, err := selectedBank()
	require.NoError(t, err)
	assert.Equal(t, common.BankDhofar, bank)
}
