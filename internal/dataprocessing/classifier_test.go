package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ibkrcli/pkg/contracts/domain"
)

func normalizedSummary(rows [][]string) domain.Table {
	return domain.Table{
		Name: domain.SectionMTMSummary,
		Columns: []string{
			"asset_category",
			"symbol",
			"prior_quantity",
			"current_quantity",
			"prior_price",
			"current_price",
			"mark-to-market_p/l_position",
			"mark-to-market_p/l_transaction",
		},
		Rows: rows,
	}
}

func TestClassifyPositions(t *testing.T) {
	table := normalizedSummary([][]string{
		{"Stocks", "AAPL", "0", "10", "90.125", "100.4567", "103.555", "0"},
		{"Stocks", "MSFT", "5", "5", "300", "310", "50", "0"},
		{"Equity and Index Options", "ASTS 07FEB25 26 C", "1", "-2", "2", "1.5", "-1", "0.25"},
		{"Forex", "EUR", "50", "100", "1.04", "1.05", "0.5", "0"},
		{"Bonds", "T-NOTE", "1", "1", "99", "99", "0", "0"},
	})

	base, err := ClassifyPositions(table)
	require.NoError(t, err)

	require.Len(t, base.Stocks, 2)
	require.Len(t, base.Options, 1)
	require.Len(t, base.Forex, 1)

	aapl := base.Stocks[0]
	assert.Equal(t, domain.AssetStocks, aapl.AssetCategory)
	assert.Equal(t, "AAPL", aapl.Symbol)
	assert.True(t, aapl.IsNew)
	assert.Equal(t, 90.13, aapl.PriorPrice, "prices round to two decimals")
	assert.Equal(t, 100.46, aapl.CurrentPrice)
	assert.Equal(t, 103.56, aapl.PLDelta)

	msft := base.Stocks[1]
	assert.False(t, msft.IsNew)

	opt := base.Options[0]
	assert.Equal(t, domain.AssetOptions, opt.AssetCategory)
	assert.Equal(t, -2.0, opt.CurrentQuantity)
	assert.Equal(t, 0.25, opt.PLTransaction)

	fx := base.Forex[0]
	assert.Equal(t, domain.AssetForex, fx.AssetCategory)
	assert.Equal(t, "EUR", fx.Symbol)
}

func TestClassifyPositionsPriceCoercionDefaults(t *testing.T) {
	table := normalizedSummary([][]string{
		{"Stocks", "AAPL", "0", "10", "--", "n/a", "1", "0"},
	})

	base, err := ClassifyPositions(table)
	require.NoError(t, err)
	require.Len(t, base.Stocks, 1)
	assert.Equal(t, 0.0, base.Stocks[0].PriorPrice)
	assert.Equal(t, 0.0, base.Stocks[0].CurrentPrice)
}

// An absent category yields a nil sub-table, not an empty one.
func TestClassifyPositionsAbsentCategory(t *testing.T) {
	table := normalizedSummary([][]string{
		{"Stocks", "AAPL", "0", "10", "90", "100", "1", "0"},
	})

	base, err := ClassifyPositions(table)
	require.NoError(t, err)
	assert.NotNil(t, base.Stocks)
	assert.Nil(t, base.Options)
	assert.Nil(t, base.Forex)
}

func TestClassifyPositionsMissingColumn(t *testing.T) {
	table := domain.Table{
		Columns: []string{"asset_category", "symbol"},
		Rows:    [][]string{{"Stocks", "AAPL"}},
	}

	_, err := ClassifyPositions(table)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prior_quantity")
}

func TestDecodeOptionIdentities(t *testing.T) {
	options := []domain.PositionRecord{
		{AssetCategory: domain.AssetOptions, Symbol: "ASTS 07FEB25 26 C"},
		{AssetCategory: domain.AssetOptions, Symbol: "BADSYMBOL"},
	}

	warnings := DecodeOptionIdentities(options)

	require.NotNil(t, options[0].Identity)
	assert.Equal(t, "ASTS", options[0].Identity.Underlying)
	assert.Equal(t, "2025-02-07", options[0].Identity.ExpDate)

	assert.Nil(t, options[1].Identity, "undecodable symbol keeps a nil identity")
	require.Len(t, warnings, 1)
	assert.Equal(t, "option_symbol", warnings[0].Stage)
}
