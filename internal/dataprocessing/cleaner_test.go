package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ibkrcli/pkg/contracts/domain"
)

func summaryFixture() domain.Table {
	return domain.Table{
		Name:    domain.SectionMTMSummary,
		Columns: []string{"Header", "Asset Category", "Symbol"},
		Rows: [][]string{
			{"Data", "Stocks", "AAPL"},
			{"Data", "Stocks", "MSFT"},
			{"Total", "", "1000"},
			{"Data", "SubTotal", "x"},
			{"Header", "Asset Category", "Symbol"},
			{"Data", "Stale", "IGNORED"},
		},
	}
}

func TestCleanSection(t *testing.T) {
	cleaned := CleanSection(summaryFixture())

	require.Len(t, cleaned.Rows, 2)
	assert.Equal(t, []string{"Data", "Stocks", "AAPL"}, cleaned.Rows[0])
	assert.Equal(t, []string{"Data", "Stocks", "MSFT"}, cleaned.Rows[1])
}

// Cleaning twice must equal cleaning once.
func TestCleanSectionIdempotent(t *testing.T) {
	once := CleanSection(summaryFixture())
	twice := CleanSection(once)
	assert.Equal(t, once, twice)
}

func TestCleanSectionTotalsCaseInsensitive(t *testing.T) {
	table := domain.Table{
		Columns: []string{"Header", "Symbol"},
		Rows: [][]string{
			{"Data", "AAPL"},
			{"Data", "tOtAl"},
			{"Data", "subTOTAL in EUR"},
		},
	}

	cleaned := CleanSection(table)
	require.Len(t, cleaned.Rows, 1)
	assert.Equal(t, "AAPL", cleaned.Rows[0][1])
}

// A table without the scaffold column is returned unchanged (fail-open).
func TestCleanSectionFailOpen(t *testing.T) {
	table := domain.Table{
		Columns: []string{"Symbol", "Quantity"},
		Rows: [][]string{
			{"AAPL", "10"},
			{"Total", "10"},
		},
	}

	cleaned := CleanSection(table)
	assert.Equal(t, table, cleaned)
}

func TestCleanSectionNoRepeatedHeader(t *testing.T) {
	table := domain.Table{
		Columns: []string{"Header", "Symbol"},
		Rows: [][]string{
			{"Data", "AAPL"},
			{"Data", "MSFT"},
		},
	}

	cleaned := CleanSection(table)
	assert.Len(t, cleaned.Rows, 2)
}

func TestDropColumn(t *testing.T) {
	table := domain.Table{
		Columns: []string{"Header", "Symbol", "Quantity"},
		Rows: [][]string{
			{"Data", "AAPL", "10"},
		},
	}

	dropped := DropColumn(table, "Header")
	assert.Equal(t, []string{"Symbol", "Quantity"}, dropped.Columns)
	assert.Equal(t, [][]string{{"AAPL", "10"}}, dropped.Rows)

	same := DropColumn(table, "Missing")
	assert.Equal(t, table, same)
}

func TestNormalizeColumns(t *testing.T) {
	table := domain.Table{
		Columns: []string{"Asset Category", "Mark-to-Market P/L Position", "Symbol"},
	}

	normalized := NormalizeColumns(table)
	assert.Equal(t, []string{
		"asset_category",
		"mark-to-market_p/l_position",
		"symbol",
	}, normalized.Columns)
}
