package dataprocessing

import (
	"errors"

	"github.com/shopspring/decimal"

	"ibkrcli/pkg/contracts/domain"
)

// ContractMultiplier is the per-contract share count used to scale option
// quantity times price into notional value.
const ContractMultiplier = 100

// ErrMissingForex is returned when the daily summary has no forex rows and
// the missing-forex policy is to fail the run.
var ErrMissingForex = errors.New("daily summary has no forex rows")

// Missing-forex policies. ForexPolicyFail aborts the run; ForexPolicyZero
// treats the absent category as a zero cash balance.
const (
	ForexPolicyFail = "fail"
	ForexPolicyZero = "zero"
)

var contractMultiplier = decimal.NewFromInt(ContractMultiplier)

// CalculateMetrics derives the portfolio metrics from the classified
// daily-summary tables. Absent stock or option categories contribute zero;
// an absent forex category is governed by the configured policy because NAV
// is meaningless without a cash balance.
func CalculateMetrics(base *BaseTables, missingForexPolicy string) (domain.MetricsSnapshot, error) {
	if base.Forex == nil && missingForexPolicy != ForexPolicyZero {
		return domain.MetricsSnapshot{}, ErrMissingForex
	}

	stockValue := positionValue(base.Stocks, func(domain.PositionRecord) bool { return true })
	optionValue := positionValue(base.Options, func(domain.PositionRecord) bool { return true }).Mul(contractMultiplier)
	grossValue := stockValue.Add(optionValue)

	cash := decimal.Zero
	for _, p := range base.Forex {
		cash = cash.Add(decimal.NewFromFloat(p.CurrentQuantity))
	}
	nav := grossValue.Add(cash)

	credit := positionValue(base.Options, func(p domain.PositionRecord) bool { return p.CurrentQuantity < 0 }).Mul(contractMultiplier)
	debit := positionValue(base.Options, func(p domain.PositionRecord) bool { return p.CurrentQuantity > 0 }).Mul(contractMultiplier)

	gross, _ := grossValue.Float64()
	navF, _ := nav.Float64()
	creditF := round2(credit)
	debitF := round2(debit)

	return domain.MetricsSnapshot{
		GrossValue:    gross,
		NAV:           navF,
		OptionCredit:  creditF,
		OptionDebit:   debitF,
		OptionBalance: debitF + creditF,
	}, nil
}

// positionValue sums quantity times price over the positions that match.
func positionValue(positions []domain.PositionRecord, match func(domain.PositionRecord) bool) decimal.Decimal {
	total := decimal.Zero
	for _, p := range positions {
		if !match(p) {
			continue
		}
		value := decimal.NewFromFloat(p.CurrentQuantity).Mul(decimal.NewFromFloat(p.CurrentPrice))
		total = total.Add(value)
	}
	return total
}
