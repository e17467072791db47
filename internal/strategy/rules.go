package strategy

import "StockRanker/internal/model"

// Points awarded per rule.
const (
	FullCredit    = 10
	PartialCredit = 5
)

// MinLiquidity2M is the average daily traded volume (R$) that earns the
// liquidity rule.
const MinLiquidity2M = 1_000_000

// Rule awards Points when Match holds for the parsed indicator value.
type Rule struct {
	Name      string
	Indicator model.Indicator
	Points    int
	Match     func(v float64) bool
}

func atMost(limit float64) func(float64) bool  { return func(v float64) bool { return v <= limit } }
func atLeast(limit float64) func(float64) bool { return func(v float64) bool { return v >= limit } }
func within(lo, hi float64) func(float64) bool {
	return func(v float64) bool { return v >= lo && v <= hi }
}
func above(lo, hi float64) func(float64) bool {
	return func(v float64) bool { return v > lo && v <= hi }
}
func atLeastBelow(lo, hi float64) func(float64) bool {
	return func(v float64) bool { return v >= lo && v < hi }
}

// Rules is the scoring table. Full-credit and partial-credit ranges for the
// same indicator are disjoint, so at most one of them fires per indicator.
var Rules = []Rule{
	{"pl<=15", model.IndicatorPL, FullCredit, atMost(15)},
	{"pvp<=1", model.IndicatorPVP, FullCredit, atMost(1)},
	{"roe>=15", model.IndicatorROE, FullCredit, atLeast(15)},
	{"divYield>=6", model.IndicatorDividendYield, FullCredit, atLeast(6)},
	{"divBruta<=1", model.IndicatorGrossDebt, FullCredit, atMost(1)},
	{"crescRec in [10,20]", model.IndicatorRevenueGrowth, FullCredit, within(10, 20)},
	{"margLiq in [10,20]", model.IndicatorNetMargin, FullCredit, within(10, 20)},
	{"roic>=15", model.IndicatorROIC, FullCredit, atLeast(15)},
	{"liqCorr>=2", model.IndicatorCurrentLiquidity, FullCredit, atLeast(2)},
	{"liq2m>=1M", model.IndicatorLiquidity2M, FullCredit, atLeast(MinLiquidity2M)},

	{"pl in (15,25]", model.IndicatorPL, PartialCredit, above(15, 25)},
	{"pvp in (1,3]", model.IndicatorPVP, PartialCredit, above(1, 3)},
	{"roe in [10,15)", model.IndicatorROE, PartialCredit, atLeastBelow(10, 15)},
	{"divYield in [4,6)", model.IndicatorDividendYield, PartialCredit, atLeastBelow(4, 6)},
	{"divBruta in (1,2]", model.IndicatorGrossDebt, PartialCredit, above(1, 2)},
	{"roic in [10,15)", model.IndicatorROIC, PartialCredit, atLeastBelow(10, 15)},
	{"liqCorr in [1,2)", model.IndicatorCurrentLiquidity, PartialCredit, atLeastBelow(1, 2)},
}

// ScoredIndicators are the fields a record must parse to be scored.
var ScoredIndicators = []model.Indicator{
	model.IndicatorPL,
	model.IndicatorPVP,
	model.IndicatorROE,
	model.IndicatorDividendYield,
	model.IndicatorGrossDebt,
	model.IndicatorRevenueGrowth,
	model.IndicatorNetMargin,
	model.IndicatorROIC,
	model.IndicatorCurrentLiquidity,
	model.IndicatorLiquidity2M,
}
