package model

import "time"

// Indicator names a fundamental ratio column. The values match the keys the
// dashboard frontend uses for its table cells.
type Indicator string

const (
	IndicatorPL               Indicator = "pl"
	IndicatorPVP              Indicator = "pvp"
	IndicatorROE              Indicator = "roe"
	IndicatorDividendYield    Indicator = "divYield"
	IndicatorGrossDebt        Indicator = "divBruta"
	IndicatorRevenueGrowth    Indicator = "crescRec"
	IndicatorNetMargin        Indicator = "margLiq"
	IndicatorROIC             Indicator = "roic"
	IndicatorCurrentLiquidity Indicator = "liqCorr"
	IndicatorLiquidity2M      Indicator = "liq2m"
)

// DisplayIndicators lists the classified columns in table order.
var DisplayIndicators = []Indicator{
	IndicatorPL,
	IndicatorPVP,
	IndicatorROE,
	IndicatorDividendYield,
	IndicatorGrossDebt,
	IndicatorRevenueGrowth,
	IndicatorNetMargin,
	IndicatorROIC,
	IndicatorCurrentLiquidity,
}

// FundamentalRecord is one row of the fundamentals table, kept as the raw
// locale-formatted text it was scraped as.
type FundamentalRecord struct {
	Symbol           string `json:"papel" csv:"papel"`
	Price            string `json:"cotacao" csv:"cotacao"`
	PL               string `json:"pl" csv:"pl"`
	PVP              string `json:"pvp" csv:"pvp"`
	PSR              string `json:"psr" csv:"psr"`
	DividendYield    string `json:"divYield" csv:"divYield"`
	PAtivo           string `json:"pAtivo" csv:"pAtivo"`
	PCapGiro         string `json:"pCapGiro" csv:"pCapGiro"`
	PEbit            string `json:"pEbit" csv:"pEbit"`
	PAtivCircLiq     string `json:"pAtivCircLiq" csv:"pAtivCircLiq"`
	EVEbit           string `json:"evEbit" csv:"evEbit"`
	EVEbitda         string `json:"evEbitda" csv:"evEbitda"`
	EbitMargin       string `json:"margEbit" csv:"margEbit"`
	NetMargin        string `json:"margLiq" csv:"margLiq"`
	CurrentLiquidity string `json:"liqCorr" csv:"liqCorr"`
	ROIC             string `json:"roic" csv:"roic"`
	ROE              string `json:"roe" csv:"roe"`
	Liquidity2M      string `json:"liq2m" csv:"liq2m"`
	NetWorth         string `json:"patriLiq" csv:"patriLiq"`
	GrossDebt        string `json:"divBruta" csv:"divBruta"`
	RevenueGrowth    string `json:"crescRec" csv:"crescRec"`
}

// Field returns the raw text for a classified indicator, and false for
// indicators the record does not carry.
func (r FundamentalRecord) Field(ind Indicator) (string, bool) {
	switch ind {
	case IndicatorPL:
		return r.PL, true
	case IndicatorPVP:
		return r.PVP, true
	case IndicatorROE:
		return r.ROE, true
	case IndicatorDividendYield:
		return r.DividendYield, true
	case IndicatorGrossDebt:
		return r.GrossDebt, true
	case IndicatorRevenueGrowth:
		return r.RevenueGrowth, true
	case IndicatorNetMargin:
		return r.NetMargin, true
	case IndicatorROIC:
		return r.ROIC, true
	case IndicatorCurrentLiquidity:
		return r.CurrentLiquidity, true
	case IndicatorLiquidity2M:
		return r.Liquidity2M, true
	}
	return "", false
}

// ScoredRecord pairs a record with the score computed for it. The record
// itself is never modified.
type ScoredRecord struct {
	FundamentalRecord
	Score int `json:"score" csv:"score"`
}

// Ranking is one scored, sorted scrape of the fundamentals table.
type Ranking struct {
	Stocks    []ScoredRecord `json:"stocks"`
	Leaders   []ScoredRecord `json:"leaders"`
	FetchedAt time.Time      `json:"fetched_at"`
	Source    string         `json:"source"`
}

// Find returns the scored record for symbol and its zero-based rank.
func (r *Ranking) Find(symbol string) (ScoredRecord, int, bool) {
	for i, s := range r.Stocks {
		if s.Symbol == symbol {
			return s, i, true
		}
	}
	return ScoredRecord{}, -1, false
}
