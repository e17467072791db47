package strategy

import (
	"math"

	"StockRanker/internal/calculator"
	"StockRanker/internal/model"
)

// Threshold is one row of the band table. Unfavorable is informational: any
// value past Neutral is unfavorable.
type Threshold struct {
	Favorable      float64
	Neutral        float64
	Unfavorable    float64
	HigherIsBetter bool
}

// Thresholds defines the display bands per indicator.
var Thresholds = map[model.Indicator]Threshold{
	model.IndicatorPL:               {Favorable: 15, Neutral: 25, Unfavorable: 25},
	model.IndicatorPVP:              {Favorable: 1, Neutral: 3, Unfavorable: 3},
	model.IndicatorROE:              {Favorable: 15, Neutral: 10, Unfavorable: 0, HigherIsBetter: true},
	model.IndicatorDividendYield:    {Favorable: 6, Neutral: 4, Unfavorable: 0, HigherIsBetter: true},
	model.IndicatorGrossDebt:        {Favorable: 0, Neutral: 1, Unfavorable: 2},
	model.IndicatorRevenueGrowth:    {Favorable: 20, Neutral: 10, Unfavorable: 0, HigherIsBetter: true},
	model.IndicatorNetMargin:        {Favorable: 20, Neutral: 10, Unfavorable: 0, HigherIsBetter: true},
	model.IndicatorROIC:             {Favorable: 15, Neutral: 10, Unfavorable: 0, HigherIsBetter: true},
	model.IndicatorCurrentLiquidity: {Favorable: 2, Neutral: 1, Unfavorable: 0, HigherIsBetter: true},
}

// Classify maps a value to its display band. Unknown indicators and NaN
// values are unclassified.
func Classify(ind model.Indicator, value float64) model.Band {
	th, ok := Thresholds[ind]
	if !ok || math.IsNaN(value) {
		return model.BandUnclassified
	}
	if th.HigherIsBetter {
		switch {
		case value >= th.Favorable:
			return model.BandFavorable
		case value >= th.Neutral:
			return model.BandNeutral
		default:
			return model.BandUnfavorable
		}
	}
	switch {
	case value <= th.Favorable:
		return model.BandFavorable
	case value <= th.Neutral:
		return model.BandNeutral
	default:
		return model.BandUnfavorable
	}
}

// ClassifyText parses a raw table cell and classifies it.
func ClassifyText(ind model.Indicator, raw string) model.Band {
	v, err := calculator.ParseDecimal(raw)
	if err != nil {
		return model.BandUnclassified
	}
	return Classify(ind, v)
}

// Cells classifies every display column of a record.
func Cells(r model.FundamentalRecord) []model.Cell {
	cells := make([]model.Cell, 0, len(model.DisplayIndicators))
	for _, ind := range model.DisplayIndicators {
		raw, _ := r.Field(ind)
		cells = append(cells, model.Cell{Indicator: ind, Raw: raw, Band: ClassifyText(ind, raw)})
	}
	return cells
}
