package calculator

import "StockRanker/internal/model"

// Summarize computes the chart header indicators from a price history.
// Indicators that cannot be computed stay zero and are named in Missing.
func Summarize(points []model.PricePoint) model.HistorySummary {
	var s model.HistorySummary
	if len(points) == 0 {
		s.Missing = []string{"last", "range_52w", "ma50", "ma200", "rsi14"}
		return s
	}
	s.Last = points[len(points)-1].Close

	if h, l, err := Calculate52WeekRange(points); err != nil {
		s.Missing = append(s.Missing, "range_52w")
	} else {
		s.High52w, s.Low52w = h, l
		if pos, err := Calculate52WeekPosition(s.Last, h, l); err == nil {
			s.Position52w = pos
		}
	}
	if ma, err := CalculateMA50(points); err != nil {
		s.Missing = append(s.Missing, "ma50")
	} else {
		s.MA50 = ma
	}
	if ma, err := CalculateMA200(points); err != nil {
		s.Missing = append(s.Missing, "ma200")
	} else {
		s.MA200 = ma
	}
	if rsi, err := CalculateRSI(points, 14); err != nil {
		s.Missing = append(s.Missing, "rsi14")
	} else {
		s.RSI14 = rsi
	}
	return s
}
