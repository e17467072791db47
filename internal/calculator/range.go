package calculator

import (
	"errors"
	"math"

	"StockRanker/internal/model"
)

// tradingDaysPerYear is the B3 session count used for the 52-week window.
const tradingDaysPerYear = 252

// Calculate52WeekRange scans the most recent 252 closes and returns the high and low.
func Calculate52WeekRange(points []model.PricePoint) (high, low float64, err error) {
	if len(points) == 0 {
		return 0, 0, errors.New("no price points provided")
	}
	n := len(points)
	start := n - tradingDaysPerYear
	if start < 0 {
		start = 0
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for i := start; i < n; i++ {
		if points[i].Close > high {
			high = points[i].Close
		}
		if points[i].Close < low {
			low = points[i].Close
		}
	}
	return high, low, nil
}

// Calculate52WeekPosition returns where the current price sits within the 52-week range (0.0~1.0).
func Calculate52WeekPosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
