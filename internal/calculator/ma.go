package calculator

import (
	"errors"

	"StockRanker/internal/model"
)

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// CalculateMA50 returns the 50-day simple moving average.
func CalculateMA50(points []model.PricePoint) (float64, error) {
	return CalculateSMA(extractCloses(points), 50)
}

// CalculateMA200 returns the 200-day simple moving average.
func CalculateMA200(points []model.PricePoint) (float64, error) {
	return CalculateSMA(extractCloses(points), 200)
}

func extractCloses(points []model.PricePoint) []float64 {
	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.Close
	}
	return closes
}
