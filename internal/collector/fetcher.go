package collector

import (
	"context"

	"StockRanker/internal/model"
)

// FundamentalsFetcher fetches the full fundamentals table.
type FundamentalsFetcher interface {
	FetchFundamentals(ctx context.Context) ([]model.FundamentalRecord, error)
	Name() string
}

// HistoryFetcher fetches one year of daily closes for a symbol.
type HistoryFetcher interface {
	FetchHistory(ctx context.Context, symbol string) ([]model.PricePoint, error)
	Name() string
}
