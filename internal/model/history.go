package model

import "time"

// PricePoint is a single daily close.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"price"`
}

// HistorySummary holds the indicators shown above the price chart.
type HistorySummary struct {
	Last        float64  `json:"last"`
	High52w     float64  `json:"high_52w"`
	Low52w      float64  `json:"low_52w"`
	Position52w float64  `json:"position_52w"` // 0.0 ~ 1.0
	MA50        float64  `json:"ma50"`
	MA200       float64  `json:"ma200"`
	RSI14       float64  `json:"rsi14"`
	Missing     []string `json:"missing,omitempty"`
}

// PriceHistory is one year of daily closes for a symbol.
type PriceHistory struct {
	Symbol    string         `json:"symbol"`
	Points    []PricePoint   `json:"points"`
	Summary   HistorySummary `json:"summary"`
	FetchedAt time.Time      `json:"fetched_at"`
}
