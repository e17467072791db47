package model

// Band is the qualitative classification of an indicator value.
type Band string

const (
	BandFavorable    Band = "favorable"
	BandNeutral      Band = "neutral"
	BandUnfavorable  Band = "unfavorable"
	BandUnclassified Band = "unclassified"
)

// Cell is one classified table cell.
type Cell struct {
	Indicator Indicator `json:"indicator"`
	Raw       string    `json:"raw"`
	Band      Band      `json:"band"`
}

// RuleHit records whether one scoring rule fired for a record.
type RuleHit struct {
	Rule      string    `json:"rule"`
	Indicator Indicator `json:"indicator"`
	Points    int       `json:"points"`
	Hit       bool      `json:"hit"`
}

// StockView is the detail view of a single ranked stock.
type StockView struct {
	ScoredRecord
	Rank      int       `json:"rank"`
	Cells     []Cell    `json:"cells"`
	Breakdown []RuleHit `json:"breakdown"`
}
