package model

import "time"

// Verdicts returned by the structured analysis.
const (
	VerdictBuy     = "COMPRA"
	VerdictSell    = "VENDA"
	VerdictNeutral = "NEUTRO"
)

// Metric is one evaluated indicator inside a KeyMetrics category.
type Metric struct {
	Name       string `json:"name"`
	Value      string `json:"value"`
	Evaluation string `json:"evaluation"`
}

// MetricGroup groups metrics under a category such as "Rentabilidade".
type MetricGroup struct {
	Category string   `json:"category"`
	Metrics  []Metric `json:"metrics"`
}

// Recommendation is the final verdict with its reasoning.
type Recommendation struct {
	Verdict   string   `json:"verdict"`
	Reasoning []string `json:"reasoning"`
}

// Analysis is the structured form of an LLM narrative analysis.
type Analysis struct {
	ID             string         `json:"id,omitempty"`
	Symbol         string         `json:"symbol,omitempty"`
	Overview       string         `json:"overview"`
	PositivePoints []string       `json:"positivePoints"`
	NegativePoints []string       `json:"negativePoints"`
	KeyMetrics     []MetricGroup  `json:"keyMetrics"`
	Recommendation Recommendation `json:"recommendation"`
	Raw            string         `json:"raw,omitempty"`
	CreatedAt      time.Time      `json:"created_at,omitempty"`
}
