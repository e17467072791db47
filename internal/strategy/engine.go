package strategy

import (
	"sort"

	"StockRanker/internal/calculator"
	"StockRanker/internal/model"
)

// MaxScore is the score of a record that satisfies every full-credit rule.
const MaxScore = 100

// DefaultLeaders is the size of the leaders subset.
const DefaultLeaders = 5

// parseIndicators reads every scored field. Any failure fails the record.
func parseIndicators(r model.FundamentalRecord) (map[model.Indicator]float64, bool) {
	values := make(map[model.Indicator]float64, len(ScoredIndicators))
	for _, ind := range ScoredIndicators {
		raw, _ := r.Field(ind)
		parse := calculator.ParseDecimal
		if ind == model.IndicatorLiquidity2M {
			parse = calculator.ParseThousands
		}
		v, err := parse(raw)
		if err != nil {
			return nil, false
		}
		values[ind] = v
	}
	return values, true
}

// Score computes the 0-100 composite score of a record. A record with any
// unparseable scored field scores 0.
func Score(r model.FundamentalRecord) int {
	values, ok := parseIndicators(r)
	if !ok {
		return 0
	}
	score := 0
	for _, rule := range Rules {
		if rule.Match(values[rule.Indicator]) {
			score += rule.Points
		}
	}
	if score > MaxScore {
		score = MaxScore
	}
	return score
}

// Breakdown reports which rules fired for a record. A record that fails to
// parse reports no hits.
func Breakdown(r model.FundamentalRecord) []model.RuleHit {
	values, ok := parseIndicators(r)
	hits := make([]model.RuleHit, len(Rules))
	for i, rule := range Rules {
		hits[i] = model.RuleHit{
			Rule:      rule.Name,
			Indicator: rule.Indicator,
			Points:    rule.Points,
			Hit:       ok && rule.Match(values[rule.Indicator]),
		}
	}
	return hits
}

// Rank scores every record and returns them sorted by descending score.
// Equal scores keep their input order. The input slice is not modified.
func Rank(records []model.FundamentalRecord) []model.ScoredRecord {
	ranked := make([]model.ScoredRecord, len(records))
	for i, r := range records {
		ranked[i] = model.ScoredRecord{FundamentalRecord: r, Score: Score(r)}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return ranked
}

// Leaders returns the first n ranked records.
func Leaders(ranked []model.ScoredRecord, n int) []model.ScoredRecord {
	if n <= 0 {
		n = DefaultLeaders
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]model.ScoredRecord, n)
	copy(out, ranked[:n])
	return out
}

// View builds the detail view of a ranked record.
func View(s model.ScoredRecord, rank int) model.StockView {
	return model.StockView{
		ScoredRecord: s,
		Rank:         rank,
		Cells:        Cells(s.FundamentalRecord),
		Breakdown:    Breakdown(s.FundamentalRecord),
	}
}
