package recorder

import (
	"errors"

	"StockRanker/internal/model"
)

// ErrNotFound is returned when no matching row exists.
var ErrNotFound = errors.New("not found")

// Recorder persists ranking snapshots and analyses for later inspection and
// as a fallback when the source is unreachable.
type Recorder interface {
	RecordRanking(r *model.Ranking) error
	LatestRanking() (*model.Ranking, error)
	RecordAnalysis(a *model.Analysis) error
	LatestAnalysis(symbol string) (*model.Analysis, error)
	Close() error
}
