package recorder

import "StockRanker/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRanking(_ *model.Ranking) error             { return nil }
func (n *NoopRecorder) LatestRanking() (*model.Ranking, error)           { return nil, ErrNotFound }
func (n *NoopRecorder) RecordAnalysis(_ *model.Analysis) error           { return nil }
func (n *NoopRecorder) LatestAnalysis(_ string) (*model.Analysis, error) { return nil, ErrNotFound }
func (n *NoopRecorder) Close() error                                     { return nil }
