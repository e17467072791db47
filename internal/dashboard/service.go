// Package dashboard serves the ranking, detail, history and analysis views
// the frontend renders, keeping one ranking per calendar day.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"StockRanker/internal/analyst"
	"StockRanker/internal/cache"
	"StockRanker/internal/calculator"
	"StockRanker/internal/collector"
	"StockRanker/internal/model"
	"StockRanker/internal/recorder"
	"StockRanker/internal/strategy"
)

var (
	// ErrNotFound is returned for symbols absent from the current ranking.
	ErrNotFound = errors.New("symbol not found")
	// ErrUnavailable is returned when no ranking can be produced or recovered.
	ErrUnavailable = errors.New("ranking unavailable")
)

// Service coordinates the collector, cache, recorder and analyst.
type Service struct {
	collector *collector.Collector
	history   collector.HistoryFetcher
	cache     *cache.Daily[*model.Ranking]
	recorder  recorder.Recorder
	analyst   *analyst.Analyst
	leaders   int
	log       zerolog.Logger

	// refresh serializes source fetches so concurrent misses scrape once.
	refresh sync.Mutex
}

// NewService creates a Service.
func NewService(col *collector.Collector, hist collector.HistoryFetcher, c *cache.Daily[*model.Ranking],
	rec recorder.Recorder, an *analyst.Analyst, log zerolog.Logger) *Service {
	return &Service{
		collector: col,
		history:   hist,
		cache:     c,
		recorder:  rec,
		analyst:   an,
		leaders:   col.Leaders,
		log:       log.With().Str("component", "dashboard").Logger(),
	}
}

// Ranking returns today's ranking, fetching it on the first call of the day.
func (s *Service) Ranking(ctx context.Context) (*model.Ranking, error) {
	if r, ok := s.cache.Get(); ok {
		return r, nil
	}
	return s.load(ctx, false)
}

// Refresh fetches a new ranking regardless of the cache. A failed fetch is
// reported as ErrUnavailable and leaves the cached ranking in place.
func (s *Service) Refresh(ctx context.Context) (*model.Ranking, error) {
	return s.load(ctx, true)
}

func (s *Service) load(ctx context.Context, force bool) (*model.Ranking, error) {
	s.refresh.Lock()
	defer s.refresh.Unlock()

	if !force {
		if r, ok := s.cache.Get(); ok {
			return r, nil
		}
	}

	r, err := s.collector.Collect(ctx)
	if err == nil {
		if perr := s.cache.Put(r); perr != nil {
			s.log.Warn().Err(perr).Msg("persist ranking cache")
		}
		if rerr := s.recorder.RecordRanking(r); rerr != nil {
			s.log.Error().Err(rerr).Msg("record ranking")
		}
		return r, nil
	}

	if force {
		s.log.Error().Err(err).Msg("forced refresh failed")
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	s.log.Error().Err(err).Msg("collect ranking, falling back")
	if stale, at, ok := s.cache.Stale(); ok {
		s.log.Warn().Time("inserted_at", at).Msg("serving stale ranking")
		return stale, nil
	}
	if last, rerr := s.recorder.LatestRanking(); rerr == nil {
		last.Leaders = strategy.Leaders(last.Stocks, s.leaders)
		s.log.Warn().Time("fetched_at", last.FetchedAt).Msg("serving recorded ranking")
		return last, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// Leaders returns the first n stocks of today's ranking.
func (s *Service) Leaders(ctx context.Context, n int) ([]model.ScoredRecord, error) {
	r, err := s.Ranking(ctx)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return r.Leaders, nil
	}
	return strategy.Leaders(r.Stocks, n), nil
}

// Stock returns the detail view of a symbol with classified cells and the
// score breakdown. Rank is 1-based.
func (s *Service) Stock(ctx context.Context, symbol string) (*model.StockView, error) {
	r, err := s.Ranking(ctx)
	if err != nil {
		return nil, err
	}
	rec, idx, ok := r.Find(normalizeSymbol(symbol))
	if !ok {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNotFound)
	}
	v := strategy.View(rec, idx+1)
	return &v, nil
}

// History returns one year of closes with the chart summary.
func (s *Service) History(ctx context.Context, symbol string) (*model.PriceHistory, error) {
	symbol = normalizeSymbol(symbol)
	points, err := s.history.FetchHistory(ctx, symbol)
	if err != nil {
		if errors.Is(err, collector.ErrNoData) {
			return nil, fmt.Errorf("%s: %w", symbol, ErrNotFound)
		}
		return nil, err
	}
	return &model.PriceHistory{
		Symbol:    symbol,
		Points:    points,
		Summary:   calculator.Summarize(points),
		FetchedAt: time.Now(),
	}, nil
}

// Analyze runs the LLM analysis for a ranked symbol and records it.
func (s *Service) Analyze(ctx context.Context, symbol string) (*model.Analysis, error) {
	if !s.analyst.Enabled() {
		return nil, analyst.ErrDisabled
	}
	view, err := s.Stock(ctx, symbol)
	if err != nil {
		return nil, err
	}
	a, err := s.analyst.Analyze(ctx, view.FundamentalRecord)
	if err != nil {
		return nil, err
	}
	if err := s.recorder.RecordAnalysis(a); err != nil {
		s.log.Error().Err(err).Str("symbol", a.Symbol).Msg("record analysis")
	}
	return a, nil
}

// AnalysisEnabled reports whether an LLM analyst is configured.
func (s *Service) AnalysisEnabled() bool { return s.analyst.Enabled() }

// LatestAnalysis returns the newest recorded analysis for a symbol.
func (s *Service) LatestAnalysis(symbol string) (*model.Analysis, error) {
	a, err := s.recorder.LatestAnalysis(normalizeSymbol(symbol))
	if errors.Is(err, recorder.ErrNotFound) {
		return nil, fmt.Errorf("analysis for %s: %w", symbol, ErrNotFound)
	}
	return a, err
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
