package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"StockRanker/internal/model"
	"StockRanker/internal/strategy"
)

// ErrNoData is returned when a source answered but carried no usable rows.
var ErrNoData = errors.New("no data")

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Records []model.FundamentalRecord
	Points  []model.PricePoint
	Err     error
	Calls   int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchFundamentals(_ context.Context) ([]model.FundamentalRecord, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]model.FundamentalRecord, len(m.Records))
	copy(out, m.Records)
	return out, nil
}

func (m *MockFetcher) FetchHistory(_ context.Context, _ string) ([]model.PricePoint, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Points, nil
}

// Collector orchestrates fetching and ranking.
type Collector struct {
	Fetcher FundamentalsFetcher
	Leaders int
	// Now stamps FetchedAt; replaced in tests.
	Now func() time.Time
	log zerolog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher FundamentalsFetcher, leaders int, log zerolog.Logger) *Collector {
	if leaders <= 0 {
		leaders = strategy.DefaultLeaders
	}
	return &Collector{
		Fetcher: fetcher,
		Leaders: leaders,
		Now:     time.Now,
		log:     log.With().Str("component", "collector").Logger(),
	}
}

// Collect fetches the fundamentals table and ranks it.
func (c *Collector) Collect(ctx context.Context) (*model.Ranking, error) {
	records, err := c.Fetcher.FetchFundamentals(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch fundamentals: %w", err)
	}

	ranked := strategy.Rank(records)
	unscored := 0
	for _, s := range ranked {
		if s.Score == 0 {
			unscored++
		}
	}
	if unscored > 0 {
		c.log.Debug().Int("count", unscored).Msg("records scored zero")
	}

	ranking := &model.Ranking{
		Stocks:    ranked,
		Leaders:   strategy.Leaders(ranked, c.Leaders),
		FetchedAt: c.Now(),
		Source:    c.Fetcher.Name(),
	}
	c.log.Info().
		Int("stocks", len(ranked)).
		Str("source", ranking.Source).
		Msg("ranking collected")
	return ranking, nil
}
