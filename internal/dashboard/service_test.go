package dashboard

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockRanker/internal/analyst"
	"StockRanker/internal/cache"
	"StockRanker/internal/collector"
	"StockRanker/internal/model"
	"StockRanker/internal/recorder"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

type stubCompleter struct{ calls int }

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.calls++
	if s.calls%2 == 1 {
		return "Narrativa", nil
	}
	return `{"overview":"ok","recommendation":{"verdict":"NEUTRO","reasoning":[]}}`, nil
}

func record(symbol, pl string) model.FundamentalRecord {
	return model.FundamentalRecord{
		Symbol: symbol, Price: "10,00", PL: pl, PVP: "0,8", ROE: "18,2", DividendYield: "7,1",
		GrossDebt: "0,5", RevenueGrowth: "15,0", NetMargin: "15,0", ROIC: "16,0",
		CurrentLiquidity: "2,5", Liquidity2M: "2.500.000,00",
	}
}

type fixture struct {
	svc     *Service
	fetcher *collector.MockFetcher
	clock   *clock
	rec     recorder.Recorder
	llm     *stubCompleter
}

func newFixture(t *testing.T, rec recorder.Recorder) *fixture {
	t.Helper()
	clk := &clock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	fetcher := &collector.MockFetcher{
		Records: []model.FundamentalRecord{record("LOW3", "40,0"), record("TOP4", "12,5")},
		Points:  []model.PricePoint{{Date: clk.t, Close: 10}, {Date: clk.t.AddDate(0, 0, 1), Close: 11}},
	}
	c, err := cache.NewDaily[*model.Ranking](clk.Now, time.UTC, "")
	require.NoError(t, err)
	llm := &stubCompleter{}
	col := collector.NewCollector(fetcher, 5, zerolog.Nop())
	col.Now = clk.Now
	svc := NewService(col, fetcher, c, rec, analyst.New(llm, zerolog.Nop()), zerolog.Nop())
	return &fixture{svc: svc, fetcher: fetcher, clock: clk, rec: rec, llm: llm}
}

func TestService_RankingCachedPerDay(t *testing.T) {
	f := newFixture(t, recorder.NewNoopRecorder())
	ctx := context.Background()

	r, err := f.svc.Ranking(ctx)
	require.NoError(t, err)
	assert.Equal(t, "TOP4", r.Stocks[0].Symbol)
	assert.Equal(t, 1, f.fetcher.Calls)

	_, err = f.svc.Ranking(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.fetcher.Calls, "same day is served from cache")

	f.clock.t = f.clock.t.AddDate(0, 0, 1)
	_, err = f.svc.Ranking(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, f.fetcher.Calls, "next day refetches")

	_, err = f.svc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, f.fetcher.Calls)
}

func TestService_FallsBackToStaleCache(t *testing.T) {
	f := newFixture(t, recorder.NewNoopRecorder())
	ctx := context.Background()

	_, err := f.svc.Ranking(ctx)
	require.NoError(t, err)

	f.clock.t = f.clock.t.AddDate(0, 0, 1)
	f.fetcher.Err = errors.New("site down")
	r, err := f.svc.Ranking(ctx)
	require.NoError(t, err)
	assert.Equal(t, "TOP4", r.Stocks[0].Symbol)
}

func TestService_RefreshFailureIsReported(t *testing.T) {
	f := newFixture(t, recorder.NewNoopRecorder())
	ctx := context.Background()

	cached, err := f.svc.Ranking(ctx)
	require.NoError(t, err)
	assert.Equal(t, f.clock.t, cached.FetchedAt)

	f.fetcher.Err = errors.New("site down")
	r, err := f.svc.Refresh(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorContains(t, err, "site down")
	assert.Nil(t, r)

	again, err := f.svc.Ranking(ctx)
	require.NoError(t, err)
	assert.Same(t, cached, again, "failed refresh keeps the cached ranking")
}

func TestService_FallsBackToRecorder(t *testing.T) {
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "r.db"), zerolog.Nop())
	require.NoError(t, err)
	defer rec.Close()

	first := newFixture(t, rec)
	_, err = first.svc.Ranking(context.Background())
	require.NoError(t, err)

	// A fresh process with an empty cache and an unreachable source.
	second := newFixture(t, rec)
	second.fetcher.Err = errors.New("site down")
	r, err := second.svc.Ranking(context.Background())
	require.NoError(t, err)
	require.Len(t, r.Stocks, 2)
	assert.Equal(t, "TOP4", r.Leaders[0].Symbol)
}

func TestService_Unavailable(t *testing.T) {
	f := newFixture(t, recorder.NewNoopRecorder())
	f.fetcher.Err = errors.New("site down")
	_, err := f.svc.Ranking(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestService_Stock(t *testing.T) {
	f := newFixture(t, recorder.NewNoopRecorder())

	v, err := f.svc.Stock(context.Background(), " top4 ")
	require.NoError(t, err)
	assert.Equal(t, 1, v.Rank)
	assert.Equal(t, 100, v.Score)
	assert.Equal(t, model.BandFavorable, v.Cells[0].Band)

	_, err = f.svc.Stock(context.Background(), "NOPE3")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Leaders(t *testing.T) {
	f := newFixture(t, recorder.NewNoopRecorder())
	leaders, err := f.svc.Leaders(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, leaders, 1)
	assert.Equal(t, "TOP4", leaders[0].Symbol)

	leaders, err = f.svc.Leaders(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, leaders, 2)
}

func TestService_History(t *testing.T) {
	f := newFixture(t, recorder.NewNoopRecorder())
	h, err := f.svc.History(context.Background(), "petr4")
	require.NoError(t, err)
	assert.Equal(t, "PETR4", h.Symbol)
	assert.Len(t, h.Points, 2)
	assert.Equal(t, 11.0, h.Summary.Last)

	f.fetcher.Err = collector.ErrNoData
	_, err = f.svc.History(context.Background(), "petr4")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Analyze(t *testing.T) {
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "r.db"), zerolog.Nop())
	require.NoError(t, err)
	defer rec.Close()
	f := newFixture(t, rec)

	a, err := f.svc.Analyze(context.Background(), "TOP4")
	require.NoError(t, err)
	assert.Equal(t, "TOP4", a.Symbol)
	assert.Equal(t, model.VerdictNeutral, a.Recommendation.Verdict)

	latest, err := f.svc.LatestAnalysis("top4")
	require.NoError(t, err)
	assert.Equal(t, a.ID, latest.ID)

	_, err = f.svc.LatestAnalysis("LOW3")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_AnalyzeDisabled(t *testing.T) {
	f := newFixture(t, recorder.NewNoopRecorder())
	f.svc.analyst = analyst.New(nil, zerolog.Nop())
	_, err := f.svc.Analyze(context.Background(), "TOP4")
	assert.ErrorIs(t, err, analyst.ErrDisabled)
}
