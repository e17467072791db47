package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockRanker/internal/analyst"
	"StockRanker/internal/cache"
	"StockRanker/internal/collector"
	"StockRanker/internal/dashboard"
	"StockRanker/internal/model"
	"StockRanker/internal/recorder"
)

type stubCompleter struct{ calls int }

func (s *stubCompleter) Complete(_ context.Context, _ string) (string, error) {
	s.calls++
	if s.calls%2 == 1 {
		return "Narrativa completa", nil
	}
	return "Segue:\n{\"overview\":\"sólida\",\"recommendation\":{\"verdict\":\" neutro \",\"reasoning\":[\"preço justo\"]}}", nil
}

func record(symbol, pl string) model.FundamentalRecord {
	return model.FundamentalRecord{
		Symbol: symbol, Price: "10,00", PL: pl, PVP: "0,8", ROE: "18,2", DividendYield: "7,1",
		GrossDebt: "0,5", RevenueGrowth: "15,0", NetMargin: "15,0", ROIC: "16,0",
		CurrentLiquidity: "2,5", Liquidity2M: "2.500.000,00",
	}
}

func newTestServer(t *testing.T, fetcher *collector.MockFetcher, completer analyst.Completer) *Server {
	t.Helper()
	c, err := cache.NewDaily[*model.Ranking](time.Now, time.UTC, "")
	require.NoError(t, err)
	col := collector.NewCollector(fetcher, 5, zerolog.Nop())
	svc := dashboard.NewService(col, fetcher, c, recorder.NewNoopRecorder(), analyst.New(completer, zerolog.Nop()), zerolog.Nop())
	return New(Config{Addr: ":0", Service: svc, Log: zerolog.Nop()})
}

func defaultFetcher() *collector.MockFetcher {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	return &collector.MockFetcher{
		Records: []model.FundamentalRecord{record("LOW3", "40,0"), record("TOP4", "12,5")},
		Points:  []model.PricePoint{{Date: day, Close: 10}, {Date: day.AddDate(0, 0, 1), Close: 12}},
	}
}

func do(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, defaultFetcher(), &stubCompleter{})
	rec := do(t, s, http.MethodGet, "/api/health")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["analysis"])
}

func TestStocks(t *testing.T) {
	fetcher := defaultFetcher()
	s := newTestServer(t, fetcher, nil)

	rec := do(t, s, http.MethodGet, "/api/stocks")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode[stocksResponse](t, rec)
	require.Len(t, body.Stocks, 2)
	assert.Equal(t, "TOP4", body.Stocks[0].Symbol)
	assert.Equal(t, 1, body.Stocks[0].Rank)
	assert.Len(t, body.Stocks[0].Cells, len(model.DisplayIndicators))
	assert.Equal(t, model.BandFavorable, body.Stocks[0].Cells[0].Band)
	assert.Equal(t, model.BandUnfavorable, body.Stocks[1].Cells[0].Band)
	assert.Len(t, body.Leaders, 2)

	do(t, s, http.MethodGet, "/api/stocks")
	assert.Equal(t, 1, fetcher.Calls, "second request is served from cache")

	rec = do(t, s, http.MethodGet, "/api/stocks?refresh=true")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, fetcher.Calls)
}

func TestStocks_Unavailable(t *testing.T) {
	fetcher := defaultFetcher()
	fetcher.Err = errors.New("connection refused")
	s := newTestServer(t, fetcher, nil)

	rec := do(t, s, http.MethodGet, "/api/stocks")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "ranking unavailable")
}

func TestStocks_ForcedRefreshFailure(t *testing.T) {
	fetcher := defaultFetcher()
	s := newTestServer(t, fetcher, nil)
	require.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/stocks").Code)

	fetcher.Err = errors.New("site down")
	rec := do(t, s, http.MethodGet, "/api/stocks?refresh=true")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "site down")

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/api/stocks").Code)
}

func TestStocksCSV(t *testing.T) {
	s := newTestServer(t, defaultFetcher(), nil)
	rec := do(t, s, http.MethodGet, "/api/stocks.csv")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "papel,cotacao,pl,"))
	assert.True(t, strings.HasSuffix(lines[0], ",score"))
	assert.True(t, strings.HasPrefix(lines[1], "TOP4,"))
}

func TestLeaders(t *testing.T) {
	s := newTestServer(t, defaultFetcher(), nil)

	rec := do(t, s, http.MethodGet, "/api/leaders?n=1")
	require.Equal(t, http.StatusOK, rec.Code)
	leaders := decode[[]model.ScoredRecord](t, rec)
	require.Len(t, leaders, 1)
	assert.Equal(t, "TOP4", leaders[0].Symbol)

	rec = do(t, s, http.MethodGet, "/api/leaders")
	assert.Len(t, decode[[]model.ScoredRecord](t, rec), 2)

	rec = do(t, s, http.MethodGet, "/api/leaders?n=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStock(t *testing.T) {
	s := newTestServer(t, defaultFetcher(), nil)

	rec := do(t, s, http.MethodGet, "/api/stocks/top4")
	require.Equal(t, http.StatusOK, rec.Code)
	v := decode[model.StockView](t, rec)
	assert.Equal(t, "TOP4", v.Symbol)
	assert.Equal(t, 1, v.Rank)
	assert.NotEmpty(t, v.Breakdown)

	rec = do(t, s, http.MethodGet, "/api/stocks/XXXX3")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "not found")
}

func TestHistory(t *testing.T) {
	s := newTestServer(t, defaultFetcher(), nil)

	rec := do(t, s, http.MethodGet, "/api/stocks/PETR4/history")
	require.Equal(t, http.StatusOK, rec.Code)
	h := decode[model.PriceHistory](t, rec)
	assert.Equal(t, "PETR4", h.Symbol)
	assert.Len(t, h.Points, 2)
	assert.InDelta(t, 12.0, h.Summary.Last, 1e-9)
}

func TestHistory_NoData(t *testing.T) {
	fetcher := defaultFetcher()
	fetcher.Err = collector.ErrNoData
	s := newTestServer(t, fetcher, nil)

	rec := do(t, s, http.MethodGet, "/api/stocks/NONE3/history")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClassify(t *testing.T) {
	s := newTestServer(t, defaultFetcher(), nil)

	cases := []struct {
		query string
		band  model.Band
	}{
		{"indicator=pl&value=12,5", model.BandFavorable},
		{"indicator=pvp&value=2", model.BandNeutral},
		{"indicator=divBruta&value=1,5", model.BandUnfavorable},
		{"indicator=roe&value=abc", model.BandUnclassified},
		{"indicator=psr&value=1", model.BandUnclassified},
	}
	for _, tc := range cases {
		rec := do(t, s, http.MethodGet, "/api/classify?"+tc.query)
		require.Equal(t, http.StatusOK, rec.Code, tc.query)
		assert.Equal(t, tc.band, decode[classifyResponse](t, rec).Band, tc.query)
	}

	rec := do(t, s, http.MethodGet, "/api/classify?value=1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyze(t *testing.T) {
	s := newTestServer(t, defaultFetcher(), &stubCompleter{})

	rec := do(t, s, http.MethodPost, "/api/analysis/TOP4")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	a := decode[model.Analysis](t, rec)
	assert.Equal(t, "TOP4", a.Symbol)
	assert.Equal(t, model.VerdictNeutral, a.Recommendation.Verdict)
	assert.Equal(t, "sólida", a.Overview)

	rec = do(t, s, http.MethodPost, "/api/analysis/XXXX3")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/analysis/TOP4")
	assert.Equal(t, http.StatusNotFound, rec.Code, "noop recorder keeps nothing")
}

func TestAnalyze_Disabled(t *testing.T) {
	s := newTestServer(t, defaultFetcher(), nil)

	rec := do(t, s, http.MethodPost, "/api/analysis/TOP4")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "analyst disabled", decode[map[string]string](t, rec)["error"])
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, defaultFetcher(), nil)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
