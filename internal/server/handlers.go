package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gocarina/gocsv"

	"StockRanker/internal/analyst"
	"StockRanker/internal/dashboard"
	"StockRanker/internal/model"
	"StockRanker/internal/strategy"
)

// stockRow is one line of the ranked table with its classified cells.
type stockRow struct {
	model.ScoredRecord
	Rank  int          `json:"rank"`
	Cells []model.Cell `json:"cells"`
}

type stocksResponse struct {
	Stocks    []stockRow           `json:"stocks"`
	Leaders   []model.ScoredRecord `json:"leaders"`
	FetchedAt time.Time            `json:"fetched_at"`
	Source    string               `json:"source"`
}

type classifyResponse struct {
	Indicator model.Indicator `json:"indicator"`
	Value     string          `json:"value"`
	Band      model.Band      `json:"band"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"analysis": s.svc.AnalysisEnabled(),
		"time":     time.Now().UTC(),
	})
}

func (s *Server) handleStocks(w http.ResponseWriter, r *http.Request) {
	var (
		rk  *model.Ranking
		err error
	)
	if refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh")); refresh {
		rk, err = s.svc.Refresh(r.Context())
	} else {
		rk, err = s.svc.Ranking(r.Context())
	}
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	rows := make([]stockRow, len(rk.Stocks))
	for i, st := range rk.Stocks {
		rows[i] = stockRow{ScoredRecord: st, Rank: i + 1, Cells: strategy.Cells(st.FundamentalRecord)}
	}
	writeJSON(w, http.StatusOK, stocksResponse{
		Stocks:    rows,
		Leaders:   rk.Leaders,
		FetchedAt: rk.FetchedAt,
		Source:    rk.Source,
	})
}

func (s *Server) handleStocksCSV(w http.ResponseWriter, r *http.Request) {
	rk, err := s.svc.Ranking(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	out, err := gocsv.MarshalBytes(rk.Stocks)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="ranking-`+rk.FetchedAt.Format("2006-01-02")+`.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (s *Server) handleLeaders(w http.ResponseWriter, r *http.Request) {
	n := 0
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "n must be a non-negative integer")
			return
		}
		n = parsed
	}
	leaders, err := s.svc.Leaders(r.Context(), n)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leaders)
}

func (s *Server) handleStock(w http.ResponseWriter, r *http.Request) {
	v, err := s.svc.Stock(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	h, err := s.svc.History(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ind := model.Indicator(strings.TrimSpace(q.Get("indicator")))
	if ind == "" {
		writeError(w, http.StatusBadRequest, "indicator is required")
		return
	}
	raw := q.Get("value")
	writeJSON(w, http.StatusOK, classifyResponse{Indicator: ind, Value: raw, Band: strategy.ClassifyText(ind, raw)})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	a, err := s.svc.Analyze(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleLatestAnalysis(w http.ResponseWriter, r *http.Request) {
	a, err := s.svc.LatestAnalysis(chi.URLParam(r, "symbol"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// writeServiceError maps service errors to HTTP status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, dashboard.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, analyst.ErrDisabled), errors.Is(err, dashboard.ErrUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, analyst.ErrNoJSON), errors.Is(err, analyst.ErrEmptyAnalysis):
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		s.log.Error().Err(err).Int("status", status).Msg("request failed")
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
