package recorder

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"StockRanker/internal/model"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the refresh job writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ranking_runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			fetched_at  INTEGER NOT NULL,
			source      TEXT,
			stock_count INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON ranking_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS ranking_entries (
			run_id  INTEGER NOT NULL REFERENCES ranking_runs(id),
			rank    INTEGER NOT NULL,
			symbol  TEXT NOT NULL,
			price   TEXT,
			score   INTEGER NOT NULL,
			record  TEXT NOT NULL,
			PRIMARY KEY (run_id, rank)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_symbol ON ranking_entries(symbol)`,

		`CREATE TABLE IF NOT EXISTS analyses (
			id         TEXT PRIMARY KEY,
			timestamp  INTEGER NOT NULL,
			symbol     TEXT NOT NULL,
			verdict    TEXT,
			raw        TEXT,
			structured TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_symbol ON analyses(symbol, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRanking stores a ranking run and one entry per stock in rank order.
func (r *SQLiteRecorder) RecordRanking(rk *model.Ranking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO ranking_runs (timestamp, fetched_at, source, stock_count)
		VALUES (?,?,?,?)`,
		time.Now().Unix(), rk.FetchedAt.Unix(), rk.Source, len(rk.Stocks),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("run id: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO ranking_entries (run_id, rank, symbol, price, score, record)
		VALUES (?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare entry: %w", err)
	}
	defer stmt.Close()

	for i, s := range rk.Stocks {
		rec, err := json.Marshal(s.FundamentalRecord)
		if err != nil {
			return fmt.Errorf("encode %s: %w", s.Symbol, err)
		}
		if _, err := stmt.Exec(runID, i+1, s.Symbol, s.Price, s.Score, string(rec)); err != nil {
			return fmt.Errorf("insert entry %s: %w", s.Symbol, err)
		}
	}
	return tx.Commit()
}

// LatestRanking loads the most recent run. Leaders are left for the caller
// to derive.
func (r *SQLiteRecorder) LatestRanking() (*model.Ranking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		runID     int64
		fetchedAt int64
		source    sql.NullString
	)
	err := r.db.QueryRow(`SELECT id, fetched_at, source FROM ranking_runs
		ORDER BY id DESC LIMIT 1`).Scan(&runID, &fetchedAt, &source)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query latest run: %w", err)
	}

	rows, err := r.db.Query(`SELECT score, record FROM ranking_entries
		WHERE run_id = ? ORDER BY rank`, runID)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	rk := &model.Ranking{FetchedAt: time.Unix(fetchedAt, 0), Source: source.String}
	for rows.Next() {
		var (
			score int
			raw   string
		)
		if err := rows.Scan(&score, &raw); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		var rec model.FundamentalRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode entry: %w", err)
		}
		rk.Stocks = append(rk.Stocks, model.ScoredRecord{FundamentalRecord: rec, Score: score})
	}
	return rk, rows.Err()
}

// RecordAnalysis stores a structured analysis, assigning an ID and creation
// time when missing.
func (r *SQLiteRecorder) RecordAnalysis(a *model.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	structured, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	_, err = r.db.Exec(`INSERT INTO analyses (id, timestamp, symbol, verdict, raw, structured)
		VALUES (?,?,?,?,?,?)`,
		a.ID, a.CreatedAt.UnixNano(), a.Symbol, a.Recommendation.Verdict, a.Raw, string(structured),
	)
	return err
}

// LatestAnalysis returns the newest analysis stored for symbol.
func (r *SQLiteRecorder) LatestAnalysis(symbol string) (*model.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var raw string
	err := r.db.QueryRow(`SELECT structured FROM analyses WHERE symbol = ?
		ORDER BY timestamp DESC LIMIT 1`, symbol).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query analysis: %w", err)
	}
	var a model.Analysis
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	return &a, nil
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
