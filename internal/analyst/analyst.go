package analyst

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"StockRanker/internal/model"
)

var (
	// ErrDisabled is returned when no LLM backend is configured.
	ErrDisabled = errors.New("analyst disabled")
	// ErrEmptyAnalysis is returned when there is no narrative to structure.
	ErrEmptyAnalysis = errors.New("empty analysis")
	// ErrNoJSON is returned when a structuring reply carries no JSON object.
	ErrNoJSON = errors.New("no JSON object in reply")
)

// Completer sends one user prompt to a language model and returns its text reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Analyst produces narrative and structured analyses of a stock.
type Analyst struct {
	completer Completer
	log       zerolog.Logger
	now       func() time.Time
}

// New creates an Analyst. A nil completer yields a disabled analyst.
func New(completer Completer, log zerolog.Logger) *Analyst {
	if cc, ok := completer.(*ClaudeCompleter); ok && cc == nil {
		completer = nil
	}
	return &Analyst{
		completer: completer,
		log:       log.With().Str("component", "analyst").Logger(),
		now:       time.Now,
	}
}

// Enabled reports whether an LLM backend is configured.
func (a *Analyst) Enabled() bool { return a != nil && a.completer != nil }

// Deep asks for a narrative analysis of the record's fundamentals.
func (a *Analyst) Deep(ctx context.Context, r model.FundamentalRecord) (string, error) {
	if !a.Enabled() {
		return "", ErrDisabled
	}
	start := a.now()
	text, err := a.completer.Complete(ctx, DeepPrompt(r))
	if err != nil {
		return "", fmt.Errorf("deep analysis %s: %w", r.Symbol, err)
	}
	a.log.Debug().
		Str("symbol", r.Symbol).
		Int("length", len(text)).
		Dur("duration", a.now().Sub(start)).
		Msg("deep analysis completed")
	return text, nil
}

// Structure restates a narrative analysis as a model.Analysis.
func (a *Analyst) Structure(ctx context.Context, symbol, raw string) (*model.Analysis, error) {
	if !a.Enabled() {
		return nil, ErrDisabled
	}
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyAnalysis
	}
	reply, err := a.completer.Complete(ctx, StructurePrompt(symbol, raw))
	if err != nil {
		return nil, fmt.Errorf("structure analysis %s: %w", symbol, err)
	}
	analysis, err := ParseAnalysis(reply)
	if err != nil {
		a.log.Warn().Err(err).Str("symbol", symbol).Msg("structured reply rejected")
		return nil, err
	}
	analysis.Symbol = symbol
	analysis.Raw = raw
	return analysis, nil
}

// Analyze runs Deep followed by Structure.
func (a *Analyst) Analyze(ctx context.Context, r model.FundamentalRecord) (*model.Analysis, error) {
	raw, err := a.Deep(ctx, r)
	if err != nil {
		return nil, err
	}
	analysis, err := a.Structure(ctx, r.Symbol, raw)
	if err != nil {
		return nil, err
	}
	analysis.CreatedAt = a.now()
	return analysis, nil
}

// ExtractJSON returns the span from the first "{" to the last "}" of text.
func ExtractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

// ParseAnalysis decodes the JSON object embedded in a model reply.
func ParseAnalysis(reply string) (*model.Analysis, error) {
	block, ok := ExtractJSON(reply)
	if !ok {
		return nil, ErrNoJSON
	}
	var analysis model.Analysis
	if err := json.Unmarshal([]byte(block), &analysis); err != nil {
		return nil, fmt.Errorf("decode analysis json: %w", err)
	}
	analysis.Recommendation.Verdict = strings.ToUpper(strings.TrimSpace(analysis.Recommendation.Verdict))
	return &analysis, nil
}
