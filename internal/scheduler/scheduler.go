package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"StockRanker/internal/dashboard"
	"StockRanker/internal/model"
	"StockRanker/internal/notifier"
)

// Ranker is the part of the dashboard service the scheduler drives.
type Ranker interface {
	Ranking(ctx context.Context) (*model.Ranking, error)
	Refresh(ctx context.Context) (*model.Ranking, error)
	Stock(ctx context.Context, symbol string) (*model.StockView, error)
}

// Notifier delivers formatted messages.
type Notifier interface {
	Enabled() bool
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron     *cron.Cron
	Ranker   Ranker
	Notifier Notifier
	Ctx      context.Context
	log      zerolog.Logger
	now      func() time.Time
}

// NewScheduler creates a new Scheduler. Cron expressions carry a seconds field.
func NewScheduler(ctx context.Context, ranker Ranker, n Notifier, loc *time.Location, log zerolog.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		Ranker:   ranker,
		Notifier: n,
		Ctx:      ctx,
		log:      log.With().Str("component", "scheduler").Logger(),
		now:      time.Now,
	}
}

// RegisterAll registers the daily refresh task.
func (s *Scheduler) RegisterAll(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunRefreshNow executes the refresh task immediately (RUN_ON_START).
func (s *Scheduler) RunRefreshNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	s.log.Info().Msg("running refresh task")
	r, err := s.Ranker.Refresh(s.Ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("refresh ranking")
		s.trySend(notifier.FormatFailure(err, s.now()))
		return
	}
	s.trySend(notifier.FormatLeaders(r))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	switch strings.ToLower(fields[0]) {
	case "/top", "top":
		r, err := s.Ranker.Ranking(ctx)
		if err != nil {
			return notifier.FormatFailure(err, s.now())
		}
		return notifier.FormatLeaders(r)
	case "/stock", "/acao":
		if len(fields) < 2 {
			return "Uso: /stock PETR4"
		}
		v, err := s.Ranker.Stock(ctx, fields[1])
		if errors.Is(err, dashboard.ErrNotFound) {
			return fmt.Sprintf("Ação %s não encontrada", strings.ToUpper(fields[1]))
		}
		if err != nil {
			return notifier.FormatFailure(err, s.now())
		}
		return notifier.FormatStock(v)
	case "/refresh":
		s.refreshTask()
		return ""
	default:
		return helpText
	}
}

const helpText = "Comandos disponíveis:\n• /top\n• /stock PETR4\n• /refresh"

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil || !s.Notifier.Enabled() {
		s.log.Debug().Msg("notifier disabled, message dropped")
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.log.Error().Err(err).Msg("send notification")
	}
}
