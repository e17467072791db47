package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog"

	"StockRanker/internal/analyst"
	"StockRanker/internal/cache"
	"StockRanker/internal/collector"
	"StockRanker/internal/config"
	"StockRanker/internal/dashboard"
	"StockRanker/internal/logger"
	"StockRanker/internal/model"
	"StockRanker/internal/notifier"
	"StockRanker/internal/recorder"
	"StockRanker/internal/scheduler"
	"StockRanker/internal/server"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		boot := logger.New(logger.Config{})
		boot.Fatal().Err(err).Msg("load config")
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger.SetGlobalLogger(log)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	log.Info().Msg("StockRanker starting")

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("load timezone")
	}

	// Sources
	fundamentals := collector.NewFundamentusFetcher(cfg.Source.FundamentusURL, cfg.Proxy)
	history := collector.NewYahooFetcher(cfg.Source.YahooURL, cfg.Proxy)
	col := collector.NewCollector(fundamentals, cfg.Ranking.Leaders, log)
	log.Info().Str("fundamentals", fundamentals.Name()).Str("history", history.Name()).Msg("data sources ready")

	daily, err := cache.NewDaily[*model.Ranking](time.Now, loc, cfg.Cache.File)
	if err != nil {
		log.Warn().Err(err).Msg("load ranking cache, starting empty")
		daily, _ = cache.NewDaily[*model.Ranking](time.Now, loc, "")
	}

	rec := openRecorder(cfg.Database.SQLitePath, log)
	defer rec.Close()

	an := analyst.New(analyst.NewClaudeCompleter(analyst.ClaudeConfig{
		APIKey:     cfg.Claude.APIKey,
		Model:      cfg.Claude.Model,
		MaxTokens:  cfg.Claude.MaxTokens,
		Timeout:    cfg.Claude.Timeout,
		MaxRetries: cfg.Claude.MaxRetries,
	}), log)
	if !an.Enabled() {
		log.Warn().Msg("ANTHROPIC_API_KEY not set, analysis disabled")
	}

	svc := dashboard.NewService(col, history, daily, rec, an, log)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)

	sched := scheduler.NewScheduler(ctx, svc, tn, loc, log)
	if err := sched.RegisterAll(cfg.Schedule.RefreshCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	if tn.Enabled() {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("Telegram polling started")
	}

	if cfg.Schedule.RunOnStart {
		log.Info().Msg("run_on_start enabled, refreshing ranking now")
		go sched.RunRefreshNow()
	}

	srv := server.New(server.Config{
		Addr:           cfg.Server.Addr,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Service:        svc,
		Log:            log,
	})
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server")
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown")
	}
	cancel()
	log.Info().Msg("StockRanker stopped")
}

func openRecorder(path string, log zerolog.Logger) recorder.Recorder {
	if path == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(path, log)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}
