package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr           string   `yaml:"addr"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Source struct {
		FundamentusURL string `yaml:"fundamentus_url"`
		YahooURL       string `yaml:"yahoo_url"`
	} `yaml:"source"`
	Ranking struct {
		Leaders int `yaml:"leaders"`
	} `yaml:"ranking"`
	Cache struct {
		File     string `yaml:"file"`
		Timezone string `yaml:"timezone"`
	} `yaml:"cache"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Claude struct {
		APIKey     string        `yaml:"api_key"`
		Model      string        `yaml:"model"`
		MaxTokens  int           `yaml:"max_tokens"`
		Timeout    time.Duration `yaml:"timeout"`
		MaxRetries int           `yaml:"max_retries"`
	} `yaml:"claude"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
		RunOnStart  bool   `yaml:"run_on_start"`
	} `yaml:"schedule"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides and fills defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Server.Addr, "SERVER_ADDR")
	setString(&c.Source.FundamentusURL, "FUNDAMENTUS_URL")
	setString(&c.Source.YahooURL, "YAHOO_URL")
	setString(&c.Cache.File, "CACHE_FILE")
	setString(&c.Cache.Timezone, "CACHE_TIMEZONE")
	setString(&c.Database.SQLitePath, "SQLITE_PATH")
	setString(&c.Claude.APIKey, "ANTHROPIC_API_KEY")
	setString(&c.Claude.Model, "CLAUDE_MODEL")
	setString(&c.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	setString(&c.Telegram.ChatID, "TELEGRAM_CHAT_ID")
	setString(&c.Schedule.RefreshCron, "CRON_REFRESH")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Proxy, "HTTPS_PROXY")

	if v := os.Getenv("RANKING_LEADERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Ranking.Leaders = n
		}
	}
	if v := os.Getenv("CLAUDE_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Claude.MaxTokens = n
		}
	}
	if v := os.Getenv("RUN_ON_START"); v != "" {
		c.Schedule.RunOnStart, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("LOG_PRETTY"); v != "" {
		c.Log.Pretty, _ = strconv.ParseBool(v)
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Ranking.Leaders == 0 {
		c.Ranking.Leaders = 5
	}
	if c.Cache.File == "" {
		c.Cache.File = "data/ranking_cache.json"
	}
	if c.Cache.Timezone == "" {
		c.Cache.Timezone = "America/Sao_Paulo"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/stock_ranker.db"
	}
	if c.Claude.MaxTokens == 0 {
		c.Claude.MaxTokens = 4000
	}
	if c.Claude.Timeout == 0 {
		c.Claude.Timeout = 2 * time.Minute
	}
	if c.Claude.MaxRetries == 0 {
		c.Claude.MaxRetries = 3
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "0 0 19 * * 1-5"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Location returns the time zone used for cache day boundaries.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Cache.Timezone)
	if err != nil {
		return nil, fmt.Errorf("cache.timezone %q: %w", c.Cache.Timezone, err)
	}
	return loc, nil
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if c.Ranking.Leaders < 0 {
		return fmt.Errorf("ranking.leaders must not be negative")
	}
	if c.Claude.MaxTokens < 0 {
		return fmt.Errorf("claude.max_tokens must not be negative")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Schedule.RefreshCron); err != nil {
		return fmt.Errorf("schedule.refresh_cron: %w", err)
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server.addr is required")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
