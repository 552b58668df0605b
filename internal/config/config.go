package config

import (
	"errors"
	"os"
	"strings"
)

type AppConfig struct {
	RedisURL    string
	DatabaseURL string // optional: archive of finished games

	PlatformBaseURL string
	PlatformWSURL   string

	SubredditName string
	DailyCron     string

	MessageOverrideDir string
}

const defaultDailyCron = "0 3 * * *" // 3am UTC, one game per day

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		DailyCron: defaultDailyCron,
	}

	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	cfg.PlatformBaseURL = strings.TrimSpace(os.Getenv("PLATFORM_BASE_URL"))
	cfg.PlatformWSURL = strings.TrimSpace(os.Getenv("PLATFORM_WS_URL"))

	cfg.SubredditName = strings.TrimSpace(os.Getenv("SUBREDDIT_NAME"))
	if v := strings.TrimSpace(os.Getenv("DAILY_CRON")); v != "" {
		cfg.DailyCron = v
	}

	cfg.MessageOverrideDir = strings.TrimSpace(os.Getenv("MESSAGE_OVERRIDE_DIR"))

	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.PlatformBaseURL == "" {
		return nil, errors.New("PLATFORM_BASE_URL is required")
	}
	if cfg.PlatformWSURL == "" {
		return nil, errors.New("PLATFORM_WS_URL is required")
	}
	if cfg.SubredditName == "" {
		return nil, errors.New("SUBREDDIT_NAME is required")
	}

	return cfg, nil
}
