package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the newsroom service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	AllowAnyOrigin bool

	SoftCap     int
	HardCap     int
	TurnTimeout time.Duration
	MaxItems    int

	DecisionLexicon []string

	BrainMode     string
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	RSSFeeds    []string
	FeedTimeout time.Duration

	SlackEnable     bool
	SlackWebhookURL string

	DatabaseURL string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "newsroom"),
		AllowAnyOrigin:   false,
		SoftCap:          8,
		HardCap:          15,
		TurnTimeout:      90 * time.Second,
		MaxItems:         5,
		BrainMode:        envOrDefault("BRAIN_MODE", "auto"),
		OpenAIAPIKey:     stringsTrimSpace("OPENAI_API_KEY"),
		OpenAIBaseURL:    stringsTrimSpace("OPENAI_BASE_URL"),
		OpenAIModel:      envOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		FeedTimeout:      10 * time.Second,
		SlackEnable:      false,
		SlackWebhookURL:  stringsTrimSpace("SLACK_WEBHOOK_URL"),
		DatabaseURL:      stringsTrimSpace("DATABASE_URL"),
		ShutdownTimeout:  15 * time.Second,
	}
	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.TurnTimeout, err = durationFromEnv("SESSION_TURN_TIMEOUT", cfg.TurnTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.FeedTimeout, err = durationFromEnv("RSS_FEED_TIMEOUT", cfg.FeedTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SoftCap, err = intFromEnv("SESSION_SOFT_CAP", cfg.SoftCap)
	if err != nil {
		return Config{}, err
	}
	cfg.HardCap, err = intFromEnv("SESSION_HARD_CAP", cfg.HardCap)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxItems, err = intFromEnv("SESSION_MAX_ITEMS", cfg.MaxItems)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}
	cfg.SlackEnable, err = boolFromEnv("SLACK_ENABLE", cfg.SlackEnable)
	if err != nil {
		return Config{}, err
	}
	cfg.RSSFeeds = listFromEnv("RSS_FEEDS")
	cfg.DecisionLexicon = listFromEnv("DECISION_LEXICON")

	if cfg.SoftCap <= 0 {
		return Config{}, fmt.Errorf("SESSION_SOFT_CAP must be positive")
	}
	if cfg.HardCap < cfg.SoftCap {
		return Config{}, fmt.Errorf("SESSION_HARD_CAP must be at least SESSION_SOFT_CAP")
	}
	if cfg.TurnTimeout < time.Second {
		return Config{}, fmt.Errorf("SESSION_TURN_TIMEOUT must be at least 1s")
	}
	if cfg.MaxItems <= 0 {
		return Config{}, fmt.Errorf("SESSION_MAX_ITEMS must be positive")
	}
	if cfg.SlackEnable && cfg.SlackWebhookURL == "" {
		return Config{}, fmt.Errorf("SLACK_WEBHOOK_URL is required when SLACK_ENABLE is set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// listFromEnv parses a comma-separated env value, dropping empties.
func listFromEnv(key string) []string {
	raw := stringsTrimSpace(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
