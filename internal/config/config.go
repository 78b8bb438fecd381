// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port           string
	FrontendURL    string
	DBPath         string
	GRPCHealthAddr string
	WebchatEnabled bool
	Slack          SlackConfig
	Yelp           YelpConfig
	Redis          RedisConfig
	Directory      DirectoryConfig
	Timeout        TimeoutConfig
}

// SlackConfig controls the Slack transport. An empty BotToken disables it.
type SlackConfig struct {
	BotToken     string
	WebhookToken string
}

// Enabled reports whether the RTM bot should run.
func (s SlackConfig) Enabled() bool {
	return s.BotToken != ""
}

// YelpConfig controls the business search.
type YelpConfig struct {
	APIKey      string
	BaseURL     string
	Timeout     time.Duration // 0 = no timeout
	ResultLimit int
}

// RedisConfig controls the optional search cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// DirectoryConfig controls the user directory.
type DirectoryConfig struct {
	NameMaxAge    time.Duration
	GuestTTL      time.Duration
	SweepInterval time.Duration
}

// TimeoutConfig holds request-scoped timeouts.
type TimeoutConfig struct {
	HealthCheck time.Duration
	Shutdown    time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "9090"),
		FrontendURL:    getEnv("FRONTEND_URL", ""),
		DBPath:         getEnv("DB_PATH", "./data/hungrybot.db"),
		GRPCHealthAddr: getEnv("GRPC_HEALTH_ADDR", ""),
		WebchatEnabled: getEnvBool("WEBCHAT_ENABLED", true),
		Slack: SlackConfig{
			BotToken:     strings.TrimSpace(getEnv("SLACK_BOT_TOKEN", "")),
			WebhookToken: getEnv("SLACK_WEBHOOK_TOKEN", ""),
		},
		Yelp: YelpConfig{
			APIKey:      strings.TrimSpace(getEnv("YELP_API_KEY", "")),
			BaseURL:     getEnv("YELP_BASE_URL", "https://api.yelp.com/v3"),
			Timeout:     getEnvDuration("YELP_TIMEOUT", 0),
			ResultLimit: getEnvInt("YELP_RESULT_LIMIT", 1),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("SEARCH_CACHE_TTL", 10*time.Minute),
		},
		Directory: DirectoryConfig{
			NameMaxAge:    getEnvDuration("USER_NAME_MAX_AGE", 24*time.Hour),
			GuestTTL:      getEnvDuration("GUEST_TTL", 30*24*time.Hour),
			SweepInterval: getEnvDuration("GUEST_SWEEP_INTERVAL", time.Hour),
		},
		Timeout: TimeoutConfig{
			HealthCheck: getEnvDuration("HEALTH_CHECK_TIMEOUT", 5*time.Second),
			Shutdown:    getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.Yelp.BaseURL == "" {
		return fmt.Errorf("YELP_BASE_URL cannot be empty")
	}
	if c.Yelp.Timeout < 0 {
		return fmt.Errorf("YELP_TIMEOUT must be >= 0")
	}
	if c.Yelp.ResultLimit <= 0 {
		return fmt.Errorf("YELP_RESULT_LIMIT must be > 0")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("REDIS_DB must be >= 0")
	}
	if c.Redis.Addr != "" && c.Redis.TTL <= 0 {
		return fmt.Errorf("SEARCH_CACHE_TTL must be > 0 when REDIS_ADDR is set")
	}
	if c.Directory.GuestTTL > 0 && c.Directory.SweepInterval <= 0 {
		return fmt.Errorf("GUEST_SWEEP_INTERVAL must be > 0 when GUEST_TTL is set")
	}
	if c.Timeout.HealthCheck <= 0 {
		return fmt.Errorf("HEALTH_CHECK_TIMEOUT must be > 0")
	}
	if !c.Slack.Enabled() && !c.WebchatEnabled {
		return fmt.Errorf("no transport enabled: set SLACK_BOT_TOKEN or WEBCHAT_ENABLED")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	if env := os.Getenv("APP_ENV"); env != "" {
		return env == "development"
	}
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

// getEnvDuration accepts Go durations ("30s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
