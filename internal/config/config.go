package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config captures all runtime configuration derived from environment variables.
type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Port     string `envconfig:"PORT" default:"8080"`

	OMDbURL           string        `envconfig:"OMDB_URL" default:"http://www.omdbapi.com/"`
	OMDbAPIKey        string        `envconfig:"OMDB_API_KEY"`
	LookupTimeout     time.Duration `envconfig:"LOOKUP_TIMEOUT" default:"5s"`
	LookupSettleDelay time.Duration `envconfig:"LOOKUP_SETTLE_DELAY" default:"3s"`

	SentryDSN string `envconfig:"SENTRY_DSN"`

	ReadTimeoutSecs  int `envconfig:"SERVER_READ_TIMEOUT" default:"15"`
	WriteTimeoutSecs int `envconfig:"SERVER_WRITE_TIMEOUT" default:"15"`
	IdleTimeoutSecs  int `envconfig:"SERVER_IDLE_TIMEOUT" default:"60"`

	// DBURL is optional; without it the lookup journal is disabled.
	DBURL             string `envconfig:"DB_URL"`
	DBMaxConns        int    `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns        int    `envconfig:"DB_MIN_CONNS" default:"1"`
	DBMaxIdleSecs     int    `envconfig:"DB_MAX_CONN_IDLE_SECS" default:"300"`
	DBMaxLifeSecs     int    `envconfig:"DB_MAX_CONN_LIFETIME_SECS" default:"3600"`
	DBConnTimeoutSecs int    `envconfig:"DB_CONN_TIMEOUT_SECS" default:"10"`
	DBStatementCache  int    `envconfig:"DB_STATEMENT_CACHE_CAPACITY" default:"256"`
}

// JournalEnabled reports whether settled lookups should be persisted.
func (c Config) JournalEnabled() bool {
	return c.DBURL != ""
}

// Load reads configuration from environment variables (a local .env file is
// honoured when present), applying defaults and validation.
func Load() (Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg.OMDbAPIKey = strings.TrimSpace(cfg.OMDbAPIKey)

	if cfg.OMDbAPIKey == "" {
		return Config{}, fmt.Errorf("OMDB_API_KEY is required")
	}
	if u, err := url.Parse(cfg.OMDbURL); err != nil || u.Scheme == "" || u.Host == "" {
		return Config{}, fmt.Errorf("OMDB_URL must be an absolute URL")
	}
	if cfg.LookupTimeout <= 0 {
		return Config{}, fmt.Errorf("LOOKUP_TIMEOUT must be positive")
	}
	if cfg.LookupSettleDelay <= 0 {
		return Config{}, fmt.Errorf("LOOKUP_SETTLE_DELAY must be positive")
	}
	if cfg.ReadTimeoutSecs <= 0 || cfg.WriteTimeoutSecs <= 0 || cfg.IdleTimeoutSecs <= 0 {
		return Config{}, fmt.Errorf("SERVER_*_TIMEOUT values must be positive")
	}
	if cfg.DBMaxConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.DBMinConns < 0 {
		return Config{}, fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.DBMinConns > cfg.DBMaxConns {
		return Config{}, fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if cfg.DBStatementCache < 0 {
		return Config{}, fmt.Errorf("DB_STATEMENT_CACHE_CAPACITY must be non-negative")
	}

	return cfg, nil
}
