package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIURL        string
	HTTPTimeout   time.Duration
	RPS           int
	StateDB       string
	StatsInterval time.Duration

	IdentityURL    string
	IdentityAPIKey string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	GoogleIssuer       string

	LogLevel  slog.Level
	LogFormat string
}

// Load reads .env and .env.local, then the environment. Values already set
// in the environment win over the files.
func Load() (Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	e := env{get: getenv}
	cfg := Config{
		APIURL:             e.str("ARTIFY_API_URL", "http://localhost:5000"),
		HTTPTimeout:        e.duration("ARTIFY_HTTP_TIMEOUT", 15*time.Second),
		RPS:                e.int("ARTIFY_RPS", 10),
		StateDB:            e.str("ARTIFY_STATE_DB", defaultStateDB()),
		StatsInterval:      e.duration("ARTIFY_STATS_INTERVAL", 30*time.Second),
		IdentityURL:        e.str("IDENTITY_URL", "https://identitytoolkit.googleapis.com"),
		IdentityAPIKey:     e.str("IDENTITY_API_KEY", ""),
		GoogleClientID:     e.str("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: e.str("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  e.str("GOOGLE_REDIRECT_URL", "http://localhost:8085/callback"),
		GoogleIssuer:       e.str("GOOGLE_ISSUER", "https://accounts.google.com"),
		LogFormat:          strings.ToLower(e.str("LOG_FORMAT", "tint")),
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(e.str("LOG_LEVEL", "info"))); err != nil {
		e.fail("LOG_LEVEL", err)
	}
	switch cfg.LogFormat {
	case "tint", "json", "text":
	default:
		e.fail("LOG_FORMAT", fmt.Errorf("unknown format %q", cfg.LogFormat))
	}
	if cfg.RPS <= 0 {
		e.fail("ARTIFY_RPS", fmt.Errorf("must be positive"))
	}
	return cfg, e.err
}

// GoogleEnabled reports whether federated sign-in can be offered.
func (c Config) GoogleEnabled() bool {
	return c.GoogleClientID != ""
}

type env struct {
	get func(string) string
	err error
}

func (e *env) fail(key string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("config %s: %w", key, err)
	}
}

func (e *env) str(key, fallback string) string {
	if v := strings.TrimSpace(e.get(key)); v != "" {
		return v
	}
	return fallback
}

func (e *env) int(key string, fallback int) int {
	v := strings.TrimSpace(e.get(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, err)
		return fallback
	}
	return n
}

func (e *env) duration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(e.get(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, err)
		return fallback
	}
	return d
}

func defaultStateDB() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".artify", "state.db")
	}
	return filepath.Join(dir, "artify", "state.db")
}
