// Package config reads the server's settings from environment variables.
//
// Every field has an `env` tag naming its variable. Defaults come from
// `envDefault`, so an empty environment (plus the required secret) is
// enough to run the server against a local SQLite file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/sakif/user-auth/internal/auth"
	"github.com/sakif/user-auth/internal/handler"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds every setting the server needs.
type Config struct {
	Port              int           `env:"PORT"                    envDefault:"8080"`
	DBDriver          string        `env:"DB_DRIVER"               envDefault:"sqlite"`
	DBPath            string        `env:"DB_PATH"                 envDefault:"data/users.db"`
	DatabaseURL       string        `env:"DATABASE_URL"`
	TokenSecret       string        `env:"ACCESS_TOKEN_SECRET_KEY"`
	TokenTTL          time.Duration `env:"ACCESS_TOKEN_TTL"        envDefault:"720h"`
	BcryptCost        int           `env:"BCRYPT_COST"             envDefault:"10"`
	ErrorStatusPolicy string        `env:"ERROR_STATUS_POLICY"     envDefault:"classified"`
	LogLevel          string        `env:"LOG_LEVEL"               envDefault:"info"`
	LogFormat         string        `env:"LOG_FORMAT"              envDefault:"text"`
}

// Load parses the environment into a Config. It does not validate it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate reports every problem with cfg at once.
func (c Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}

	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			errs = append(errs, errors.New("DB_PATH is required for the sqlite driver"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver))
	}

	if c.TokenSecret == "" {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET_KEY is required"))
	} else if len(c.TokenSecret) < auth.MinSecretLength {
		// Same bound auth.NewTokenService enforces, reported before any store is opened.
		errs = append(errs, fmt.Errorf("ACCESS_TOKEN_SECRET_KEY must be at least %d characters", auth.MinSecretLength))
	}

	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("ACCESS_TOKEN_TTL must be positive, got %s", c.TokenTTL))
	}

	if _, err := handler.ParseErrorPolicy(c.ErrorStatusPolicy); err != nil {
		errs = append(errs, fmt.Errorf("ERROR_STATUS_POLICY: %w", err))
	}

	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat))
	}

	return errors.Join(errs...)
}

// NewLogger builds the process logger described by LOG_LEVEL and LOG_FORMAT.
// Unknown values fall back to info level and text output.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown LOG_LEVEL %q", s)
	}
	return level, nil
}
