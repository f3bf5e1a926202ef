// Package main is the entry point for the user-auth server.
//
// MAIN PACKAGE IN GO:
// main should stay minimal. Its job is to:
// 1. Read configuration (.env file, then environment variables)
// 2. Create dependencies (logger, store, token and password services, metrics)
// 3. Start the application
//
// All actual logic lives in imported packages (internal/server,
// internal/service, internal/handler, ...).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sakif/user-auth/internal/auth"
	"github.com/sakif/user-auth/internal/config"
	"github.com/sakif/user-auth/internal/handler"
	"github.com/sakif/user-auth/internal/metrics"
	"github.com/sakif/user-auth/internal/repository/postgres"
	"github.com/sakif/user-auth/internal/repository/sqlite"
	"github.com/sakif/user-auth/internal/server"
)

// storeOpenTimeout bounds connecting and running migrations at startup.
const storeOpenTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// === 1. READ CONFIGURATION ===
	// A .env file is optional; real environment variables always win because
	// godotenv.Load never overrides a variable that is already set.
	envFileErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// === 2. SET UP LOGGING ===
	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)
	if envFileErr != nil {
		logger.Debug(".env file not loaded, using environment only", slog.String("reason", envFileErr.Error()))
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	policy, err := handler.ParseErrorPolicy(cfg.ErrorStatusPolicy)
	if err != nil {
		return err
	}

	// === 3. CREDENTIAL SERVICES ===
	tokens, err := auth.NewTokenService(cfg.TokenSecret, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("token service: %w", err)
	}
	passwords := auth.NewPasswordService(cfg.BcryptCost)
	if passwords.Cost() != cfg.BcryptCost {
		logger.Warn("BCRYPT_COST out of range, using default",
			slog.Int("requested", cfg.BcryptCost),
			slog.Int("cost", passwords.Cost()),
		)
	}

	// === 4. METRICS ===
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// === 5. OPEN THE DIRECTORY STORE ===
	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}

	// === 6. CREATE AND START THE SERVER ===
	srv, err := server.New(server.Config{
		Port:        cfg.Port,
		ErrorPolicy: policy,
	}, logger, server.Deps{
		Store:     store,
		Tokens:    tokens,
		Passwords: passwords,
		Metrics:   m,
	})
	if err != nil {
		store.Close()
		return fmt.Errorf("creating server: %w", err)
	}

	// Start blocks until SIGINT/SIGTERM and closes the store on the way out.
	return srv.Start()
}

// openStore connects to the configured database and applies migrations.
func openStore(cfg config.Config, logger *slog.Logger) (server.Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), storeOpenTimeout)
	defer cancel()

	switch cfg.DBDriver {
	case config.DriverPostgres:
		db, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("opening postgres: %w", err)
		}
		logger.Info("directory store ready", slog.String("driver", cfg.DBDriver))
		return db, nil

	default:
		if cfg.DBPath != ":memory:" {
			// MkdirAll is like `mkdir -p`: it creates every missing parent.
			dbDir := filepath.Dir(cfg.DBPath)
			if err := os.MkdirAll(dbDir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory %s: %w", dbDir, err)
			}
		}
		db, err := sqlite.New(ctx, cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite: %w", err)
		}
		logger.Info("directory store ready",
			slog.String("driver", cfg.DBDriver),
			slog.String("path", cfg.DBPath),
		)
		return db, nil
	}
}
