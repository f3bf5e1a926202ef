package config

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/user-auth/internal/auth"
	"github.com/sakif/user-auth/internal/handler"
)

const testSecret = "0123456789abcdef0123"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET_KEY", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "data/users.db", cfg.DBPath)
	assert.Equal(t, 30*24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "classified", cfg.ErrorStatusPolicy)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/users")
	t.Setenv("ACCESS_TOKEN_SECRET_KEY", testSecret)
	t.Setenv("ACCESS_TOKEN_TTL", "1h")
	t.Setenv("ERROR_STATUS_POLICY", "legacy")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, "legacy", cfg.ErrorStatusPolicy)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_BadValue(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestValidate(t *testing.T) {
	valid := Config{
		Port:              8080,
		DBDriver:          DriverSQLite,
		DBPath:            ":memory:",
		TokenSecret:       testSecret,
		TokenTTL:          time.Hour,
		BcryptCost:        10,
		ErrorStatusPolicy: "classified",
		LogLevel:          "info",
		LogFormat:         "text",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing secret", func(c *Config) { c.TokenSecret = "" }, "ACCESS_TOKEN_SECRET_KEY is required"},
		{"short secret", func(c *Config) { c.TokenSecret = "short" }, "at least 16"},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, `unknown DB_DRIVER "mysql"`},
		{"postgres without dsn", func(c *Config) { c.DBDriver = DriverPostgres }, "DATABASE_URL is required"},
		{"unknown policy", func(c *Config) { c.ErrorStatusPolicy = "strict" }, "ERROR_STATUS_POLICY"},
		{"bad port", func(c *Config) { c.Port = 0 }, "PORT"},
		{"zero ttl", func(c *Config) { c.TokenTTL = 0 }, "ACCESS_TOKEN_TTL"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "LOG_LEVEL"},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_AgreesWithConsumers(t *testing.T) {
	base := Config{
		Port:        8080,
		DBDriver:    DriverSQLite,
		DBPath:      ":memory:",
		TokenTTL:    time.Hour,
		LogLevel:    "info",
		LogFormat:   "text",
		TokenSecret: strings.Repeat("s", auth.MinSecretLength),
	}

	for _, policy := range []handler.ErrorPolicy{handler.PolicyClassified, handler.PolicyLegacy} {
		cfg := base
		cfg.ErrorStatusPolicy = string(policy)
		assert.NoError(t, cfg.Validate(), "policy %q", policy)
	}

	// A secret Validate accepts must also be accepted by the token service,
	// and one byte less must be rejected by both.
	base.ErrorStatusPolicy = string(handler.PolicyClassified)
	require.NoError(t, base.Validate())
	_, err := auth.NewTokenService(base.TokenSecret, base.TokenTTL)
	require.NoError(t, err)

	short := base
	short.TokenSecret = base.TokenSecret[1:]
	assert.Error(t, short.Validate())
	_, err = auth.NewTokenService(short.TokenSecret, short.TokenTTL)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{LogLevel: "warn", LogFormat: "json"}
	logger := cfg.NewLogger(&buf)

	logger.Info("dropped")
	logger.Warn("kept", "user_id", "u1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "u1", line["user_id"])
}
