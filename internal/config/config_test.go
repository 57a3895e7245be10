package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_PATH", "JWT_SECRET", "CORS_ORIGINS", "DEADLINE_CRON", "DEADLINE_WINDOW_DAYS", "APP_ENV", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	t.Setenv("PORT", "5001")
	t.Setenv("DEADLINE_WINDOW_DAYS", "30")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5001, cfg.ServerPort)
	assert.Equal(t, 30, cfg.DeadlineWindowDays)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	assert.NotEmpty(t, cfg.JWTSecret, "dev secret should be filled in")
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_PATH", "/tmp/x.db")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test ,")
	t.Setenv("DEADLINE_CRON", "*/5 * * * *")
	t.Setenv("DEADLINE_WINDOW_DAYS", "7")
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.ServerPort)
	assert.Equal(t, "/tmp/x.db", cfg.DatabasePath)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, "*/5 * * * *", cfg.DeadlineCron)
	assert.Equal(t, 7, cfg.DeadlineWindowDays)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")

	t.Setenv("PORT", "not-a-number")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("PORT", "5001")
	t.Setenv("DEADLINE_WINDOW_DAYS", "0")
	_, err = Load()
	require.Error(t, err)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("PORT", "5001")
	t.Setenv("DEADLINE_WINDOW_DAYS", "30")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadClient(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.json")
	t.Setenv("CONFSPOTTER_API_URL", "http://api.test:5000/")
	t.Setenv("CONFSPOTTER_SESSION", path)

	cfg, err := LoadClient()
	require.NoError(t, err)
	assert.Equal(t, "http://api.test:5000", cfg.APIURL)
	assert.Equal(t, path, cfg.SessionPath)
}
