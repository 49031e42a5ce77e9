package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir()) // no .env files
	for _, key := range []string{"PORT", "DATABASE_URL", "ACCESS_TOKEN_LIFETIME", "REFRESH_TOKEN_LIFETIME", "CORS_ORIGINS", "SMTP_HOST"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.HTTP.Port)
	assert.Equal(t, "taskflow.sqlite", cfg.Database.URL)
	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTokenLifetime)
	assert.Equal(t, 24*time.Hour, cfg.Auth.RefreshTokenLifetime)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.HTTP.CORSOrigins)
	assert.False(t, cfg.Mail.SMTPEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("ACCESS_TOKEN_LIFETIME", "5m")
	t.Setenv("CORS_ORIGINS", "http://a.example, http://b.example ,")
	t.Setenv("SMTP_HOST", "smtp.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.HTTP.Port)
	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTokenLifetime)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.HTTP.CORSOrigins)
	assert.True(t, cfg.Mail.SMTPEnabled())
}

func TestLoad_InvalidLifetime(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("REFRESH_TOKEN_LIFETIME", "tomorrow")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REFRESH_TOKEN_LIFETIME")
}
