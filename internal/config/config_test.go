package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DSN", "LOG_FILE", "APP_ENV", "MAX_UPLOAD_MB", "ADMIN_EMAIL", "ADMIN_PASSWORD", "COOKIE_SECURE"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "cellar.db", cfg.DBDSN)
	assert.Equal(t, "./cellar.log", cfg.LogFile)
	assert.Equal(t, 10, cfg.MaxUploadMB)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.CookieSecure)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("LOG_FILE", "off")
	t.Setenv("APP_ENV", "Production")
	t.Setenv("MAX_UPLOAD_MB", "nope")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("ADMIN_PASSWORD", "S3cret!pass")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Port)
	assert.Empty(t, cfg.LogFile)
	assert.Equal(t, "production", cfg.Env)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, 10, cfg.MaxUploadMB)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, "S3cret!pass", cfg.AdminPassword)
}
