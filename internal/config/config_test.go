package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DATABASE_TYPE", "SQLite")
	t.Setenv("AUTH_TOKEN_TTL", "90m")
	t.Setenv("UPLOAD_MAX_BYTES", "1024")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("DATABASE_AUTO_MIGRATE", "off")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, 90*time.Minute, cfg.AuthTokenTTL)
	assert.Equal(t, int64(1024), cfg.UploadMaxBytes)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.DBAutoMigrate)
}

func TestLoadFallsBackOnInvalidValues(t *testing.T) {
	t.Setenv("AUTH_TOKEN_TTL", "soon")
	t.Setenv("LOGIN_BURST", "many")

	cfg := Load()

	assert.Equal(t, 24*time.Hour, cfg.AuthTokenTTL)
	assert.Equal(t, 10, cfg.LoginBurst)
}

func TestBillingConfigDefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	holder, err := NewBillingConfigHolder(zap.NewNop())
	require.NoError(t, err)

	got := holder.Get()
	assert.Equal(t, DefaultElectricityRate, got.Electricity.DefaultRate)
	assert.False(t, got.Electricity.MarkGeneratedPaid)
}

func TestBillingConfigReadsFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	content := []byte("billing:\n  electricity:\n    defaultRate: 8.5\n    markGeneratedPaid: true\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "billing.yml"), content, 0o644))

	holder, err := NewBillingConfigHolder(zap.NewNop())
	require.NoError(t, err)

	got := holder.Get()
	assert.Equal(t, 8.5, got.Electricity.DefaultRate)
	assert.True(t, got.Electricity.MarkGeneratedPaid)
}

func TestBillingConfigRejectsNegativeRate(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	content := []byte("billing:\n  electricity:\n    defaultRate: -1\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "billing.yml"), content, 0o644))

	_, err := NewBillingConfigHolder(zap.NewNop())
	assert.Error(t, err)
}
