package config

import (
	"log/slog"
	"testing"

	pkgconfig "feedagg/internal/pkg/config"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	logger := slog.Default()
	metrics := pkgconfig.NewConfigMetrics("test_pipeline_defaults")

	cfg := Load(logger, metrics)

	assert.GreaterOrEqual(t, cfg.Concurrency, 1)
	assert.Equal(t, "WARNING", cfg.LogLevel)
	assert.False(t, cfg.NoUpload)
	assert.Equal(t, "https://pcdn.brave.software", cfg.PCDNURLBase)
	assert.Equal(t, "brave-today-cdn-development", cfg.PubS3Bucket)
	assert.Equal(t, "brave-private-cdn-development", cfg.PrivS3Bucket)
	assert.Equal(t, "sources", cfg.SourcesFile)
	assert.False(t, cfg.DualUploadCompat)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONCURRENCY", "8")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("NO_UPLOAD", "true")
	t.Setenv("PCDN_URL_BASE", "https://cdn.example.test")
	t.Setenv("DUAL_UPLOAD_COMPAT", "true")

	logger := slog.Default()
	metrics := pkgconfig.NewConfigMetrics("test_pipeline_overrides")

	cfg := Load(logger, metrics)

	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.NoUpload)
	assert.Equal(t, "https://cdn.example.test", cfg.PCDNURLBase)
	assert.True(t, cfg.DualUploadCompat)
}

func TestLoad_InvalidConcurrencyFallsBack(t *testing.T) {
	t.Setenv("CONCURRENCY", "not-a-number")

	logger := slog.Default()
	metrics := pkgconfig.NewConfigMetrics("test_pipeline_invalid_concurrency")

	cfg := Load(logger, metrics)

	assert.GreaterOrEqual(t, cfg.Concurrency, 1)
}
