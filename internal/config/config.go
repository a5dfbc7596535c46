// Package config loads the feed aggregation pipeline's environment
// configuration with a fail-open strategy: an invalid or missing value
// never aborts the run, it falls back to a documented default and is
// logged and counted instead.
package config

import (
	"log/slog"
	"runtime"

	pkgconfig "feedagg/internal/pkg/config"
)

// PipelineConfig holds every environment-configurable knob for a run.
// Field-level defaults mirror the pipeline's external interfaces:
// CONCURRENCY, LOG_LEVEL, NO_UPLOAD, PCDN_URL_BASE, PUB_S3_BUCKET,
// PRIV_S3_BUCKET, SOURCES_FILE, SENTRY_URL, plus the supplemented
// DUAL_UPLOAD_COMPAT feature flag.
type PipelineConfig struct {
	// Concurrency bounds the worker pool width for every parallel stage
	// (download, normalize, image verify, image cache).
	Concurrency int

	// LogLevel controls the slog handler's minimum level.
	LogLevel string

	// NoUpload disables every object-store upload and existence probe
	// when set; the pipeline still runs and writes local artifacts.
	NoUpload bool

	// PCDNURLBase is the CDN base URL that cached thumbnail paths are
	// rewritten to serve from.
	PCDNURLBase string

	// PubS3Bucket receives the output feed and report.
	PubS3Bucket string

	// PrivS3Bucket receives cached thumbnail blobs.
	PrivS3Bucket string

	// SourcesFile is the basename used for registry inputs/outputs.
	SourcesFile string

	// SentryURL is an optional error-reporting endpoint; empty disables
	// it.
	SentryURL string

	// DualUploadCompat preserves the original pipeline's double-upload
	// stopgap for the public feed output when enabled.
	DualUploadCompat bool

	// S3Endpoint, S3AccessKey, and S3SecretKey address the S3-compatible
	// object store backing both buckets. S3UseSSL toggles TLS for that
	// endpoint.
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3UseSSL    bool
}

// Default returns a PipelineConfig with the documented defaults.
func Default() PipelineConfig {
	return PipelineConfig{
		Concurrency:      max(1, runtime.NumCPU()),
		LogLevel:         "WARNING",
		NoUpload:         false,
		PCDNURLBase:      "https://pcdn.brave.software",
		PubS3Bucket:      "brave-today-cdn-development",
		PrivS3Bucket:     "brave-private-cdn-development",
		SourcesFile:      "sources",
		SentryURL:        "",
		DualUploadCompat: false,
		S3Endpoint:       "s3.amazonaws.com",
		S3AccessKey:      "",
		S3SecretKey:      "",
		S3UseSSL:         true,
	}
}

// Load reads environment variables with the fail-open strategy: invalid
// values fall back to the default, get logged, and increment the
// supplied metrics' fallback counters. Load never returns an error.
func Load(logger *slog.Logger, metrics *pkgconfig.ConfigMetrics) *PipelineConfig {
	cfg := Default()
	fallbackApplied := false

	note := func(field, envKey string, warnings []string) {
		fallbackApplied = true
		metrics.RecordValidationError(field)
		metrics.RecordFallback(field, "default")
		for _, w := range warnings {
			logger.Warn("configuration fallback applied",
				slog.String("field", field),
				slog.String("env_key", envKey),
				slog.String("warning", w))
		}
	}

	concurrency := pkgconfig.LoadEnvInt("CONCURRENCY", cfg.Concurrency, func(v int) error {
		return pkgconfig.ValidateIntRange(v, 1, 256)
	})
	cfg.Concurrency = concurrency.Value.(int)
	if concurrency.FallbackApplied {
		note("concurrency", "CONCURRENCY", concurrency.Warnings)
	}

	logLevel := pkgconfig.LoadEnvString("LOG_LEVEL", cfg.LogLevel)
	cfg.LogLevel = logLevel

	noUpload := pkgconfig.LoadEnvBool("NO_UPLOAD", cfg.NoUpload)
	cfg.NoUpload = noUpload.Value.(bool)
	if noUpload.FallbackApplied {
		note("no_upload", "NO_UPLOAD", noUpload.Warnings)
	}

	cfg.PCDNURLBase = pkgconfig.LoadEnvString("PCDN_URL_BASE", cfg.PCDNURLBase)
	cfg.PubS3Bucket = pkgconfig.LoadEnvString("PUB_S3_BUCKET", cfg.PubS3Bucket)
	cfg.PrivS3Bucket = pkgconfig.LoadEnvString("PRIV_S3_BUCKET", cfg.PrivS3Bucket)
	cfg.SourcesFile = pkgconfig.LoadEnvString("SOURCES_FILE", cfg.SourcesFile)
	cfg.SentryURL = pkgconfig.LoadEnvString("SENTRY_URL", cfg.SentryURL)

	dualUpload := pkgconfig.LoadEnvBool("DUAL_UPLOAD_COMPAT", cfg.DualUploadCompat)
	cfg.DualUploadCompat = dualUpload.Value.(bool)
	if dualUpload.FallbackApplied {
		note("dual_upload_compat", "DUAL_UPLOAD_COMPAT", dualUpload.Warnings)
	}

	cfg.S3Endpoint = pkgconfig.LoadEnvString("S3_ENDPOINT", cfg.S3Endpoint)
	cfg.S3AccessKey = pkgconfig.LoadEnvString("S3_ACCESS_KEY", cfg.S3AccessKey)
	cfg.S3SecretKey = pkgconfig.LoadEnvString("S3_SECRET_KEY", cfg.S3SecretKey)
	s3UseSSL := pkgconfig.LoadEnvBool("S3_USE_SSL", cfg.S3UseSSL)
	cfg.S3UseSSL = s3UseSSL.Value.(bool)
	if s3UseSSL.FallbackApplied {
		note("s3_use_ssl", "S3_USE_SSL", s3UseSSL.Warnings)
	}

	metrics.SetFallbackActive("", fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg
}
