package config

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/tendant/simple-photolist/internal/catalog"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PHOTOLIST_CATALOG", "FETCH_WORKERS", "TRANSFORM_WORKERS", "FETCH_TIMEOUT",
		"FETCH_MAX_BYTES", "THUMB_DIR", "THUMB_WIDTH", "THUMB_HEIGHT", "SEPIA_INTENSITY",
		"NATS_URL", "SUBJECT_ITEM_CHANGED", "SUBJECT_ITEM_INTEREST", "SUBJECT_CATALOG_LOADED",
		"LOG_LEVEL", "PHOTOLIST_LOG_FILE",
		"DEFAULT_STORAGE_BACKEND", "DATABASE_TYPE", "DATABASE_URL", "DATABASE_SCHEMA",
		"AWS_S3_BUCKET", "AWS_S3_REGION", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY",
		"AWS_S3_ENDPOINT", "AWS_S3_USE_SSL", "AWS_S3_USE_PATH_STYLE",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.CatalogSource != catalog.DefaultSource {
		t.Fatalf("unexpected catalog source: %s", cfg.CatalogSource)
	}
	if cfg.FetchWorkers != 4 || cfg.TransformWorkers != 2 {
		t.Fatalf("unexpected worker counts: %d %d", cfg.FetchWorkers, cfg.TransformWorkers)
	}
	if cfg.FetchTimeout != 30*time.Second || cfg.FetchMaxBytes != 32<<20 {
		t.Fatalf("unexpected fetch limits: %s %d", cfg.FetchTimeout, cfg.FetchMaxBytes)
	}
	if cfg.ThumbWidth != 256 || cfg.ThumbHeight != 256 {
		t.Fatalf("unexpected thumb dimensions: %dx%d", cfg.ThumbWidth, cfg.ThumbHeight)
	}
	if cfg.SepiaIntensity != 0.8 {
		t.Fatalf("unexpected sepia intensity: %v", cfg.SepiaIntensity)
	}
	if cfg.NATSURL != "" || cfg.SubjectChanged != "photolist.item.changed" {
		t.Fatalf("unexpected bus settings: %q %q", cfg.NATSURL, cfg.SubjectChanged)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("unexpected log level: %v", cfg.LogLevel)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PHOTOLIST_CATALOG", "./photos.toml")
	t.Setenv("FETCH_WORKERS", "8")
	t.Setenv("FETCH_TIMEOUT", "5s")
	t.Setenv("SEPIA_INTENSITY", "0.5")
	t.Setenv("NATS_URL", "nats://127.0.0.1:4222")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.CatalogSource != "./photos.toml" || cfg.FetchWorkers != 8 || cfg.FetchTimeout != 5*time.Second {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.SepiaIntensity != 0.5 || cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadConfigInvalidValues(t *testing.T) {
	cases := map[string]string{
		"FETCH_WORKERS":   "not-a-number",
		"THUMB_WIDTH":     "0",
		"FETCH_TIMEOUT":   "soon",
		"SEPIA_INTENSITY": "1.5",
		"LOG_LEVEL":       "loud",
		"NATS_URL":        "not a url",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			if _, err := LoadConfig(); err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
		})
	}
}

func TestValidateAfterOverride(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	cfg.FetchWorkers = 0
	err = cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "FetchWorkers") {
		t.Fatalf("expected FetchWorkers validation error, got %v", err)
	}
}

func TestLoadConfigContentStore(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Content.Enabled() {
		t.Fatalf("content store enabled without a backend: %+v", cfg.Content)
	}
	if cfg.Content.DatabaseType != "postgres" || cfg.Content.DatabaseSchema != "content" || !cfg.Content.S3UsePathStyle {
		t.Fatalf("unexpected content defaults: %+v", cfg.Content)
	}

	t.Setenv("DEFAULT_STORAGE_BACKEND", "s3")
	t.Setenv("AWS_S3_BUCKET", "photos")
	t.Setenv("AWS_S3_USE_SSL", "true")
	cfg, err = LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if !cfg.Content.Enabled() || cfg.Content.S3Bucket != "photos" || !cfg.Content.S3UseSSL {
		t.Fatalf("unexpected content settings: %+v", cfg.Content)
	}
}

func TestLoadConfigContentStoreInvalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown backend":   {"DEFAULT_STORAGE_BACKEND": "gcs"},
		"s3 without bucket": {"DEFAULT_STORAGE_BACKEND": "s3"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(); err == nil {
				t.Fatalf("expected error for %v", env)
			}
		})
	}
}
