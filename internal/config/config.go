// internal/config/config.go
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tendant/simple-photolist/internal/catalog"
	"github.com/tendant/simple-photolist/internal/img"
)

type Config struct {
	CatalogSource    string        `validate:"required"`
	FetchWorkers     int           `validate:"min=1,max=64"`
	TransformWorkers int           `validate:"min=1,max=64"`
	FetchTimeout     time.Duration `validate:"gt=0"`
	FetchMaxBytes    int64         `validate:"gt=0"`
	ThumbDir         string
	ThumbWidth       int     `validate:"min=1"`
	ThumbHeight      int     `validate:"min=1"`
	SepiaIntensity   float64 `validate:"gte=0,lte=1"`
	NATSURL          string  `validate:"omitempty,url"`
	SubjectChanged   string  `validate:"required_with=NATSURL"`
	SubjectInterest  string  `validate:"required_with=NATSURL"`
	SubjectCatalog   string  `validate:"required_with=NATSURL"`
	LogLevel         slog.Level
	LogFile          string
	Content          ContentStore
}

// ContentStore configures the simple-content service behind content://
// locators. An empty Backend disables it.
type ContentStore struct {
	Backend        string `validate:"omitempty,oneof=s3 memory"`
	DatabaseType   string
	DatabaseURL    string
	DatabaseSchema string
	S3Bucket       string `validate:"required_if=Backend s3"`
	S3Region       string
	S3AccessKeyID  string
	S3SecretKey    string
	S3Endpoint     string
	S3UseSSL       bool
	S3UsePathStyle bool
}

func (c ContentStore) Enabled() bool { return c.Backend != "" }

func LoadConfig() (Config, error) {
	cfg := Config{
		CatalogSource:   getenv("PHOTOLIST_CATALOG", catalog.DefaultSource),
		ThumbDir:        getenv("THUMB_DIR", ""),
		NATSURL:         getenv("NATS_URL", ""),
		SubjectChanged:  getenv("SUBJECT_ITEM_CHANGED", "photolist.item.changed"),
		SubjectInterest: getenv("SUBJECT_ITEM_INTEREST", "photolist.item.interest"),
		SubjectCatalog:  getenv("SUBJECT_CATALOG_LOADED", "photolist.catalog.loaded"),
		LogFile:         getenv("PHOTOLIST_LOG_FILE", ""),
		Content: ContentStore{
			Backend:        getenv("DEFAULT_STORAGE_BACKEND", ""),
			DatabaseType:   getenv("DATABASE_TYPE", "postgres"),
			DatabaseURL:    getenv("DATABASE_URL", ""),
			DatabaseSchema: getenv("DATABASE_SCHEMA", "content"),
			S3Bucket:       getenv("AWS_S3_BUCKET", ""),
			S3Region:       getenv("AWS_S3_REGION", "us-east-1"),
			S3AccessKeyID:  getenv("AWS_ACCESS_KEY_ID", ""),
			S3SecretKey:    getenv("AWS_SECRET_ACCESS_KEY", ""),
			S3Endpoint:     getenv("AWS_S3_ENDPOINT", ""),
			S3UseSSL:       getenvBool("AWS_S3_USE_SSL", false),
			S3UsePathStyle: getenvBool("AWS_S3_USE_PATH_STYLE", true),
		},
	}

	var err error
	if cfg.FetchWorkers, err = parsePositiveInt(getenv("FETCH_WORKERS", "4"), "FETCH_WORKERS"); err != nil {
		return Config{}, err
	}
	if cfg.TransformWorkers, err = parsePositiveInt(getenv("TRANSFORM_WORKERS", "2"), "TRANSFORM_WORKERS"); err != nil {
		return Config{}, err
	}
	if cfg.ThumbWidth, err = parsePositiveInt(getenv("THUMB_WIDTH", "256"), "THUMB_WIDTH"); err != nil {
		return Config{}, err
	}
	if cfg.ThumbHeight, err = parsePositiveInt(getenv("THUMB_HEIGHT", "256"), "THUMB_HEIGHT"); err != nil {
		return Config{}, err
	}

	maxBytes, err := parsePositiveInt(getenv("FETCH_MAX_BYTES", strconv.Itoa(32<<20)), "FETCH_MAX_BYTES")
	if err != nil {
		return Config{}, err
	}
	cfg.FetchMaxBytes = int64(maxBytes)

	if cfg.FetchTimeout, err = time.ParseDuration(getenv("FETCH_TIMEOUT", "30s")); err != nil {
		return Config{}, fmt.Errorf("invalid FETCH_TIMEOUT: %w", err)
	}

	intensity := getenv("SEPIA_INTENSITY", strconv.FormatFloat(img.DefaultSepiaIntensity, 'f', -1, 64))
	if cfg.SepiaIntensity, err = strconv.ParseFloat(intensity, 64); err != nil {
		return Config{}, fmt.Errorf("invalid SEPIA_INTENSITY: %w", err)
	}

	if cfg.LogLevel, err = parseLevel(getenv("LOG_LEVEL", "info")); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints; call it again after applying overrides.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func parsePositiveInt(value string, name string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be greater than zero (got %d)", name, v)
	}
	return v, nil
}

func parseLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return level, nil
}

func getenvBool(key string, defaultValue bool) bool {
	val := getenv(key, "")
	if val == "" {
		return defaultValue
	}
	return val == "true"
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
