package main

import (
	"fmt"
	"log/slog"

	simpleconfig "github.com/tendant/simple-content/pkg/simplecontent/config"

	"github.com/tendant/simple-photolist/internal/config"
	"github.com/tendant/simple-photolist/internal/fetch"
)

// newContentFetcher serves content:// locators from a simple-content store.
// It returns nil when no storage backend is configured.
func newContentFetcher(cfg config.Config, logger *slog.Logger) (*fetch.Content, error) {
	if !cfg.Content.Enabled() {
		return nil, nil
	}

	contentCfg, err := loadSimpleContentConfig(cfg.Content)
	if err != nil {
		return nil, fmt.Errorf("load simplecontent config: %w", err)
	}
	logger.Info("loaded simplecontent config", "default_backend", contentCfg.DefaultStorageBackend, "database_type", contentCfg.DatabaseType, "has_database_url", contentCfg.DatabaseURL != "")

	svc, err := contentCfg.BuildService()
	if err != nil {
		return nil, fmt.Errorf("build simplecontent service: %w", err)
	}
	logger.Info("simplecontent service ready", "backend", contentCfg.DefaultStorageBackend)
	return fetch.NewContent(svc, cfg.FetchMaxBytes), nil
}

func loadSimpleContentConfig(store config.ContentStore) (*simpleconfig.ServerConfig, error) {
	opts := []simpleconfig.Option{
		simpleconfig.WithDatabase(store.DatabaseType, store.DatabaseURL),
		simpleconfig.WithDatabaseSchema(store.DatabaseSchema),
		simpleconfig.WithDefaultStorage(store.Backend),
	}

	switch store.Backend {
	case "s3":
		opts = append(opts, simpleconfig.WithS3StorageFull(
			"s3",
			store.S3Bucket,
			store.S3Region,
			store.S3AccessKeyID,
			store.S3SecretKey,
			store.S3Endpoint,
			store.S3UseSSL,
			store.S3UsePathStyle,
		))
	case "memory":
		opts = append(opts, simpleconfig.WithMemoryStorage("memory"))
	}

	opts = append(opts, simpleconfig.WithEventLogging(false))
	return simpleconfig.Load(opts...)
}
