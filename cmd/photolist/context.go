package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tendant/simple-photolist/internal/config"
)

type commandContext struct {
	catalogFlag      string
	fetchWorkers     int
	transformWorkers int

	cfg     *config.Config
	logger  *slog.Logger
	closers []io.Closer

	loadEnv func() (config.Config, error)
}

func newCommandContext() *commandContext {
	return &commandContext{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		loadEnv: func() (config.Config, error) {
			_ = godotenv.Load()
			return config.LoadConfig()
		},
	}
}

func (c *commandContext) bindFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&c.catalogFlag, "catalog", "", "Catalog source (URL or file; json, toml or plist)")
	flags.IntVar(&c.fetchWorkers, "fetch-workers", 0, "Number of concurrent downloads")
	flags.IntVar(&c.transformWorkers, "transform-workers", 0, "Number of concurrent filter operations")
}

// ensureConfig loads the environment once and applies flag overrides.
func (c *commandContext) ensureConfig(cmd *cobra.Command) (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	cfg, err := c.loadEnv()
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("catalog") {
		cfg.CatalogSource = c.catalogFlag
	}
	if flags.Changed("fetch-workers") {
		cfg.FetchWorkers = c.fetchWorkers
	}
	if flags.Changed("transform-workers") {
		cfg.TransformWorkers = c.transformWorkers
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	c.cfg = &cfg
	return cfg, nil
}

// useLogger installs a text logger writing to w, or to the configured log
// file when one is set.
func (c *commandContext) useLogger(w io.Writer) error {
	if c.cfg == nil {
		return fmt.Errorf("logger requested before config")
	}
	if c.cfg.LogFile != "" {
		f, err := os.OpenFile(c.cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		c.closers = append(c.closers, f)
		w = f
	}
	c.logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: c.cfg.LogLevel}))
	slog.SetDefault(c.logger)
	return nil
}

func (c *commandContext) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i].Close()
	}
	c.closers = nil
}
