package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/tendant/simple-photolist/internal/bus"
	"github.com/tendant/simple-photolist/internal/catalog"
	"github.com/tendant/simple-photolist/internal/config"
	"github.com/tendant/simple-photolist/internal/fetch"
	"github.com/tendant/simple-photolist/internal/img"
	"github.com/tendant/simple-photolist/internal/pending"
	"github.com/tendant/simple-photolist/internal/photo"
	"github.com/tendant/simple-photolist/internal/queue"
	"github.com/tendant/simple-photolist/internal/scheduler"
	"github.com/tendant/simple-photolist/internal/task"
)

const shutdownTimeout = 10 * time.Second

// pipeline is the scheduler together with the optional event bus.
type pipeline struct {
	sched   *scheduler.Scheduler
	nc      *bus.Client
	source  string
	records []*photo.Record
	logger  *slog.Logger
}

func loadRecords(ctx context.Context, cfg config.Config, logger *slog.Logger) ([]*photo.Record, error) {
	client := &http.Client{Timeout: cfg.FetchTimeout}
	records, err := catalog.Load(ctx, cfg.CatalogSource, client, logger)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", cfg.CatalogSource, err)
	}
	logger.Info("catalog loaded", "source", cfg.CatalogSource, "items", len(records))
	return records, nil
}

func newFetcher(cfg config.Config, logger *slog.Logger) (*fetch.Router, error) {
	router := fetch.NewRouter().
		Handle(fetch.NewHTTP(cfg.FetchTimeout, cfg.FetchMaxBytes), "http", "https").
		Handle(fetch.File{}, "file")

	content, err := newContentFetcher(cfg, logger)
	if err != nil {
		return nil, err
	}
	if content != nil {
		router.Handle(content, fetch.ContentScheme)
	}
	return router, nil
}

func newTransformer(cfg config.Config, logger *slog.Logger) (img.Chain, error) {
	if cfg.ThumbDir != "" {
		if err := os.MkdirAll(cfg.ThumbDir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure thumbnail directory: %w", err)
		}
		logger.Info("ensured thumbnail directory", "thumb_dir", cfg.ThumbDir)
	}
	return img.Chain{img.NewSepia(img.SepiaOptions{
		Width:     cfg.ThumbWidth,
		Height:    cfg.ThumbHeight,
		Intensity: cfg.SepiaIntensity,
		Dir:       cfg.ThumbDir,
	})}, nil
}

// newPipeline wires queues, fetcher and transformer around records. Item
// changes go to next, published on the bus first when NATS is configured.
func newPipeline(cfg config.Config, records []*photo.Record, next task.Notifier, logger *slog.Logger) (*pipeline, error) {
	fetcher, err := newFetcher(cfg, logger)
	if err != nil {
		return nil, err
	}
	transformer, err := newTransformer(cfg, logger)
	if err != nil {
		return nil, err
	}

	p := &pipeline{source: cfg.CatalogSource, records: records, logger: logger}

	notifier := next
	if cfg.NATSURL != "" {
		nc, err := bus.Connect(cfg.NATSURL, bus.Subjects{
			ItemChanged:   cfg.SubjectChanged,
			ItemInterest:  cfg.SubjectInterest,
			CatalogLoaded: cfg.SubjectCatalog,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to NATS %s: %w", cfg.NATSURL, err)
		}
		logger.Info("connected to NATS", "nats_url", cfg.NATSURL)
		p.nc = nc
		notifier = nc.ChangeNotifier(p.record, next)
	}

	p.sched = scheduler.New(scheduler.Config{
		Records:        records,
		Registry:       pending.NewRegistry(),
		FetchQueue:     queue.New(queue.Config{Name: "fetch", Workers: cfg.FetchWorkers}, logger),
		TransformQueue: queue.New(queue.Config{Name: "transform", Workers: cfg.TransformWorkers}, logger),
		Fetcher:        fetcher,
		Transformer:    transformer,
		Notifier:       notifier,
	}, logger)
	return p, nil
}

func (p *pipeline) record(id int) *photo.Record {
	if id < 0 || id >= len(p.records) {
		return nil
	}
	return p.records[id]
}

// announce publishes the catalog and starts accepting remote interest
// messages, which are run through post.
func (p *pipeline) announce(post func(fn func()) bool) error {
	if p.nc == nil {
		return nil
	}
	subjects := p.nc.Subjects()
	if err := p.nc.AnnounceCatalog(p.source, len(p.records)); err != nil {
		p.logger.Error("publish catalog loaded failed", "subject", subjects.CatalogLoaded, "err", err)
	}
	if _, err := p.nc.ServeInterest(post, p.sched.Evaluate, p.sched.Reset); err != nil {
		return fmt.Errorf("subscribe %s: %w", subjects.ItemInterest, err)
	}
	p.logger.Info("listening for item interest", "subject", subjects.ItemInterest)
	return nil
}

// close cancels outstanding work and waits for the workers to exit.
func (p *pipeline) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := p.sched.Close(ctx)
	if p.nc != nil {
		p.nc.Close()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		p.logger.Warn("workers did not stop in time", "timeout", shutdownTimeout)
	}
	return err
}
