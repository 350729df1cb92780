// internal/task/fetch.go
package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tendant/simple-photolist/internal/pending"
	"github.com/tendant/simple-photolist/internal/photo"
)

// Fetcher retrieves raw content for a source locator.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) ([]byte, error)
}

// Fetch downloads the raw content of one record.
type Fetch struct {
	*Handle
	record   *photo.Record
	fetcher  Fetcher
	registry Registry
	notifier Notifier
	logger   *slog.Logger
}

func NewFetch(rec *photo.Record, f Fetcher, reg Registry, n Notifier, logger *slog.Logger) *Fetch {
	h := newHandle(pending.StageFetch, rec.ID)
	return &Fetch{
		Handle:   h,
		record:   rec,
		fetcher:  f,
		registry: reg,
		notifier: n,
		logger:   logger.With("task_id", h.ID(), "stage", pending.StageFetch.String(), "item", rec.ID),
	}
}

// Run fetches the record's URL and moves it to Fetched or Failed. The record
// must be New. A cancelled or skipped task leaves the record untouched and
// emits nothing.
func (t *Fetch) Run(parent context.Context) {
	ctx, cancel := t.start(parent)
	defer cancel()

	changed := false
	defer func() { finish(t.Handle, t.registry, t.notifier, changed, t.logger) }()

	if t.stopped(ctx) {
		t.markCancelled()
		t.logger.Debug("fetch cancelled before start")
		return
	}

	if state := t.record.State(); state != photo.StateNew {
		t.logger.Debug("fetch skipped, record already advanced", "state", state.String())
		t.markFailed(fmt.Errorf("fetch requires %s record, got %s", photo.StateNew, state))
		return
	}

	raw, err := t.fetcher.Fetch(ctx, t.record.URL)
	if t.stopped(ctx) {
		t.markCancelled()
		t.logger.Debug("fetch cancelled", "url", t.record.URL)
		return
	}

	if err != nil {
		t.logger.Warn("fetch failed", "url", t.record.URL, "err", err)
		if merr := t.record.MarkFailedFrom(photo.StateNew, err); merr != nil {
			t.logger.Error("record rejected failure", "err", merr)
			t.markFailed(merr)
			return
		}
		t.markFailed(err)
		changed = true
		return
	}

	if err := t.record.MarkFetched(raw); err != nil {
		t.logger.Error("record rejected fetched content", "err", err)
		t.markFailed(err)
		return
	}
	t.markSucceeded()
	changed = true
	t.logger.Info("fetched", "url", t.record.URL, "bytes", len(raw))
}
