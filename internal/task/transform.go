// internal/task/transform.go
package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tendant/simple-photolist/internal/pending"
	"github.com/tendant/simple-photolist/internal/photo"
)

// Transformer derives a presentable artifact from fetched content.
type Transformer interface {
	Transform(ctx context.Context, raw []byte) (*photo.Artifact, error)
}

// TransformFunc adapts a plain function to Transformer.
type TransformFunc func(ctx context.Context, raw []byte) (*photo.Artifact, error)

func (f TransformFunc) Transform(ctx context.Context, raw []byte) (*photo.Artifact, error) {
	return f(ctx, raw)
}

// Transform derives the artifact for one fetched record.
type Transform struct {
	*Handle
	record      *photo.Record
	transformer Transformer
	registry    Registry
	notifier    Notifier
	logger      *slog.Logger
}

func NewTransform(rec *photo.Record, tr Transformer, reg Registry, n Notifier, logger *slog.Logger) *Transform {
	h := newHandle(pending.StageTransform, rec.ID)
	return &Transform{
		Handle:      h,
		record:      rec,
		transformer: tr,
		registry:    reg,
		notifier:    n,
		logger:      logger.With("task_id", h.ID(), "stage", pending.StageTransform.String(), "item", rec.ID),
	}
}

// Run applies the transformer to the record's raw content and moves it to
// Transformed or Failed. The record must be Fetched.
func (t *Transform) Run(parent context.Context) {
	ctx, cancel := t.start(parent)
	defer cancel()

	changed := false
	defer func() { finish(t.Handle, t.registry, t.notifier, changed, t.logger) }()

	if t.stopped(ctx) {
		t.markCancelled()
		t.logger.Debug("transform cancelled before start")
		return
	}

	if state := t.record.State(); state != photo.StateFetched {
		t.logger.Debug("transform skipped, record not fetched", "state", state.String())
		t.markFailed(fmt.Errorf("transform requires %s record, got %s", photo.StateFetched, state))
		return
	}

	artifact, err := t.transformer.Transform(ctx, t.record.Raw())
	if t.stopped(ctx) {
		t.markCancelled()
		t.logger.Debug("transform cancelled")
		return
	}

	if err != nil {
		t.logger.Warn("transform failed", "err", err)
		if merr := t.record.MarkFailedFrom(photo.StateFetched, err); merr != nil {
			t.logger.Error("record rejected failure", "err", merr)
			t.markFailed(merr)
			return
		}
		t.markFailed(err)
		changed = true
		return
	}

	if err := t.record.MarkTransformed(artifact); err != nil {
		t.logger.Error("record rejected artifact", "err", err)
		t.markFailed(err)
		return
	}
	t.markSucceeded()
	changed = true
	t.logger.Info("transformed", "width", artifact.Width, "height", artifact.Height)
}
