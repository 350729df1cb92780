// Package scheduler decides which stage, if any, to start for an item and
// wires task completion back into the presentation layer.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tendant/simple-photolist/internal/pending"
	"github.com/tendant/simple-photolist/internal/photo"
	"github.com/tendant/simple-photolist/internal/queue"
	"github.com/tendant/simple-photolist/internal/task"
)

var (
	ErrUnknownItem = errors.New("unknown item")
	ErrNoQueue     = errors.New("no queue for stage")
)

// Submitter accepts tasks for background execution without blocking.
type Submitter interface {
	Submit(t queue.Task) error
}

// Suspender pauses and resumes dispatch on a queue.
type Suspender interface {
	Suspend()
	Resume()
}

// Config wires the scheduler's collaborators.
type Config struct {
	Records        []*photo.Record
	Registry       *pending.Registry
	FetchQueue     *queue.Queue
	TransformQueue *queue.Queue
	Fetcher        task.Fetcher
	Transformer    task.Transformer
	Notifier       task.Notifier
}

// Scheduler is the orchestrator. Evaluate is idempotent and safe to call
// redundantly; it never mutates records itself.
type Scheduler struct {
	records     []*photo.Record
	registry    *pending.Registry
	fetchQ      Submitter
	transformQ  Submitter
	queues      []*queue.Queue
	fetcher     task.Fetcher
	transformer task.Transformer
	notifier    task.Notifier
	logger      *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Scheduler {
	s := &Scheduler{
		records:     cfg.Records,
		registry:    cfg.Registry,
		fetcher:     cfg.Fetcher,
		transformer: cfg.Transformer,
		notifier:    cfg.Notifier,
		logger:      logger,
	}
	if s.registry == nil {
		s.registry = pending.NewRegistry()
	}
	if s.notifier == nil {
		s.notifier = task.NotifierFunc(func(int) {})
	}
	// A nil *queue.Queue must not become a non-nil Submitter.
	if cfg.FetchQueue != nil {
		s.fetchQ = cfg.FetchQueue
		s.queues = append(s.queues, cfg.FetchQueue)
	}
	if cfg.TransformQueue != nil {
		s.transformQ = cfg.TransformQueue
		s.queues = append(s.queues, cfg.TransformQueue)
	}
	return s
}

func (s *Scheduler) Registry() *pending.Registry { return s.registry }

func (s *Scheduler) Len() int { return len(s.records) }

// Record returns the item with the given id, or nil.
func (s *Scheduler) Record(id int) *photo.Record {
	if id < 0 || id >= len(s.records) {
		return nil
	}
	return s.records[id]
}

// Evaluate starts the next stage for item id when one is due and not
// already in flight.
func (s *Scheduler) Evaluate(id int) error {
	rec := s.Record(id)
	if rec == nil {
		return fmt.Errorf("evaluate %d: %w", id, ErrUnknownItem)
	}

	switch rec.State() {
	case photo.StateNew:
		t := task.NewFetch(rec, s.fetcher, s.registry, s.notifier, s.logger)
		return s.start(pending.StageFetch, photo.StateNew, rec, t.Handle, t, s.fetchQ)
	case photo.StateFetched:
		t := task.NewTransform(rec, s.transformer, s.registry, s.notifier, s.logger)
		return s.start(pending.StageTransform, photo.StateFetched, rec, t.Handle, t, s.transformQ)
	default:
		return nil
	}
}

// start registers and submits t for stage. The state read by Evaluate may be
// stale by the time the entry is taken, so it is checked again under the entry.
func (s *Scheduler) start(stage pending.Stage, want photo.State, rec *photo.Record, h *task.Handle, t queue.Task, q Submitter) error {
	if q == nil {
		return fmt.Errorf("start %s for item %d: %w", stage, rec.ID, ErrNoQueue)
	}
	if !s.registry.TryBegin(stage, rec.ID, h) {
		return nil
	}
	if state := rec.State(); state != want {
		s.registry.End(stage, rec.ID)
		s.logger.Debug("stage no longer due", "stage", stage.String(), "item", rec.ID, "state", state.String())
		return nil
	}
	if err := q.Submit(t); err != nil {
		s.registry.End(stage, rec.ID)
		return fmt.Errorf("start %s for item %d: %w", stage, rec.ID, err)
	}
	s.logger.Debug("task submitted", "stage", stage.String(), "item", rec.ID, "task_id", t.ID())
	return nil
}

// EvaluateVisible cancels tracked work for items outside ids and evaluates
// every item in ids.
func (s *Scheduler) EvaluateVisible(ids []int) error {
	visible := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		visible[id] = struct{}{}
	}
	if n := s.registry.CancelWhere(func(id int) bool {
		_, ok := visible[id]
		return ok
	}); n > 0 {
		s.logger.Debug("cancelled offscreen work", "count", n)
	}

	var errs []error
	for _, id := range ids {
		if err := s.Evaluate(id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// EvaluateAll evaluates every item.
func (s *Scheduler) EvaluateAll() error {
	var errs []error
	for id := range s.records {
		if err := s.Evaluate(id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Reset returns a failed item to New and schedules it again.
func (s *Scheduler) Reset(id int) error {
	rec := s.Record(id)
	if rec == nil {
		return fmt.Errorf("reset %d: %w", id, ErrUnknownItem)
	}
	if err := rec.Reset(); err != nil {
		return fmt.Errorf("reset %d: %w", id, err)
	}
	s.notifier.ItemChanged(id)
	return s.Evaluate(id)
}

// Suspend pauses dispatch on both queues, e.g. while the list is scrolling.
func (s *Scheduler) Suspend() {
	for _, q := range s.queues {
		q.Suspend()
	}
}

func (s *Scheduler) Resume() {
	for _, q := range s.queues {
		q.Resume()
	}
}

// CancelAll requests cancellation of all in-flight work and returns at once.
func (s *Scheduler) CancelAll() {
	n := s.registry.CancelAll()
	s.logger.Info("cancelled pending work", "count", n)
}

// Done reports whether every item has reached a terminal state.
func (s *Scheduler) Done() bool {
	for _, r := range s.records {
		if !r.State().Terminal() {
			return false
		}
	}
	return true
}

// Close cancels all work, closes the queues and waits for workers until ctx ends.
func (s *Scheduler) Close(ctx context.Context) error {
	s.CancelAll()
	var errs []error
	for _, q := range s.queues {
		if err := q.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown %s queue: %w", q.Name(), err))
		}
	}
	return errors.Join(errs...)
}
