// Package queue runs submitted tasks on a fixed number of worker goroutines.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var ErrQueueClosed = errors.New("queue is closed")

// Task is a unit of work executed by a queue worker.
type Task interface {
	// ID identifies the task in logs.
	ID() string

	// Run executes the task. It must observe ctx and its own cancellation.
	Run(ctx context.Context)
}

// Config holds the queue settings.
type Config struct {
	// Name labels the queue in logs, e.g. "fetch".
	Name string
	// Workers is the maximum number of tasks run at once.
	// If zero or negative, defaults to 1.
	Workers int
}

// Queue is a FIFO executor with an unbounded backlog. Submit never waits for
// a worker, so it is safe to call from the presentation goroutine.
type Queue struct {
	name    string
	workers int
	logger  *slog.Logger

	mu        sync.Mutex
	cond      *sync.Cond
	backlog   []Task
	running   int
	closed    bool
	suspended bool

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates the queue and starts its workers.
func New(cfg Config, logger *slog.Logger) *Queue {
	workers := cfg.Workers
	if workers <= 0 {
		logger.Warn("invalid worker count specified, using default",
			"queue", cfg.Name,
			"specified_count", cfg.Workers,
			"default_count", 1)
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		name:    cfg.Name,
		workers: workers,
		logger:  logger.With("queue", cfg.Name),
		ctx:     ctx,
		cancel:  cancel,
	}
	q.cond = sync.NewCond(&q.mu)

	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	q.logger.Info("queue started", "workers", workers)
	return q
}

func (q *Queue) Name() string { return q.name }

// Submit appends t to the backlog.
func (q *Queue) Submit(t Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return fmt.Errorf("submit %s to %s: %w", t.ID(), q.name, ErrQueueClosed)
	}
	q.backlog = append(q.backlog, t)
	q.logger.Debug("task enqueued", "task_id", t.ID(), "backlog", len(q.backlog), "running", q.running)
	q.cond.Signal()
	return nil
}

// Suspend stops workers from picking up new tasks. Running tasks continue
// and submissions are still accepted.
func (q *Queue) Suspend() {
	q.mu.Lock()
	q.suspended = true
	q.mu.Unlock()
}

// Resume lets workers pick up tasks again.
func (q *Queue) Resume() {
	q.mu.Lock()
	q.suspended = false
	q.mu.Unlock()
	q.cond.Broadcast()
}

func (q *Queue) Suspended() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.suspended
}

// Len returns the number of tasks waiting for a worker.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.backlog)
}

// Running returns the number of tasks currently executing.
func (q *Queue) Running() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}

// Close stops intake. Workers drain the backlog, ignoring suspension, and exit.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()
	q.cond.Broadcast()
	q.logger.Info("queue closed")
}

// Shutdown closes the queue and waits for the workers to exit. If ctx ends
// first the task context is cancelled and ctx.Err() is returned.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.Close()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		q.logger.Warn("queue shutdown interrupted", "err", ctx.Err())
		return ctx.Err()
	}
}

func (q *Queue) worker(n int) {
	defer q.wg.Done()
	for {
		t, ok := q.next()
		if !ok {
			q.logger.Debug("worker exiting", "worker", n)
			return
		}
		q.run(n, t)
	}
}

func (q *Queue) next() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for !q.closed && (q.suspended || len(q.backlog) == 0) {
		q.cond.Wait()
	}
	if len(q.backlog) == 0 {
		return nil, false
	}
	t := q.backlog[0]
	q.backlog[0] = nil
	q.backlog = q.backlog[1:]
	q.running++
	return t, true
}

func (q *Queue) run(n int, t Task) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("task panicked", "worker", n, "task_id", t.ID(), "panic", r)
		}
		q.mu.Lock()
		q.running--
		q.mu.Unlock()
	}()
	t.Run(q.ctx)
}
