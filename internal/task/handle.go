// internal/task/handle.go
package task

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/tendant/simple-photolist/internal/pending"
)

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Registry is the part of the pending registry a task needs to deregister itself.
type Registry interface {
	End(stage pending.Stage, id int)
}

// Notifier receives the single "item changed" signal emitted per completed stage.
type Notifier interface {
	ItemChanged(id int)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(id int)

func (f NotifierFunc) ItemChanged(id int) { f(id) }

// Handle carries identity, status and the cooperative cancellation flag of a task.
type Handle struct {
	id    uuid.UUID
	stage pending.Stage
	item  int

	mu        sync.Mutex
	status    Status
	err       string
	cancelled bool
	cancelCtx context.CancelFunc
}

func newHandle(stage pending.Stage, item int) *Handle {
	return &Handle{
		id:     uuid.New(),
		stage:  stage,
		item:   item,
		status: StatusPending,
	}
}

func (h *Handle) ID() string          { return h.id.String() }
func (h *Handle) Stage() pending.Stage { return h.stage }
func (h *Handle) Item() int            { return h.item }

func (h *Handle) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// Err returns the failure message recorded for a failed task.
func (h *Handle) Err() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Cancel marks the task cancelled and interrupts its blocking work. It never
// waits for the task to stop.
func (h *Handle) Cancel() {
	h.mu.Lock()
	h.cancelled = true
	cancel := h.cancelCtx
	h.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (h *Handle) Cancelled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cancelled
}

// start moves the task to running and returns a context that Cancel interrupts.
func (h *Handle) start(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = StatusRunning
	h.cancelCtx = cancel
	if h.cancelled {
		cancel()
	}
	return ctx, cancel
}

// stopped reports whether the task must discard its outcome.
func (h *Handle) stopped(ctx context.Context) bool {
	return h.Cancelled() || ctx.Err() != nil
}

func (h *Handle) markSucceeded() { h.setStatus(StatusSucceeded, nil) }
func (h *Handle) markCancelled() { h.setStatus(StatusCancelled, nil) }
func (h *Handle) markFailed(err error) {
	h.setStatus(StatusFailed, err)
}

func (h *Handle) setStatus(s Status, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status = s
	if err != nil {
		h.err = err.Error()
	}
}

// finish deregisters the task and, when the record changed, notifies once.
func finish(h *Handle, reg Registry, n Notifier, changed bool, logger *slog.Logger) {
	reg.End(h.stage, h.item)
	if !changed {
		return
	}
	n.ItemChanged(h.item)
	logger.Debug("item change notified", "status", h.Status())
}
