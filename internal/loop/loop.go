// Package loop provides the single-threaded presentation context. Functions
// posted to a Loop run one at a time, in order, on the goroutine calling Run.
package loop

import (
	"context"
	"sync"

	"github.com/tendant/simple-photolist/internal/task"
)

type Loop struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
	stopped bool
}

func New() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post schedules fn on the loop without waiting. It returns false once the
// loop has been stopped.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Stop ends Run after the function currently executing returns. Functions
// still queued are dropped.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run executes posted functions until ctx ends or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.mu.Lock()
		if l.stopped {
			l.mu.Unlock()
			return nil
		}
		batch := l.pending
		l.pending = nil
		l.mu.Unlock()

		for i, fn := range batch {
			fn()
			if l.isStopped() {
				return nil
			}
			batch[i] = nil
		}
		if len(batch) > 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) isStopped() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stopped
}

// Notifier returns a task.Notifier that delivers item changes to onChange on
// the loop goroutine, never on the worker that completed the task.
func (l *Loop) Notifier(onChange func(id int)) task.Notifier {
	return task.NotifierFunc(func(id int) {
		l.Post(func() { onChange(id) })
	})
}
