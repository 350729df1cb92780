// internal/photo/record.go
package photo

import (
	"errors"
	"fmt"
	"sync"
)

// State is the processing state of a single list entry.
type State int

const (
	StateNew State = iota
	StateFetched
	StateFailed
	StateTransformed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateFetched:
		return "fetched"
	case StateFailed:
		return "failed"
	case StateTransformed:
		return "transformed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further stage is scheduled from this state.
func (s State) Terminal() bool {
	return s == StateFailed || s == StateTransformed
}

var ErrInvalidTransition = errors.New("invalid state transition")

// Artifact is the presentable result of the transform stage.
type Artifact struct {
	Data         []byte // encoded image
	Format       string
	Filter       string
	Width        int
	Height       int
	SourceWidth  int
	SourceHeight int
	Path         string // set when the artifact was also written to disk
}

// Record is one list entry and its processing state.
//
// Fields are written only by the task holding the registry entry for the
// record's current stage. The mutex exists so the presentation goroutine can
// read while a worker writes.
type Record struct {
	ID   int
	Name string
	URL  string

	mu       sync.RWMutex
	state    State
	raw      []byte
	artifact *Artifact
	failure  error
}

func NewRecord(id int, name, url string) *Record {
	return &Record{ID: id, Name: name, URL: url, state: StateNew}
}

func (r *Record) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

func (r *Record) Raw() []byte {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.raw
}

func (r *Record) Artifact() *Artifact {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.artifact
}

// Snapshot is a point-in-time copy of a record used for rendering.
type Snapshot struct {
	ID       int
	Name     string
	URL      string
	State    State
	RawSize  int
	Artifact *Artifact
	Failure  error
}

func (r *Record) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Snapshot{
		ID:       r.ID,
		Name:     r.Name,
		URL:      r.URL,
		State:    r.state,
		RawSize:  len(r.raw),
		Artifact: r.artifact,
		Failure:  r.failure,
	}
}

// Failure returns the cause recorded when the record failed.
func (r *Record) Failure() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.failure
}

// MarkFetched moves a New record to Fetched with its raw content.
func (r *Record) MarkFetched(raw []byte) error {
	if raw == nil {
		return fmt.Errorf("mark fetched: %w: nil content", ErrInvalidTransition)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateNew {
		return fmt.Errorf("mark fetched from %s: %w", r.state, ErrInvalidTransition)
	}
	r.raw = raw
	r.state = StateFetched
	return nil
}

// MarkTransformed moves a Fetched record to Transformed.
func (r *Record) MarkTransformed(a *Artifact) error {
	if a == nil {
		return fmt.Errorf("mark transformed: %w: nil artifact", ErrInvalidTransition)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateFetched {
		return fmt.Errorf("mark transformed from %s: %w", r.state, ErrInvalidTransition)
	}
	r.artifact = a
	r.state = StateTransformed
	return nil
}

// MarkFailed moves a New or Fetched record to the terminal Failed state.
func (r *Record) MarkFailed(cause error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state.Terminal() {
		return fmt.Errorf("mark failed from %s: %w", r.state, ErrInvalidTransition)
	}
	r.failure = cause
	r.state = StateFailed
	return nil
}

// MarkFailedFrom moves the record to Failed only while it is still in state
// from, so a stage can fail only the record it was started for.
func (r *Record) MarkFailedFrom(from State, cause error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if from.Terminal() || r.state != from {
		return fmt.Errorf("mark failed from %s (expected %s): %w", r.state, from, ErrInvalidTransition)
	}
	r.failure = cause
	r.state = StateFailed
	return nil
}

// Reset returns a Failed record to New so it can be processed again.
// It is the only backward transition and is driven by an explicit user action.
func (r *Record) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateFailed {
		return fmt.Errorf("reset from %s: %w", r.state, ErrInvalidTransition)
	}
	r.raw = nil
	r.artifact = nil
	r.failure = nil
	r.state = StateNew
	return nil
}
