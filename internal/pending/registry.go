// Package pending tracks which task, if any, is in flight for each item and stage.
package pending

import (
	"fmt"
	"sort"
	"sync"
)

// Stage is one of the two sequential processing phases.
type Stage int

const (
	StageFetch Stage = iota
	StageTransform
)

var allStages = []Stage{StageFetch, StageTransform}

func (s Stage) String() string {
	switch s {
	case StageFetch:
		return "fetch"
	case StageTransform:
		return "transform"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// Handle is the in-flight task stored in the registry.
type Handle interface {
	Cancel()
}

// Registry is the sole authority on whether work is in flight for a
// (stage, item) pair. All methods are safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	inFlight map[Stage]map[int]Handle
}

func NewRegistry() *Registry {
	r := &Registry{inFlight: make(map[Stage]map[int]Handle, len(allStages))}
	for _, s := range allStages {
		r.inFlight[s] = make(map[int]Handle)
	}
	return r
}

// TryBegin records h as the in-flight task for (stage, id). It returns false
// without inserting when an entry already exists.
func (r *Registry) TryBegin(stage Stage, id int, h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.stage(stage)
	if _, ok := m[id]; ok {
		return false
	}
	m[id] = h
	return true
}

// End removes the entry for (stage, id). Removing an absent entry is a no-op.
func (r *Registry) End(stage Stage, id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stage(stage), id)
}

// CancelAll requests cancellation of every tracked task, limited to the given
// stages when any are passed. Entries stay until each task ends itself.
func (r *Registry) CancelAll(stages ...Stage) int {
	return r.CancelWhere(nil, stages...)
}

// CancelWhere requests cancellation of tracked tasks whose id is not kept.
// A nil keep cancels everything. It returns the number of handles cancelled.
func (r *Registry) CancelWhere(keep func(id int) bool, stages ...Stage) int {
	if len(stages) == 0 {
		stages = allStages
	}
	var handles []Handle
	r.mu.Lock()
	for _, s := range stages {
		for id, h := range r.stage(s) {
			if keep != nil && keep(id) {
				continue
			}
			handles = append(handles, h)
		}
	}
	r.mu.Unlock()

	// Cancel outside the lock; a handle may call back into End.
	for _, h := range handles {
		h.Cancel()
	}
	return len(handles)
}

func (r *Registry) InFlight(stage Stage, id int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.stage(stage)[id]
	return ok
}

func (r *Registry) Len(stage Stage) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stage(stage))
}

// IDs returns the tracked item ids for a stage in ascending order.
func (r *Registry) IDs(stage Stage) []int {
	r.mu.Lock()
	ids := make([]int, 0, len(r.stage(stage)))
	for id := range r.stage(stage) {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	sort.Ints(ids)
	return ids
}

func (r *Registry) stage(s Stage) map[int]Handle {
	m, ok := r.inFlight[s]
	if !ok {
		m = make(map[int]Handle)
		r.inFlight[s] = m
	}
	return m
}
