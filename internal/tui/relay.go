package tui

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
)

// ItemChangedMsg is delivered to the list when a task changed an item.
type ItemChangedMsg struct{ ID int }

// runMsg carries a function to execute inside Update.
type runMsg struct{ fn func() }

// Relay delivers notifications into a running bubbletea program, which makes
// the program's event loop the presentation context. Messages sent before a
// program is attached are dropped.
type Relay struct {
	p atomic.Pointer[tea.Program]
}

func (r *Relay) Attach(p *tea.Program) { r.p.Store(p) }

// ItemChanged implements task.Notifier. It may block the calling worker until
// the program accepts the message, never the program itself.
func (r *Relay) ItemChanged(id int) {
	if p := r.p.Load(); p != nil {
		p.Send(ItemChangedMsg{ID: id})
	}
}

// Post runs fn on the program's event loop.
func (r *Relay) Post(fn func()) bool {
	p := r.p.Load()
	if p == nil {
		return false
	}
	p.Send(runMsg{fn: fn})
	return true
}
