// Package fetch retrieves raw content for catalog locators.
package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// Fetcher retrieves raw content for a locator.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) ([]byte, error)
}

// TransportError reports that content could not be retrieved: connectivity,
// timeout, unexpected status or a malformed payload.
type TransportError struct {
	Locator string
	Op      string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch %s: %s: %v", e.Locator, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func transportErr(locator, op string, err error) error {
	return &TransportError{Locator: locator, Op: op, Err: err}
}

// Router dispatches to a Fetcher by the locator's URL scheme.
type Router struct {
	mu       sync.RWMutex
	backends map[string]Fetcher
}

func NewRouter() *Router {
	return &Router{backends: make(map[string]Fetcher)}
}

// Handle registers f for the given schemes.
func (r *Router) Handle(f Fetcher, schemes ...string) *Router {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range schemes {
		r.backends[strings.ToLower(s)] = f
	}
	return r
}

func (r *Router) Fetch(ctx context.Context, locator string) ([]byte, error) {
	if locator == "" {
		return nil, transportErr(locator, "parse", fmt.Errorf("empty locator"))
	}
	u, err := url.Parse(locator)
	if err != nil {
		return nil, transportErr(locator, "parse", err)
	}
	r.mu.RLock()
	f, ok := r.backends[strings.ToLower(u.Scheme)]
	r.mu.RUnlock()
	if !ok {
		return nil, transportErr(locator, "route", fmt.Errorf("unsupported scheme %q", u.Scheme))
	}
	return f.Fetch(ctx, locator)
}
