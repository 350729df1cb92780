package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultMaxBytes = 32 << 20

// HTTP fetches http and https locators.
type HTTP struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTP returns an HTTP fetcher with a per-request timeout and a response
// size cap. Non-positive values fall back to 30s and 32 MiB.
func NewHTTP(timeout time.Duration, maxBytes int64) *HTTP {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &HTTP{client: &http.Client{Timeout: timeout}, maxBytes: maxBytes}
}

func (h *HTTP) Fetch(ctx context.Context, locator string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, transportErr(locator, "request", err)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, transportErr(locator, "get", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, transportErr(locator, "status", fmt.Errorf("unexpected status %s", resp.Status))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBytes+1))
	if err != nil {
		return nil, transportErr(locator, "read body", err)
	}
	if int64(len(body)) > h.maxBytes {
		return nil, transportErr(locator, "read body", fmt.Errorf("response exceeds %d bytes", h.maxBytes))
	}
	if len(body) == 0 {
		return nil, transportErr(locator, "read body", errors.New("empty response"))
	}
	return body, nil
}
