package fetch

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/google/uuid"
	simplecontent "github.com/tendant/simple-content/pkg/simplecontent"
)

// ContentScheme addresses items stored in a simple-content service:
// content://<content-uuid>.
const ContentScheme = "content"

// Content downloads items from a simple-content service.
type Content struct {
	svc      simplecontent.Service
	maxBytes int64
}

func NewContent(svc simplecontent.Service, maxBytes int64) *Content {
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &Content{svc: svc, maxBytes: maxBytes}
}

func (c *Content) Fetch(ctx context.Context, locator string) ([]byte, error) {
	contentID, err := ParseContentLocator(locator)
	if err != nil {
		return nil, transportErr(locator, "parse", err)
	}

	reader, err := c.svc.DownloadContent(ctx, contentID)
	if err != nil {
		return nil, transportErr(locator, "download content", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(io.LimitReader(reader, c.maxBytes+1))
	if err != nil {
		return nil, transportErr(locator, "read content", err)
	}
	if int64(len(data)) > c.maxBytes {
		return nil, transportErr(locator, "read content", fmt.Errorf("content exceeds %d bytes", c.maxBytes))
	}
	return data, nil
}

// ParseContentLocator extracts the content id from a content:// locator.
func ParseContentLocator(locator string) (uuid.UUID, error) {
	u, err := url.Parse(locator)
	if err != nil {
		return uuid.Nil, err
	}
	if !strings.EqualFold(u.Scheme, ContentScheme) {
		return uuid.Nil, fmt.Errorf("scheme %q is not %s", u.Scheme, ContentScheme)
	}
	raw := u.Host
	if raw == "" {
		raw = strings.TrimPrefix(u.Path, "/")
	}
	if raw == "" {
		raw = u.Opaque
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse content id: %w", err)
	}
	return id, nil
}

// ContentLocator formats a content:// locator for id.
func ContentLocator(id uuid.UUID) string {
	return ContentScheme + "://" + id.String()
}
