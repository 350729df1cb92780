package fetch

import (
	"context"
	"errors"
	"net/url"
	"os"
)

// File reads file:// locators from the local filesystem.
type File struct{}

func (File) Fetch(ctx context.Context, locator string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, transportErr(locator, "open", err)
	}
	u, err := url.Parse(locator)
	if err != nil {
		return nil, transportErr(locator, "parse", err)
	}
	path := u.Path
	if path == "" {
		path = u.Opaque
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, transportErr(locator, "read", err)
	}
	if len(data) == 0 {
		return nil, transportErr(locator, "read", errors.New("empty file"))
	}
	return data, nil
}
