// Package catalog loads the initial list of photos.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/tendant/simple-photolist/internal/photo"
)

// DefaultSource is the classic photos catalog.
const DefaultSource = "http://www.raywenderlich.com/downloads/ClassicPhotosDictionary.plist"

var ErrEmptyCatalog = errors.New("catalog has no usable entries")

// Entry is one {name, url} pair from the catalog.
type Entry struct {
	Name string `json:"name" toml:"name"`
	URL  string `json:"url" toml:"url"`
}

type tomlCatalog struct {
	Photo []Entry `toml:"photo"`
}

// Load reads the catalog at source, an http(s) URL or a local path, and
// returns one New record per valid entry.
func Load(ctx context.Context, source string, client *http.Client, logger *slog.Logger) ([]*photo.Record, error) {
	data, err := read(ctx, source, client)
	if err != nil {
		return nil, err
	}
	entries, err := Parse(data, formatOf(source, data))
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", source, err)
	}
	records := Records(entries, logger)
	if len(records) == 0 {
		return nil, fmt.Errorf("load catalog %s: %w", source, ErrEmptyCatalog)
	}
	logger.Info("catalog loaded", "source", source, "entries", len(entries), "records", len(records))
	return records, nil
}

// Parse decodes catalog data. format is "json", "toml" or "plist".
func Parse(data []byte, format string) ([]Entry, error) {
	switch format {
	case "toml":
		var c tomlCatalog
		if err := toml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
		return c.Photo, nil
	case "plist":
		return parsePlist(data)
	default:
		return parseJSON(data)
	}
}

func parseJSON(data []byte) ([]Entry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmptyCatalog
	}
	if trimmed[0] == '[' {
		var entries []Entry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("decode json list: %w", err)
		}
		return entries, nil
	}
	var dict map[string]string
	if err := json.Unmarshal(trimmed, &dict); err != nil {
		return nil, fmt.Errorf("decode json object: %w", err)
	}
	return fromDict(dict), nil
}

// fromDict orders name->url pairs by name so indices are stable.
func fromDict(dict map[string]string) []Entry {
	entries := make([]Entry, 0, len(dict))
	for name, u := range dict {
		entries = append(entries, Entry{Name: name, URL: u})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// Records builds records for entries with a usable absolute URL. Invalid
// entries are skipped.
func Records(entries []Entry, logger *slog.Logger) []*photo.Record {
	records := make([]*photo.Record, 0, len(entries))
	for _, e := range entries {
		u, err := url.Parse(strings.TrimSpace(e.URL))
		if err != nil || u.Scheme == "" {
			logger.Warn("skipping catalog entry with invalid url", "name", e.Name, "url", e.URL)
			continue
		}
		records = append(records, photo.NewRecord(len(records), e.Name, u.String()))
	}
	return records
}

func read(ctx context.Context, source string, client *http.Client) ([]byte, error) {
	if isRemote(source) {
		if client == nil {
			client = &http.Client{Timeout: 30 * time.Second}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("catalog request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch catalog: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, fmt.Errorf("fetch catalog: unexpected status %s", resp.Status)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(strings.TrimPrefix(source, "file://"))
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return data, nil
}

func isRemote(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func formatOf(source string, data []byte) string {
	path := source
	if u, err := url.Parse(source); err == nil && u.Path != "" {
		path = u.Path
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml"
	case ".plist":
		return "plist"
	case ".json":
		return "json"
	}
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("<?xml")) {
		return "plist"
	}
	return "json"
}
