package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/tendant/simple-photolist/internal/photo"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

const samplePlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Owl</key>
	<string>http://example.com/owl.jpg</string>
	<key>Bridge</key>
	<string>http://example.com/bridge.jpg</string>
</dict>
</plist>`

func TestParseJSONObjectSortedByName(t *testing.T) {
	entries, err := Parse([]byte(`{"b":"http://x/b.jpg","a":"http://x/a.jpg"}`), "json")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "a" || entries[1].Name != "b" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestParseJSONList(t *testing.T) {
	entries, err := Parse([]byte(`[{"name":"z","url":"http://x/z.jpg"},{"name":"a","url":"http://x/a.jpg"}]`), "json")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "z" {
		t.Fatalf("list order not preserved: %+v", entries)
	}
}

func TestParseTOML(t *testing.T) {
	data := []byte(`
[[photo]]
name = "Owl"
url = "http://example.com/owl.jpg"

[[photo]]
name = "Bridge"
url = "file:///tmp/bridge.jpg"
`)
	entries, err := Parse(data, "toml")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(entries) != 2 || entries[1].URL != "file:///tmp/bridge.jpg" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestParsePlist(t *testing.T) {
	entries, err := Parse([]byte(samplePlist), "plist")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "Bridge" || entries[1].URL != "http://example.com/owl.jpg" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestParseMalformed(t *testing.T) {
	for _, format := range []string{"json", "toml"} {
		if _, err := Parse([]byte("{{{not valid"), format); err == nil {
			t.Fatalf("%s: expected error for malformed data", format)
		}
	}
}

func TestRecordsSkipsInvalidURLs(t *testing.T) {
	records := Records([]Entry{
		{Name: "good", URL: "http://x/a.jpg"},
		{Name: "relative", URL: "a.jpg"},
		{Name: "broken", URL: "http://[::1"},
		{Name: "also good", URL: " ok://b "},
	}, discard)

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != 0 || records[1].ID != 1 {
		t.Fatalf("ids must be dense list positions: %d %d", records[0].ID, records[1].ID)
	}
	if records[1].URL != "ok://b" || records[1].State() != photo.StateNew {
		t.Fatalf("unexpected record: %+v", records[1].Snapshot())
	}
}

func TestLoadFromHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(samplePlist))
	}))
	defer srv.Close()

	records, err := Load(context.Background(), srv.URL+"/ClassicPhotosDictionary.plist", srv.Client(), discard)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(records) != 2 || records[0].Name != "Bridge" {
		t.Fatalf("unexpected records: %d", len(records))
	}
}

func TestLoadHTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if _, err := Load(context.Background(), srv.URL+"/missing.json", nil, discard); err == nil {
		t.Fatal("expected error for 404 catalog")
	}
}

func TestLoadFromFile(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "catalog.json")
	if err := os.WriteFile(path, []byte(`{"a":"http://x/a.jpg"}`), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	records, err := Load(context.Background(), path, nil, discard)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("unexpected record count %d", len(records))
	}
}

func TestLoadEmptyCatalog(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "catalog.json")
	if err := os.WriteFile(path, []byte(`{"a":"not-a-url"}`), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if _, err := Load(context.Background(), path, nil, discard); !errors.Is(err, ErrEmptyCatalog) {
		t.Fatalf("expected ErrEmptyCatalog, got %v", err)
	}
}

func TestFormatSniffing(t *testing.T) {
	cases := []struct {
		source string
		data   string
		want   string
	}{
		{"catalog.toml", "", "toml"},
		{"http://host/x.plist?v=1", "", "plist"},
		{"catalog", "<?xml version=\"1.0\"?>", "plist"},
		{"catalog", "{}", "json"},
	}
	for _, c := range cases {
		if got := formatOf(c.source, []byte(c.data)); got != c.want {
			t.Errorf("formatOf(%q) = %q, want %q", c.source, got, c.want)
		}
	}
}
