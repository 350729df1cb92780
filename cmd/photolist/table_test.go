package main

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/tendant/simple-photolist/internal/photo"
)

func TestRenderTableAlignsAndPads(t *testing.T) {
	out := renderTable([]string{"#", "Name"}, [][]string{{"1"}, {"10", "b"}}, []columnAlignment{alignRight})
	if !strings.Contains(out, "╭") {
		t.Fatalf("expected rounded style, got:\n%s", out)
	}
	if !strings.Contains(out, "│  1 │") {
		t.Fatalf("expected right-aligned index, got:\n%s", out)
	}
}

func TestRenderTableNoHeaders(t *testing.T) {
	if got := renderTable(nil, nil, nil); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestRenderSummary(t *testing.T) {
	done := photo.NewRecord(0, "Boat", "http://example.com/boat.jpg")
	if err := done.MarkFetched(make([]byte, 2048)); err != nil {
		t.Fatal(err)
	}
	if err := done.MarkTransformed(&photo.Artifact{Data: make([]byte, 100), Filter: "sepia", Width: 64, Height: 48}); err != nil {
		t.Fatal(err)
	}
	failed := photo.NewRecord(1, "Bridge", "http://example.com/bridge.jpg")
	if err := failed.MarkFailed(errors.New("status 404")); err != nil {
		t.Fatal(err)
	}
	waiting := photo.NewRecord(2, "Castle", "http://example.com/castle.jpg")

	out := renderSummary([]*photo.Record{done, failed, waiting}, false)

	for _, want := range []string{"Boat", "2.0 kB", "64x48 sepia (100 B)", "status 404", "Castle", "1 transformed, 1 failed, 1 pending"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in summary:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no color codes:\n%s", out)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
