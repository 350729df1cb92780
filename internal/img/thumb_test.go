package img

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestSepiaTransformFitsIntoBox(t *testing.T) {
	raw := createTestImage(t, 400, 200)

	artifact, err := NewSepia(SepiaOptions{Width: 100, Height: 100, Intensity: DefaultSepiaIntensity}).
		Transform(context.Background(), raw)
	if err != nil {
		t.Fatalf("Transform returned error: %v", err)
	}

	if artifact.Width != 100 || artifact.Height != 50 {
		t.Fatalf("unexpected thumbnail size: got %dx%d, want 100x50", artifact.Width, artifact.Height)
	}
	if artifact.SourceWidth != 400 || artifact.SourceHeight != 200 {
		t.Fatalf("unexpected source size: %dx%d", artifact.SourceWidth, artifact.SourceHeight)
	}
	if artifact.Format != "png" || artifact.Filter != "sepia" || artifact.Path != "" {
		t.Fatalf("unexpected artifact metadata: %+v", artifact)
	}

	decoded, err := png.Decode(bytes.NewReader(artifact.Data))
	if err != nil {
		t.Fatalf("artifact is not a png: %v", err)
	}
	if decoded.Bounds().Dx() != 100 {
		t.Fatalf("encoded width = %d", decoded.Bounds().Dx())
	}
}

func TestSepiaTransformDoesNotUpscale(t *testing.T) {
	raw := createTestImage(t, 40, 20)

	artifact, err := NewSepia(SepiaOptions{Width: 100, Height: 100}).Transform(context.Background(), raw)
	if err != nil {
		t.Fatalf("Transform returned error: %v", err)
	}
	if artifact.Width != 40 || artifact.Height != 20 {
		t.Fatalf("source was resized: %dx%d", artifact.Width, artifact.Height)
	}
}

func TestSepiaTransformWritesToDir(t *testing.T) {
	tmp := t.TempDir()
	raw := createTestImage(t, 64, 64)
	dir := filepath.Join(tmp, "nested", "thumbs")

	artifact, err := NewSepia(SepiaOptions{Width: 32, Height: 32, Dir: dir}).Transform(context.Background(), raw)
	if err != nil {
		t.Fatalf("Transform returned error: %v", err)
	}
	if artifact.Path != filepath.Join(dir, ThumbName(raw)) {
		t.Fatalf("unexpected path %q", artifact.Path)
	}
	if _, err := os.Stat(artifact.Path); err != nil {
		t.Fatalf("thumbnail file not created: %v", err)
	}
}

func TestSepiaTransformInvalidInput(t *testing.T) {
	_, err := NewSepia(SepiaOptions{}).Transform(context.Background(), []byte("not an image"))
	var te *TransformError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransformError, got %v", err)
	}
	if te.Op != "decode" {
		t.Fatalf("unexpected op %q", te.Op)
	}
}

func TestSepiaTransformCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSepia(SepiaOptions{}).Transform(ctx, createTestImage(t, 8, 8))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSepiaToneIntensity(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.Set(0, 0, color.NRGBA{R: 100, G: 100, B: 100, A: 255})

	same := SepiaTone(src, 0).NRGBAAt(0, 0)
	if same != (color.NRGBA{R: 100, G: 100, B: 100, A: 255}) {
		t.Fatalf("zero intensity changed pixel: %+v", same)
	}

	full := SepiaTone(src, 1).NRGBAAt(0, 0)
	if !(full.R > full.G && full.G > full.B) {
		t.Fatalf("sepia tone should warm grey: %+v", full)
	}
	if full.A != 255 {
		t.Fatalf("alpha changed: %d", full.A)
	}
}

func TestNewSepiaClampsIntensity(t *testing.T) {
	if s := NewSepia(SepiaOptions{Intensity: 3}); s.opts.Intensity != 1 {
		t.Fatalf("intensity = %v", s.opts.Intensity)
	}
	if s := NewSepia(SepiaOptions{Intensity: -1}); s.opts.Intensity != 0 {
		t.Fatalf("intensity = %v", s.opts.Intensity)
	}
}

func createTestImage(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
