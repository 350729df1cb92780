package img

import (
	"context"
	"errors"
	"testing"

	"github.com/tendant/simple-photolist/internal/photo"
)

func TestGetTransformer(t *testing.T) {
	chain := Chain{NewSepia(SepiaOptions{})}

	tests := []struct {
		name        string
		mimeType    string
		wantName    string
		shouldError bool
	}{
		{"image jpeg", "image/jpeg", "sepia", false},
		{"image png upper", "IMAGE/PNG", "sepia", false},
		{"pdf", "application/pdf", "", true},
		{"text", "text/plain", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := chain.GetTransformer(tt.mimeType)
			if tt.shouldError {
				if err == nil {
					t.Errorf("expected error for %s, got nil", tt.mimeType)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tr.Name() != tt.wantName {
				t.Errorf("GetTransformer(%s) = %s, want %s", tt.mimeType, tr.Name(), tt.wantName)
			}
		})
	}
}

func TestChainTransformRoutesByContent(t *testing.T) {
	chain := Chain{NewSepia(SepiaOptions{Width: 10, Height: 10})}

	artifact, err := chain.Transform(context.Background(), createTestImage(t, 20, 20))
	if err != nil {
		t.Fatalf("Transform returned error: %v", err)
	}
	if artifact.Width != 10 {
		t.Fatalf("unexpected width %d", artifact.Width)
	}

	_, err = chain.Transform(context.Background(), []byte("%PDF-1.4 not an image"))
	var te *TransformError
	if !errors.As(err, &te) || te.Op != "select" {
		t.Fatalf("expected select TransformError, got %v", err)
	}
}

func TestDetectMime(t *testing.T) {
	if got := DetectMime(createTestImage(t, 2, 2)); got != "image/png" {
		t.Fatalf("DetectMime(png) = %q", got)
	}
	if got := DetectMime([]byte("hello")); got != "text/plain" {
		t.Fatalf("DetectMime(text) = %q", got)
	}
}

var _ Transformer = (*Sepia)(nil)

// Chain is also usable as the transform stage's function.
var _ interface {
	Transform(context.Context, []byte) (*photo.Artifact, error)
} = Chain(nil)
