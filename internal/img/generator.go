package img

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tendant/simple-photolist/internal/photo"
)

// Transformer derives an artifact from raw content of a supported MIME type.
type Transformer interface {
	// Transform creates the artifact for raw content
	Transform(ctx context.Context, raw []byte) (*photo.Artifact, error)

	// Supports returns true if this transformer can handle the given MIME type
	Supports(mimeType string) bool

	// Name returns the transformer name for logging
	Name() string
}

// SupportedMimeTypes returns the MIME types the image decoders can read.
func SupportedMimeTypes() []string {
	return []string{
		"image/jpeg",
		"image/png",
		"image/gif",
		"image/bmp",
		"image/tiff",
	}
}

// Chain routes raw content to the first transformer that supports its
// sniffed MIME type.
type Chain []Transformer

// GetTransformer returns the transformer for mimeType.
func (c Chain) GetTransformer(mimeType string) (Transformer, error) {
	mimeType = strings.ToLower(mimeType)
	for _, t := range c {
		if t.Supports(mimeType) {
			return t, nil
		}
	}
	return nil, fmt.Errorf("unsupported MIME type: %s (supported: %s)", mimeType, strings.Join(SupportedMimeTypes(), ", "))
}

func (c Chain) Transform(ctx context.Context, raw []byte) (*photo.Artifact, error) {
	mimeType := DetectMime(raw)
	t, err := c.GetTransformer(mimeType)
	if err != nil {
		return nil, transformErr("select", err)
	}
	return t.Transform(ctx, raw)
}

// DetectMime sniffs the MIME type of raw content, ignoring parameters.
func DetectMime(raw []byte) string {
	n := len(raw)
	if n > 512 {
		n = 512
	}
	mt := http.DetectContentType(raw[:n])
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return strings.TrimSpace(mt)
}
