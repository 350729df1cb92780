// internal/img/thumb.go
package img

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/tendant/simple-photolist/internal/photo"
)

// DefaultSepiaIntensity matches the classic sepia tone filter setting.
const DefaultSepiaIntensity = 0.8

// SepiaOptions configures the sepia thumbnail transformer.
type SepiaOptions struct {
	// Width and Height bound the thumbnail. Sources smaller than the box are
	// not upscaled. Zero keeps the source size.
	Width  int
	Height int
	// Intensity blends between the source (0) and full sepia (1).
	Intensity float64
	// Dir, when set, also writes each artifact to disk.
	Dir string
}

// Sepia decodes an image, fits it into a bounding box and applies a sepia tone.
type Sepia struct {
	opts SepiaOptions
}

func NewSepia(opts SepiaOptions) *Sepia {
	if opts.Intensity < 0 {
		opts.Intensity = 0
	}
	if opts.Intensity > 1 {
		opts.Intensity = 1
	}
	return &Sepia{opts: opts}
}

func (s *Sepia) Name() string { return "sepia" }

func (s *Sepia) Supports(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(mimeType), "image/")
}

// Transform implements the transform stage for image content.
func (s *Sepia) Transform(ctx context.Context, raw []byte) (*photo.Artifact, error) {
	src, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, transformErr("decode", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, transformErr("decode", err)
	}

	srcBounds := src.Bounds()
	thumb := src
	if s.opts.Width > 0 && s.opts.Height > 0 {
		thumb = imaging.Fit(src, s.opts.Width, s.opts.Height, imaging.Lanczos)
	}
	toned := SepiaTone(thumb, s.opts.Intensity)
	if err := ctx.Err(); err != nil {
		return nil, transformErr("filter", err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, toned, imaging.PNG); err != nil {
		return nil, transformErr("encode", err)
	}

	b := toned.Bounds()
	artifact := &photo.Artifact{
		Data:         buf.Bytes(),
		Format:       "png",
		Filter:       s.Name(),
		Width:        b.Dx(),
		Height:       b.Dy(),
		SourceWidth:  srcBounds.Dx(),
		SourceHeight: srcBounds.Dy(),
	}

	if s.opts.Dir != "" {
		path := filepath.Join(s.opts.Dir, ThumbName(raw))
		if err := os.MkdirAll(s.opts.Dir, 0o755); err != nil {
			return nil, transformErr("mkdir", err)
		}
		if err := os.WriteFile(path, artifact.Data, 0o644); err != nil {
			return nil, transformErr("save", err)
		}
		artifact.Path = path
	}
	return artifact, nil
}

// ThumbName derives a stable file name from the source bytes.
func ThumbName(raw []byte) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, raw).String() + "_sepia.png"
}

// SepiaTone blends img toward a sepia palette by intensity in [0, 1].
func SepiaTone(img image.Image, intensity float64) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		r, g, b := float64(c.R), float64(c.G), float64(c.B)
		sr := 0.393*r + 0.769*g + 0.189*b
		sg := 0.349*r + 0.686*g + 0.168*b
		sb := 0.272*r + 0.534*g + 0.131*b
		return color.NRGBA{
			R: blend(r, sr, intensity),
			G: blend(g, sg, intensity),
			B: blend(b, sb, intensity),
			A: c.A,
		}
	})
}

func blend(orig, toned, intensity float64) uint8 {
	v := orig*(1-intensity) + toned*intensity
	if v > 255 {
		v = 255
	}
	if v < 0 {
		v = 0
	}
	return uint8(v + 0.5)
}

// TransformError reports that an artifact could not be derived.
type TransformError struct {
	Op  string
	Err error
}

func (e *TransformError) Error() string { return fmt.Sprintf("transform: %s: %v", e.Op, e.Err) }

func (e *TransformError) Unwrap() error { return e.Err }

func transformErr(op string, err error) error {
	return &TransformError{Op: op, Err: err}
}
