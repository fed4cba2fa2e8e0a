package preview

import (
	"context"
	"image"
	"io"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// ImageProber reads image dimensions with image.DecodeConfig, which
// parses only the header. GIF, JPEG, PNG, and WebP are registered; other
// formats yield ErrUnsupported.
type ImageProber struct{}

// Probe implements Prober.
func (ImageProber) Probe(ctx context.Context, contentType string, r io.Reader) (Meta, error) {
	if err := ctx.Err(); err != nil {
		return Meta{}, err
	}
	if KindOf(contentType) != KindImage {
		return Meta{}, ErrUnsupported
	}

	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		if err == image.ErrFormat {
			return Meta{}, ErrUnsupported
		}
		return Meta{}, err
	}

	return Meta{Width: cfg.Width, Height: cfg.Height}, nil
}
