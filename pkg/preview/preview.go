// Package preview probes file payloads for display metadata: image
// dimensions, media durations. Probes run off the session loop and their
// failures are always survivable; an entry without preview metadata
// still uploads normally.
package preview

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
)

// ErrUnsupported is returned when a prober cannot handle the payload's
// content type or encoding.
var ErrUnsupported = errors.New("preview: unsupported media type")

// Kind classifies a payload by content-type prefix.
type Kind uint8

const (
	KindNone Kind = iota
	KindImage
	KindAudio
	KindVideo
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindAudio:
		return "audio"
	case KindVideo:
		return "video"
	default:
		return "none"
	}
}

// KindOf maps a MIME type to its preview kind. Anything outside the
// image/, audio/, video/ families is KindNone.
func KindOf(contentType string) Kind {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return KindImage
	case strings.HasPrefix(contentType, "audio/"):
		return KindAudio
	case strings.HasPrefix(contentType, "video/"):
		return KindVideo
	default:
		return KindNone
	}
}

// Meta is the display metadata a probe yields. Fields outside the
// payload's kind stay zero.
type Meta struct {
	// Width and Height are image dimensions in pixels.
	Width  int
	Height int

	// Duration is the playing time of audio and video.
	Duration time.Duration

	// VideoWidth and VideoHeight are video frame dimensions.
	VideoWidth  int
	VideoHeight int
}

// Prober extracts Meta from a payload.
type Prober interface {
	Probe(ctx context.Context, contentType string, r io.Reader) (Meta, error)
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, contentType string, r io.Reader) (Meta, error)

// Probe implements Prober.
func (f ProberFunc) Probe(ctx context.Context, contentType string, r io.Reader) (Meta, error) {
	return f(ctx, contentType, r)
}
