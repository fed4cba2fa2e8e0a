package dropzone

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dropkit-dev/dropkit/pkg/preview"
)

// gateProber blocks until released, or until the probe context dies.
type gateProber struct {
	release chan struct{}
	meta    preview.Meta
}

func (p *gateProber) Probe(ctx context.Context, _ string, _ io.Reader) (preview.Meta, error) {
	select {
	case <-p.release:
		return p.meta, nil
	case <-ctx.Done():
		return preview.Meta{}, ctx.Err()
	}
}

func acceptBytes(t *testing.T, dz *Dropzone, name, contentType string, body []byte) int64 {
	t.Helper()
	id, ok, err := dz.AcceptReader(name, contentType, time.Now(), bytes.NewReader(body))
	if err != nil {
		t.Fatalf("AcceptReader(%q): %v", name, err)
	}
	if !ok {
		t.Fatalf("AcceptReader(%q): rejected", name)
	}
	return id
}

func TestImagePreviewKeepsToken(t *testing.T) {
	dz, loop, refs := newTestZone(t, DefaultConfig())

	id := acceptBytes(t, dz, "pic.png", "image/png", pngBytes(t, 32, 24))

	loop.drainUntil(t, func() bool {
		return mustEntry(t, dz, id).Status == StatusDone
	})

	e := mustEntry(t, dz, id)
	if e.Width != 32 || e.Height != 24 {
		t.Errorf("dimensions = %dx%d, want 32x24", e.Width, e.Height)
	}
	// The preview stage finishes before the upload runs, so a done
	// image entry always carries its URL already.
	if e.PreviewURL == "" {
		t.Fatal("image entry has no preview URL")
	}
	if !strings.HasPrefix(e.PreviewURL, "/dropkit/blob/") {
		t.Errorf("preview URL = %q, want /dropkit/blob/ prefix", e.PreviewURL)
	}
	if n := refs.Len(); n != 1 {
		t.Errorf("live tokens = %d, want 1 (image keeps its token)", n)
	}

	// The token resolves to the stored payload.
	token := strings.TrimPrefix(e.PreviewURL, "/dropkit/blob/")
	if _, ok := refs.Resolve(token); !ok {
		t.Errorf("token %q does not resolve", token)
	}
}

func TestAudioPreviewReleasesToken(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Probers[preview.KindAudio] = preview.ProberFunc(
		func(context.Context, string, io.Reader) (preview.Meta, error) {
			return preview.Meta{Duration: 3 * time.Second}, nil
		})
	dz, loop, refs := newTestZone(t, cfg)

	id := acceptBytes(t, dz, "song.mp3", "audio/mpeg", []byte("ID3"))

	loop.drainUntil(t, func() bool {
		return mustEntry(t, dz, id).Status == StatusDone
	})

	e := mustEntry(t, dz, id)
	if e.Duration != 3*time.Second {
		t.Errorf("duration = %v, want 3s", e.Duration)
	}
	if e.PreviewURL != "" {
		t.Errorf("audio entry has preview URL %q, want none", e.PreviewURL)
	}
	if n := refs.Len(); n != 0 {
		t.Errorf("live tokens = %d, want 0 (audio releases its token)", n)
	}
}

func TestVideoPreviewAppliesMetaAndReleasesToken(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Probers[preview.KindVideo] = preview.ProberFunc(
		func(context.Context, string, io.Reader) (preview.Meta, error) {
			return preview.Meta{
				Duration:    90 * time.Second,
				VideoWidth:  1920,
				VideoHeight: 1080,
			}, nil
		})
	dz, loop, refs := newTestZone(t, cfg)

	id := acceptBytes(t, dz, "clip.mp4", "video/mp4", []byte("ftyp"))

	loop.drainUntil(t, func() bool {
		return mustEntry(t, dz, id).Status == StatusDone
	})

	e := mustEntry(t, dz, id)
	if e.Duration != 90*time.Second || e.VideoWidth != 1920 || e.VideoHeight != 1080 {
		t.Errorf("video meta = %v %dx%d", e.Duration, e.VideoWidth, e.VideoHeight)
	}
	if n := refs.Len(); n != 0 {
		t.Errorf("live tokens = %d, want 0", n)
	}
}

func TestPreviewFailureIsSwallowed(t *testing.T) {
	dz, loop, refs := newTestZone(t, DefaultConfig())

	// Claims to be a PNG but is not decodable.
	id := acceptBytes(t, dz, "broken.png", "image/png", []byte("not a png"))

	loop.drainUntil(t, func() bool {
		return mustEntry(t, dz, id).Status == StatusDone
	})

	e := mustEntry(t, dz, id)
	if e.PreviewURL != "" || e.Width != 0 || e.Height != 0 {
		t.Errorf("failed probe left metadata: %+v", e)
	}
	if n := refs.Len(); n != 0 {
		t.Errorf("live tokens = %d, want 0 after failed probe", n)
	}
	// The failure stayed out of the status stream.
	if e.Status != StatusDone {
		t.Errorf("status = %s, want %s", e.Status, StatusDone)
	}
}

func TestRemovalDuringProbeIsGuarded(t *testing.T) {
	gate := &gateProber{release: make(chan struct{}), meta: preview.Meta{Width: 999}}
	cfg := DefaultConfig()
	cfg.Probers[preview.KindImage] = gate
	dz, loop, refs := newTestZone(t, cfg)

	id := acceptBytes(t, dz, "pic.png", "image/png", pngBytes(t, 8, 8))
	if n := refs.Len(); n != 1 {
		t.Fatalf("live tokens = %d, want 1 while probing", n)
	}

	dz.Remove(id)
	close(gate.release)

	// The probe's late dispatch must find nothing to touch.
	loop.drainUntil(t, func() bool {
		loop.mu.Lock()
		empty := len(loop.queue) == 0
		loop.mu.Unlock()
		return empty
	})

	if _, ok := dz.Entry(id); ok {
		t.Error("removed entry reappeared")
	}
	if n := refs.Len(); n != 0 {
		t.Errorf("live tokens = %d, want 0 after removal", n)
	}
	if n := refs.Store().Len(); n != 0 {
		t.Errorf("store = %d payloads, want 0 after removal", n)
	}
}

func TestProbeDoesNotBlockFurtherIntake(t *testing.T) {
	gate := &gateProber{release: make(chan struct{}), meta: preview.Meta{Width: 4, Height: 4}}
	cfg := DefaultConfig()
	cfg.Probers[preview.KindImage] = gate
	dz, loop, _ := newTestZone(t, cfg)

	slow := acceptBytes(t, dz, "slow.png", "image/png", pngBytes(t, 4, 4))
	quick := acceptText(t, dz, "quick.txt", "hi")

	if got := mustEntry(t, dz, quick).Status; got != StatusDone {
		t.Errorf("second file = %s while first still probing, want %s", got, StatusDone)
	}
	if got := mustEntry(t, dz, slow).Status; got != StatusPreparing {
		t.Errorf("probing file = %s, want %s", got, StatusPreparing)
	}

	close(gate.release)
	loop.drainUntil(t, func() bool {
		return mustEntry(t, dz, slow).Status == StatusDone
	})
	if got := mustEntry(t, dz, slow).Width; got != 4 {
		t.Errorf("width = %d, want 4", got)
	}
}
