package dropzone

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dropkit-dev/dropkit/pkg/preview"
	"github.com/dropkit-dev/dropkit/pkg/transport"
)

// receiverServer accepts multipart uploads and answers with status.
func receiverServer(t *testing.T, status int) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if got := r.Header.Get("X-Requested-With"); got != "XMLHttpRequest" {
			t.Errorf("X-Requested-With = %q", got)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("no file part: %v", err)
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

// uploadGate holds every request open until released and reports
// whether each one completed or saw its context die.
type uploadGate struct {
	srv     *httptest.Server
	entered chan struct{}
	release chan struct{}
	outcome chan string
}

func newUploadGate(t *testing.T) *uploadGate {
	t.Helper()
	g := &uploadGate{
		entered: make(chan struct{}, 8),
		release: make(chan struct{}),
		outcome: make(chan string, 8),
	}
	g.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.entered <- struct{}{}
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-g.release:
			g.outcome <- "completed"
			w.WriteHeader(http.StatusOK)
		case <-r.Context().Done():
			g.outcome <- "canceled"
		}
	}))
	t.Cleanup(g.srv.Close)
	return g
}

func (g *uploadGate) awaitEntered(t *testing.T) {
	t.Helper()
	select {
	case <-g.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("server never saw the upload")
	}
}

func (g *uploadGate) awaitOutcome(t *testing.T) string {
	t.Helper()
	select {
	case got := <-g.outcome:
		return got
	case <-time.After(5 * time.Second):
		t.Fatal("server handler never finished")
		return ""
	}
}

// neverEnding yields an endless stream of one byte, for sized payloads
// via io.LimitReader.
type neverEnding byte

func (b neverEnding) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(b)
	}
	return len(p), nil
}

func TestUploadRoundTrip(t *testing.T) {
	srv, requests := receiverServer(t, http.StatusOK)

	log := &statusLog{}
	cfg := DefaultConfig()
	cfg.Params = StaticParams(srv.URL)
	cfg.OnChangeStatus = log.observer()
	dz, loop, _ := newTestZone(t, cfg)

	id := acceptBytes(t, dz, "pic.png", "image/png", pngBytes(t, 16, 16))

	loop.drainUntil(t, func() bool {
		return mustEntry(t, dz, id).Status == StatusDone
	})

	e := mustEntry(t, dz, id)
	if e.Percent != 100 {
		t.Errorf("percent = %v, want exactly 100", e.Percent)
	}
	if e.PreviewURL == "" {
		t.Error("preview URL missing on a done image entry")
	}
	if n := requests.Load(); n != 1 {
		t.Errorf("server saw %d requests, want 1", n)
	}

	want := []Status{StatusPreparing, StatusUploading, StatusHeadersReceived, StatusDone}
	got := log.sequence()
	if len(got) != len(want) {
		t.Fatalf("status sequence = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("status sequence = %v, want %v", got, want)
		}
	}
}

func TestUploadParamsErrorMarksEntry(t *testing.T) {
	log := &statusLog{}
	cfg := DefaultConfig()
	cfg.Params = func(context.Context, Entry) (transport.Params, error) {
		return transport.Params{}, errors.New("signer down")
	}
	cfg.OnChangeStatus = log.observer()
	dz, loop, _ := newTestZone(t, cfg)

	id := acceptText(t, dz, "a.txt", "abc")

	loop.drainUntil(t, func() bool {
		return mustEntry(t, dz, id).Status == StatusErrorUploadParams
	})

	// Parameter resolution happens inside the uploading phase.
	want := []Status{StatusPreparing, StatusUploading, StatusErrorUploadParams}
	got := log.sequence()
	if len(got) != len(want) || got[1] != StatusUploading {
		t.Errorf("status sequence = %v, want %v", got, want)
	}
}

func TestUploadParamsWithoutURLMarksEntry(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Params = func(context.Context, Entry) (transport.Params, error) {
		return transport.Params{}, nil
	}
	dz, loop, _ := newTestZone(t, cfg)

	id := acceptText(t, dz, "a.txt", "abc")

	loop.drainUntil(t, func() bool {
		return mustEntry(t, dz, id).Status == StatusErrorUploadParams
	})
}

func TestUploadServerErrorMarksEntry(t *testing.T) {
	srv, _ := receiverServer(t, http.StatusInternalServerError)

	log := &statusLog{}
	cfg := DefaultConfig()
	cfg.Params = StaticParams(srv.URL)
	cfg.OnChangeStatus = log.observer()
	dz, loop, _ := newTestZone(t, cfg)

	id := acceptText(t, dz, "a.txt", "abc")

	loop.drainUntil(t, func() bool {
		return mustEntry(t, dz, id).Status == StatusErrorUpload
	})

	// An error response never passes through headers_received.
	for _, s := range log.sequence() {
		if s == StatusHeadersReceived {
			t.Errorf("sequence %v contains headers_received for a 500", log.sequence())
		}
	}
}

func TestTriggerUploadIsOneShot(t *testing.T) {
	srv, requests := receiverServer(t, http.StatusOK)

	cfg := DefaultConfig()
	cfg.Params = StaticParams(srv.URL)
	cfg.OnReady = func(Entry) bool { return true }
	dz, loop, _ := newTestZone(t, cfg)

	id := acceptText(t, dz, "a.txt", "abc")
	if got := mustEntry(t, dz, id).Status; got != StatusPreparing {
		t.Fatalf("deferred entry = %s, want %s", got, StatusPreparing)
	}

	dz.TriggerUpload(id)
	dz.TriggerUpload(id)
	dz.TriggerUpload(id)

	loop.drainUntil(t, func() bool {
		return mustEntry(t, dz, id).Status == StatusDone
	})
	dz.TriggerUpload(id) // after completion

	loop.drain()
	if n := requests.Load(); n != 1 {
		t.Errorf("server saw %d requests, want 1", n)
	}
}

func TestTriggerUploadBeforeReadyIsIgnored(t *testing.T) {
	gate := &gateProber{release: make(chan struct{}), meta: preview.Meta{Width: 8, Height: 8}}
	srv, requests := receiverServer(t, http.StatusOK)

	cfg := DefaultConfig()
	cfg.Params = StaticParams(srv.URL)
	cfg.Probers[preview.KindImage] = gate
	dz, loop, _ := newTestZone(t, cfg)

	id := acceptBytes(t, dz, "pic.png", "image/png", pngBytes(t, 8, 8))

	// Still probing: the trigger must not bypass the preview stage.
	dz.TriggerUpload(id)
	if got := mustEntry(t, dz, id).Status; got != StatusPreparing {
		t.Fatalf("early trigger moved entry to %s", got)
	}

	close(gate.release)
	loop.drainUntil(t, func() bool {
		return mustEntry(t, dz, id).Status == StatusDone
	})
	if n := requests.Load(); n != 1 {
		t.Errorf("server saw %d requests, want 1", n)
	}
}

func TestOversizeEntryNeverUploads(t *testing.T) {
	srv, requests := receiverServer(t, http.StatusOK)

	cfg := DefaultConfig()
	cfg.MaxSizeBytes = 2
	cfg.Params = StaticParams(srv.URL)
	dz, loop, _ := newTestZone(t, cfg)

	id := acceptText(t, dz, "big.txt", "too large")
	dz.TriggerUpload(id)
	loop.drain()

	if got := mustEntry(t, dz, id).Status; got != StatusErrorFileSize {
		t.Errorf("status = %s, want %s", got, StatusErrorFileSize)
	}
	if n := requests.Load(); n != 0 {
		t.Errorf("server saw %d requests, want 0", n)
	}
}

func TestCancelAbortsUpload(t *testing.T) {
	g := newUploadGate(t)

	var mu sync.Mutex
	var events []string
	cfg := DefaultConfig()
	cfg.Params = StaticParams(g.srv.URL)
	cfg.OnCancel = func(Entry) {
		mu.Lock()
		events = append(events, "cancel")
		mu.Unlock()
	}
	cfg.OnChangeStatus = func(_ Entry, s Status) {
		mu.Lock()
		events = append(events, "status:"+string(s))
		mu.Unlock()
	}
	dz, loop, _ := newTestZone(t, cfg)

	id := acceptText(t, dz, "a.txt", "abc")
	if got := mustEntry(t, dz, id).Status; got != StatusUploading {
		t.Fatalf("status = %s, want %s", got, StatusUploading)
	}
	g.awaitEntered(t)

	dz.Cancel(id)
	loop.drainUntil(t, func() bool {
		return mustEntry(t, dz, id).Status == StatusAborted
	})

	if got := g.awaitOutcome(t); got != "canceled" {
		t.Errorf("server outcome = %q, want canceled", got)
	}

	mu.Lock()
	defer mu.Unlock()
	cancelAt, abortedAt := -1, -1
	for i, ev := range events {
		switch ev {
		case "cancel":
			cancelAt = i
		case "status:" + string(StatusAborted):
			abortedAt = i
		}
	}
	if cancelAt == -1 || abortedAt == -1 || cancelAt > abortedAt {
		t.Errorf("events = %v, want cancel before aborted", events)
	}
}

func TestCancelAfterHeadersAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		// Keep the response body open until the client walks away.
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.Params = StaticParams(srv.URL)
	dz, loop, _ := newTestZone(t, cfg)

	id := acceptText(t, dz, "a.txt", "abc")
	loop.drainUntil(t, func() bool {
		return mustEntry(t, dz, id).Status == StatusHeadersReceived
	})

	dz.Cancel(id)
	loop.drainUntil(t, func() bool {
		return mustEntry(t, dz, id).Status == StatusAborted
	})

	// Percent reached 100 at headers_received and stays there.
	if got := mustEntry(t, dz, id).Percent; got != 100 {
		t.Errorf("percent = %v, want 100", got)
	}
}

func TestCancelWithoutLiveUploadIsNoOp(t *testing.T) {
	calls := 0
	cfg := DefaultConfig()
	cfg.OnReady = func(Entry) bool { return true }
	cfg.OnCancel = func(Entry) { calls++ }
	dz, _, _ := newTestZone(t, cfg)

	id := acceptText(t, dz, "a.txt", "abc") // preparing, nothing in flight
	dz.Cancel(id)
	if calls != 0 {
		t.Errorf("OnCancel fired %d times for an idle entry", calls)
	}
	if got := mustEntry(t, dz, id).Status; got != StatusPreparing {
		t.Errorf("status = %s, want %s", got, StatusPreparing)
	}
}

func TestCancelDuringParamsResolutionAborts(t *testing.T) {
	entered := make(chan struct{})
	cfg := DefaultConfig()
	cfg.Params = func(ctx context.Context, _ Entry) (transport.Params, error) {
		close(entered)
		<-ctx.Done()
		return transport.Params{}, ctx.Err()
	}
	log := &statusLog{}
	cfg.OnChangeStatus = log.observer()
	dz, loop, _ := newTestZone(t, cfg)

	id := acceptText(t, dz, "a.txt", "abc")
	if got := mustEntry(t, dz, id).Status; got != StatusUploading {
		t.Fatalf("status = %s, want %s", got, StatusUploading)
	}
	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("provider never ran")
	}

	dz.Cancel(id)
	loop.drainUntil(t, func() bool {
		return mustEntry(t, dz, id).Status == StatusAborted
	})

	// The canceled resolution must not read as a params failure.
	for _, s := range log.sequence() {
		if s == StatusErrorUploadParams {
			t.Errorf("status sequence %v contains %s", log.sequence(), StatusErrorUploadParams)
		}
	}
}

func TestMissingPayloadAbortsUpload(t *testing.T) {
	srv, requests := receiverServer(t, http.StatusOK)

	cfg := DefaultConfig()
	cfg.Params = StaticParams(srv.URL)
	cfg.OnReady = func(Entry) bool { return true }
	dz, loop, refs := newTestZone(t, cfg)

	id := acceptText(t, dz, "a.txt", "abc")
	// The payload vanishes before the host triggers, as if the sweep
	// had claimed an orphan.
	refs.Store().Cleanup(0)
	dz.TriggerUpload(id)

	loop.drainUntil(t, func() bool {
		return mustEntry(t, dz, id).Status == StatusAborted
	})
	if n := requests.Load(); n != 0 {
		t.Errorf("server saw %d requests, want 0", n)
	}
}

func TestRemoveDoesNotAbortUpload(t *testing.T) {
	g := newUploadGate(t)

	cfg := DefaultConfig()
	cfg.Params = StaticParams(g.srv.URL)
	dz, loop, refs := newTestZone(t, cfg)

	id := acceptText(t, dz, "a.txt", "abc")
	g.awaitEntered(t)

	dz.Remove(id)
	if _, ok := dz.Entry(id); ok {
		t.Fatal("entry still listed after Remove")
	}

	close(g.release)
	if got := g.awaitOutcome(t); got != "completed" {
		t.Errorf("server outcome = %q, want completed (remove must not abort)", got)
	}

	// The late completion has nothing to apply to and must not blow up.
	loop.drainUntil(t, func() bool {
		loop.mu.Lock()
		empty := len(loop.queue) == 0
		loop.mu.Unlock()
		return empty
	})
	if n := refs.Store().Len(); n != 0 {
		t.Errorf("store = %d payloads after Remove, want 0", n)
	}
}

func TestDisposeAbortsUploads(t *testing.T) {
	g := newUploadGate(t)

	cfg := DefaultConfig()
	cfg.Params = StaticParams(g.srv.URL)
	dz, loop, _ := newTestZone(t, cfg)

	acceptText(t, dz, "a.txt", "abc")
	g.awaitEntered(t)

	dz.Dispose()
	if got := g.awaitOutcome(t); got != "canceled" {
		t.Errorf("server outcome = %q, want canceled (teardown aborts)", got)
	}
	loop.drain()
}

func TestUploadProgressIsMonotonic(t *testing.T) {
	srv, _ := receiverServer(t, http.StatusOK)

	cfg := DefaultConfig()
	cfg.Params = StaticParams(srv.URL)
	dz, loop, _ := newTestZone(t, cfg)

	id, ok, err := dz.AcceptReader("blob.bin", "application/octet-stream",
		time.Now(), io.LimitReader(neverEnding('x'), 256<<10))
	if err != nil || !ok {
		t.Fatalf("AcceptReader: ok=%v err=%v", ok, err)
	}

	last := -1.0
	loop.drainUntil(t, func() bool {
		e := mustEntry(t, dz, id)
		if e.Percent < last {
			t.Fatalf("percent regressed: %v after %v", e.Percent, last)
		}
		if e.Percent > 100 {
			t.Fatalf("percent overshot: %v", e.Percent)
		}
		last = e.Percent
		return e.Status == StatusDone
	})

	if got := mustEntry(t, dz, id).Percent; got != 100 {
		t.Errorf("final percent = %v, want exactly 100", got)
	}
}

func TestUploadMergesParamsMeta(t *testing.T) {
	srv, _ := receiverServer(t, http.StatusOK)

	cfg := DefaultConfig()
	cfg.Params = func(_ context.Context, e Entry) (transport.Params, error) {
		return transport.Params{
			URL:  srv.URL,
			Meta: map[string]any{"object_key": "uploads/" + e.Name},
		}, nil
	}
	dz, loop, _ := newTestZone(t, cfg)

	id := acceptText(t, dz, "a.txt", "abc")
	loop.drainUntil(t, func() bool {
		return mustEntry(t, dz, id).Status == StatusDone
	})

	e := mustEntry(t, dz, id)
	if got := e.Meta["object_key"]; got != "uploads/a.txt" {
		t.Errorf("meta object_key = %v", got)
	}
}

func TestSubmitBlockedWhileUploading(t *testing.T) {
	g := newUploadGate(t)

	cfg := DefaultConfig()
	cfg.Params = StaticParams(g.srv.URL)
	dz, loop, _ := newTestZone(t, cfg)

	id := acceptText(t, dz, "now.txt", "y")
	if got := mustEntry(t, dz, id).Status; got != StatusUploading {
		t.Fatalf("status = %s, want %s", got, StatusUploading)
	}
	if dz.SubmitEnabled() {
		t.Error("submission enabled while an upload is in flight")
	}

	close(g.release)
	loop.drainUntil(t, func() bool {
		return mustEntry(t, dz, id).Status == StatusDone
	})
	if !dz.SubmitEnabled() {
		t.Error("submission still blocked after the upload settled")
	}
}
