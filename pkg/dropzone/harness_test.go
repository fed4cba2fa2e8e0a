package dropzone

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dropkit-dev/dropkit/pkg/blob"
	"github.com/dropkit-dev/dropkit/pkg/live"
	"github.com/dropkit-dev/dropkit/pkg/reactive"
)

// fakeLoop stands in for the live session: dispatched work queues up
// and runs on the test goroutine when drained, which makes the async
// pipeline deterministic.
type fakeLoop struct {
	owner *reactive.Owner

	mu     sync.Mutex
	queue  []func()
	sinks  map[string]live.FileSink
	closed bool
}

func newFakeLoop() *fakeLoop {
	return &fakeLoop{
		owner: reactive.NewOwner(nil),
		sinks: make(map[string]live.FileSink),
	}
}

func (l *fakeLoop) Dispatch(fn func()) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return live.ErrSessionClosed
	}
	l.queue = append(l.queue, fn)
	return nil
}

func (l *fakeLoop) RegisterFileSink(widgetID string, sink live.FileSink) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sinks[widgetID] = sink
}

func (l *fakeLoop) UnregisterFileSink(widgetID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.sinks, widgetID)
}

func (l *fakeLoop) Owner() *reactive.Owner { return l.owner }

func (l *fakeLoop) Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// drain runs queued work until the queue is empty.
func (l *fakeLoop) drain() {
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.queue[0]
		l.queue = l.queue[1:]
		l.mu.Unlock()
		fn()
	}
}

// drainUntil pumps the queue until cond holds. Probes and uploads run
// on their own goroutines, so their dispatches may arrive a little
// after the work that spawned them.
func (l *fakeLoop) drainUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		l.drain()
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

// statusLog records the observer stream of one test run. Observers run
// on the loop, which in these tests is the draining test goroutine.
type statusLog struct {
	mu      sync.Mutex
	changes []Status
}

func (sl *statusLog) observer() func(Entry, Status) {
	return func(_ Entry, s Status) {
		sl.mu.Lock()
		sl.changes = append(sl.changes, s)
		sl.mu.Unlock()
	}
}

func (sl *statusLog) sequence() []Status {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	out := make([]Status, len(sl.changes))
	copy(out, sl.changes)
	return out
}

func (sl *statusLog) last() Status {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if len(sl.changes) == 0 {
		return ""
	}
	return sl.changes[len(sl.changes)-1]
}

func newTestRefs() *blob.Refs {
	return blob.NewRefs(blob.NewMemStore(0))
}

func newTestZone(t *testing.T, cfg Config) (*Dropzone, *fakeLoop, *blob.Refs) {
	t.Helper()
	loop := newFakeLoop()
	refs := newTestRefs()
	dz := New(loop, refs, cfg)
	t.Cleanup(func() {
		loop.drain()
		dz.Dispose()
	})
	return dz, loop, refs
}

// acceptText stores body and accepts it as a text file.
func acceptText(t *testing.T, dz *Dropzone, name, body string) int64 {
	t.Helper()
	id, ok, err := dz.AcceptReader(name, "text/plain", time.Now(), strings.NewReader(body))
	if err != nil {
		t.Fatalf("AcceptReader(%q): %v", name, err)
	}
	if !ok {
		t.Fatalf("AcceptReader(%q): rejected", name)
	}
	return id
}

// pngBytes encodes a solid w by h PNG.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func mustEntry(t *testing.T, dz *Dropzone, id int64) Entry {
	t.Helper()
	e, ok := dz.Entry(id)
	if !ok {
		t.Fatalf("entry %d not found", id)
	}
	return e
}
