package reactive

import (
	"runtime"
	"sync"
)

// trackingContext holds the reactive state of one goroutine: the listener
// currently collecting dependencies and the batch nesting state. Keeping
// it per goroutine lets independent sessions render concurrently without
// observing each other's tracking.
type trackingContext struct {
	// currentListener is subscribed by every signal read while set.
	// nil means reads do not create subscriptions.
	currentListener Listener

	// batchDepth counts nested Batch calls. While positive, signal
	// notifications are queued instead of delivered.
	batchDepth int

	// pending accumulates listeners to notify when the outermost batch
	// exits. Deduplicated by listener ID before delivery.
	pending []Listener
}

var trackingContexts sync.Map

// goroutineID extracts the numeric goroutine ID from the runtime stack
// header ("goroutine <id> ..."). Implementation detail, never exposed.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

func getTracking() *trackingContext {
	gid := goroutineID()
	if tc, ok := trackingContexts.Load(gid); ok {
		return tc.(*trackingContext)
	}
	tc := &trackingContext{}
	trackingContexts.Store(gid, tc)
	return tc
}

func currentListener() Listener {
	return getTracking().currentListener
}

func setCurrentListener(l Listener) Listener {
	tc := getTracking()
	old := tc.currentListener
	tc.currentListener = l
	return old
}

// WithListener runs fn with l installed as the tracking listener, so that
// every signal read inside fn subscribes l. The session render path uses
// this to wire widget state to the dirty flag.
func WithListener(l Listener, fn func()) {
	old := setCurrentListener(l)
	defer setCurrentListener(old)
	fn()
}

// Untracked runs fn with tracking suspended: signal reads inside do not
// create subscriptions. For a single read prefer Signal.Peek.
func Untracked(fn func()) {
	old := setCurrentListener(nil)
	defer setCurrentListener(old)
	fn()
}

func batchDepth() int {
	return getTracking().batchDepth
}

func enterBatch() {
	getTracking().batchDepth++
}

// leaveBatch reports whether the outermost batch just completed.
func leaveBatch() bool {
	tc := getTracking()
	tc.batchDepth--
	return tc.batchDepth == 0
}

func queuePending(l Listener) {
	tc := getTracking()
	tc.pending = append(tc.pending, l)
}

func drainPending() []Listener {
	tc := getTracking()
	pending := tc.pending
	tc.pending = nil
	return pending
}
