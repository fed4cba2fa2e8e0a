package reactive

import "sync/atomic"

var idCounter uint64

// nextID returns a process-unique ID for a reactive primitive.
// IDs increase monotonically and are never reused.
func nextID() uint64 {
	return atomic.AddUint64(&idCounter, 1)
}
