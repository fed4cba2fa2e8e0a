package reactive

// Batch groups signal writes into a single notification phase. Listeners
// dirtied inside fn are collected, deduplicated by ID, and notified once
// when the outermost batch exits. Batches nest.
func Batch(fn func()) {
	enterBatch()
	defer func() {
		if leaveBatch() {
			flushPending()
		}
	}()
	fn()
}

// flushPending deduplicates and delivers queued notifications.
func flushPending() {
	pending := drainPending()
	if len(pending) == 0 {
		return
	}

	seen := make(map[uint64]bool, len(pending))
	for _, l := range pending {
		id := l.ID()
		if seen[id] {
			continue
		}
		seen[id] = true
		l.MarkDirty()
	}
}
