package reactive

// Listener receives change notifications from signals it reads.
type Listener interface {
	// MarkDirty tells the listener that one of its dependencies changed.
	// For a mounted widget this schedules a re-render.
	MarkDirty()

	// ID returns a stable identifier, used to deduplicate subscriptions
	// and batched notifications.
	ID() uint64
}
