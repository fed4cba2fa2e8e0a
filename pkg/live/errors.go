package live

import "errors"

var (
	// ErrSessionClosed reports an operation against a closed session.
	ErrSessionClosed = errors.New("live: session closed")

	// ErrQueueFull reports that the session's event queue is saturated.
	ErrQueueFull = errors.New("live: event queue full")

	// ErrTooManySessions reports that the manager refused a new session.
	ErrTooManySessions = errors.New("live: too many sessions")

	// ErrNoSink reports that a widget has no registered file sink.
	ErrNoSink = errors.New("live: no file sink for widget")
)
