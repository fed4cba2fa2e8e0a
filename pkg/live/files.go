package live

import (
	"fmt"
	"time"
)

// IncomingFile describes one browser file that arrived through the
// intake endpoint. The payload itself already sits in the blob store
// under BlobID; only metadata travels through the session.
type IncomingFile struct {
	Name         string
	ContentType  string
	Size         int64
	LastModified time.Time
	BlobID       string
}

// FileSink receives intake files for one widget. Sinks run on the
// session event loop.
type FileSink func(IncomingFile)

// RegisterFileSink routes files addressed to widgetID into sink.
// A widget registers itself on mount and unregisters on dispose.
func (s *Session) RegisterFileSink(widgetID string, sink FileSink) {
	s.sinkMu.Lock()
	s.sinks[widgetID] = sink
	s.sinkMu.Unlock()
}

// UnregisterFileSink removes the sink for widgetID.
func (s *Session) UnregisterFileSink(widgetID string) {
	s.sinkMu.Lock()
	delete(s.sinks, widgetID)
	s.sinkMu.Unlock()
}

// DeliverFile dispatches f to the widget's sink on the event loop.
// Called from the HTTP intake handler goroutine.
func (s *Session) DeliverFile(widgetID string, f IncomingFile) error {
	s.sinkMu.RLock()
	sink, ok := s.sinks[widgetID]
	s.sinkMu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoSink, widgetID)
	}
	return s.Dispatch(func() { sink(f) })
}
