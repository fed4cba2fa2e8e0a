package live

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dropkit-dev/dropkit/pkg/reactive"
	"github.com/dropkit-dev/dropkit/pkg/render"
	"github.com/dropkit-dev/dropkit/pkg/vdom"
)

// Session is one WebSocket connection and the widget state behind it.
// Handlers, dispatched callbacks, and renders all run on the event loop
// goroutine; other goroutines interact with the session only through
// Dispatch, QueueEvent, and DeliverFile.
type Session struct {
	ID         string
	CreatedAt  time.Time
	lastActive atomic.Int64

	conn    *websocket.Conn
	writeMu sync.Mutex
	closed  atomic.Bool

	root     Component
	owner    *reactive.Owner
	renderer *render.Renderer
	listener *sessionListener

	// handlers maps "<hid>_on<event>" to the prop value collected during
	// the last render. Event loop only.
	handlers map[string]any

	events     chan *Event
	dispatchCh chan func()
	renderCh   chan struct{}
	done       chan struct{}
	started    atomic.Bool
	closeOnce  sync.Once
	onClose    func(*Session)

	sinkMu sync.RWMutex
	sinks  map[string]FileSink

	config  *SessionConfig
	logger  *slog.Logger
	metrics *Metrics
}

// sessionListener marks the session dirty when a tracked signal changes.
type sessionListener struct {
	id      uint64
	session *Session
}

var listenerIDs atomic.Uint64

func (l *sessionListener) ID() uint64 { return l.id }

func (l *sessionListener) MarkDirty() { l.session.requestRender() }

// generateSessionID returns a cryptographically random session ID.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// Weak session IDs are dangerous; refuse to continue.
		panic(fmt.Sprintf("live: crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

func newSession(conn *websocket.Conn, config *SessionConfig, logger *slog.Logger, metrics *Metrics) *Session {
	id := generateSessionID()
	s := &Session{
		ID:         id,
		CreatedAt:  time.Now(),
		conn:       conn,
		owner:      reactive.NewOwner(nil),
		renderer:   render.NewRenderer(),
		handlers:   make(map[string]any),
		events:     make(chan *Event, config.MaxEventQueue),
		dispatchCh: make(chan func(), config.MaxEventQueue),
		renderCh:   make(chan struct{}, 1),
		done:       make(chan struct{}),
		sinks:      make(map[string]FileSink),
		config:     config,
		logger:     logger.With("session_id", id),
		metrics:    metrics,
	}
	s.listener = &sessionListener{id: listenerIDs.Add(1), session: s}
	s.touch()
	return s
}

// Owner is the reactive scope of this session. Widgets hang their
// cleanup callbacks here; Close disposes it.
func (s *Session) Owner() *reactive.Owner {
	return s.owner
}

// Logger returns the session-scoped logger.
func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// Done is closed when the session shuts down.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// LastActive reports when a client frame or event was last seen.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

func (s *Session) touch() {
	s.lastActive.Store(time.Now().UnixNano())
}

// MountRoot renders the root component for the first time and sends the
// mount frame. Call before Start.
func (s *Session) MountRoot(root Component) {
	s.root = root
	html, ok := s.renderRootHTML()
	if !ok {
		return
	}
	if err := s.sendFrame(serverFrame{T: frameMount, Target: s.config.MountID, HTML: html, Session: s.ID}); err != nil {
		return
	}
	s.logger.Info("mounted root component", "handlers", len(s.handlers))
}

// Start launches the session goroutines after the mount frame is out.
func (s *Session) Start() {
	s.started.Store(true)
	go s.ReadLoop()
	go s.WriteLoop()
	go s.EventLoop()
}

// ReadLoop reads client frames until the connection dies.
func (s *Session) ReadLoop() {
	defer s.Close()

	s.conn.SetReadLimit(s.config.MaxMessageSize)
	for {
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "err", err)
			}
			return
		}
		s.touch()

		frame, err := decodeClientFrame(msg)
		if err != nil {
			s.logger.Error("frame decode error", "err", err)
			continue
		}

		switch frame.T {
		case frameEvent:
			ev := &Event{HID: frame.HID, Name: frame.Name, Data: frame.Data}
			if err := s.QueueEvent(ev); err != nil {
				s.logger.Warn("event dropped", "hid", ev.HID, "event", ev.Name, "err", err)
			}
		case framePing:
			s.sendFrame(serverFrame{T: framePong})
		case framePong:
			// Heartbeat answered; lastActive already updated.
		default:
			s.logger.Warn("unknown frame type", "type", frame.T)
		}
	}
}

// WriteLoop sends heartbeat pings until the session closes.
func (s *Session) WriteLoop() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.sendFrame(serverFrame{T: framePing}); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

// EventLoop processes queued events, dispatched callbacks, and render
// requests. All widget state is owned by this goroutine.
func (s *Session) EventLoop() {
	for {
		select {
		case ev := <-s.events:
			s.handleEvent(ev)
		case fn := <-s.dispatchCh:
			s.runDispatched(fn)
		case <-s.renderCh:
			s.renderRoot()
		case <-s.done:
			// Dispose on the loop so widget cleanups run where all
			// other state mutations do.
			s.owner.Dispose()
			return
		}
	}
}

// QueueEvent hands a client event to the event loop without blocking.
func (s *Session) QueueEvent(ev *Event) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	select {
	case s.events <- ev:
		s.metrics.EventQueued()
		return nil
	default:
		return ErrQueueFull
	}
}

// Dispatch schedules fn onto the event loop. Async work (uploads, probes)
// re-enters the session this way; fn may touch signals and widget state
// freely. Returns ErrSessionClosed once the session is shutting down.
func (s *Session) Dispatch(fn func()) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	select {
	case s.dispatchCh <- fn:
		return nil
	case <-s.done:
		return ErrSessionClosed
	}
}

func (s *Session) handleEvent(ev *Event) {
	s.touch()

	key := ev.handlerKey()
	handler, ok := s.handlers[key]
	if !ok {
		s.logger.Warn("handler not found", "hid", ev.HID, "event", ev.Name)
		return
	}
	s.safeInvoke(key, handler, ev)
	s.flushRender()
}

// safeInvoke runs a handler with panic recovery.
func (s *Session) safeInvoke(key string, handler any, ev *Event) {
	defer func() {
		if r := recover(); r != nil {
			s.metrics.HandlerPanicked()
			s.logger.Error("handler panic",
				"key", key,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()

	switch fn := handler.(type) {
	case func():
		fn()
	case func(*Event):
		fn(ev)
	default:
		s.logger.Warn("unsupported handler type", "key", key, "type", fmt.Sprintf("%T", handler))
	}
}

// runDispatched runs a dispatched callback with panic recovery.
func (s *Session) runDispatched(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("dispatch panic", "panic", r, "stack", string(debug.Stack()))
		}
	}()

	fn()
	s.flushRender()
}

// requestRender coalesces dirty marks into a single pending render.
func (s *Session) requestRender() {
	select {
	case s.renderCh <- struct{}{}:
	default:
	}
}

// flushRender renders immediately if a render request is pending, so a
// handler's signal writes reach the client before the loop goes back to
// sleep.
func (s *Session) flushRender() {
	select {
	case <-s.renderCh:
		s.renderRoot()
	default:
	}
}

// renderRoot re-renders the whole root, swaps the handler table, and
// ships the HTML as a patch frame.
func (s *Session) renderRoot() {
	html, ok := s.renderRootHTML()
	if !ok {
		return
	}
	if err := s.sendFrame(serverFrame{T: framePatch, Target: s.config.MountID, HTML: html}); err != nil {
		return
	}
	s.metrics.PatchSent(len(html))
}

// renderRootHTML runs one tracked render pass. Every signal read while
// rendering subscribes the session listener, so later writes to those
// signals schedule the next render.
func (s *Session) renderRootHTML() (string, bool) {
	if s.root == nil {
		return "", false
	}
	start := time.Now()

	var tree *vdom.VNode
	reactive.WithListener(s.listener, func() {
		tree = s.root.Render()
	})

	s.renderer.Reset()
	html, err := s.renderer.RenderToString(tree)
	if err != nil {
		s.logger.Error("render failed", "err", err)
		return "", false
	}
	s.handlers = s.renderer.Handlers()
	s.metrics.RenderDone(time.Since(start))
	return html, true
}

func (s *Session) sendFrame(f serverFrame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.closed.Load() {
		return ErrSessionClosed
	}

	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("live: encode frame: %w", err)
	}
	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Error("write error", "err", err)
		return err
	}
	return nil
}

// Close shuts the session down: stops the loops, closes the connection,
// and disposes the reactive owner so widget cleanups (upload aborts, blob
// releases) run. Idempotent. When the loops are running, disposal happens
// on the event loop as it drains out.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.done)
		s.conn.Close()
		if !s.started.Load() {
			s.owner.Dispose()
		}
		s.metrics.SessionClosed()
		s.logger.Info("session closed")
		if s.onClose != nil {
			s.onClose(s)
		}
	})
}
