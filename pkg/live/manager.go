package live

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// ManagerConfig configures a session manager.
type ManagerConfig struct {
	// Session holds per-session tunables; zero fields get defaults.
	Session *SessionConfig

	// MaxSessions caps concurrent sessions. 0 means no limit.
	MaxSessions int

	// Logger is used by the manager and every session it creates.
	// Default: slog.Default().
	Logger *slog.Logger

	// Metrics is optional; nil disables instrumentation.
	Metrics *Metrics
}

// Manager tracks every open session and enforces the session cap.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	config  *SessionConfig
	max     int
	logger  *slog.Logger
	metrics *Metrics
}

// NewManager builds a Manager from cfg.
func NewManager(cfg ManagerConfig) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		config:   cfg.Session.withDefaults(),
		max:      cfg.MaxSessions,
		logger:   logger,
		metrics:  cfg.Metrics,
	}
}

// Create registers a new session for conn. The caller still has to mount
// a root component and call Start.
func (m *Manager) Create(conn *websocket.Conn) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.max > 0 && len(m.sessions) >= m.max {
		return nil, ErrTooManySessions
	}

	s := newSession(conn, m.config, m.logger, m.metrics)
	s.onClose = m.remove
	m.sessions[s.ID] = s
	m.metrics.SessionOpened()
	m.logger.Info("session created", "session_id", s.ID, "active", len(m.sessions))
	return s, nil
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CloseAll shuts down every session. Used on server shutdown.
func (m *Manager) CloseAll() {
	m.mu.RLock()
	open := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.mu.RUnlock()

	for _, s := range open {
		s.Close()
	}
}

func (m *Manager) remove(s *Session) {
	m.mu.Lock()
	delete(m.sessions, s.ID)
	m.mu.Unlock()
}
