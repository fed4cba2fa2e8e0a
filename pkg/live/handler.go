package live

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// MountFunc builds the root component for a fresh session. It runs on
// the connection goroutine before the session loops start, so it may
// freely construct widgets and read the session.
type MountFunc func(*Session) Component

// HandleLive returns the WebSocket endpoint handler. Each accepted
// connection becomes a session with its own mounted root.
//
// checkOrigin follows gorilla's semantics; nil applies the default
// same-host policy.
func (m *Manager) HandleLive(mount MountFunc, checkOrigin func(*http.Request) bool) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     checkOrigin,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error.
			m.logger.Warn("websocket upgrade failed", "err", err, "remote", r.RemoteAddr)
			return
		}

		sess, err := m.Create(conn)
		if err != nil {
			m.logger.Warn("session rejected", "err", err, "remote", r.RemoteAddr)
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "session limit reached"))
			conn.Close()
			return
		}

		sess.MountRoot(mount(sess))
		sess.Start()
	}
}
