package blob

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
)

// Handler serves payloads by reference token: GET /{token}. Released or
// unknown tokens return 404, exactly like a revoked object URL.
func Handler(refs *Refs) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		token := chi.URLParam(r, "token")
		if token == "" {
			// Mounted outside a chi route; fall back to the last path
			// segment.
			token = path.Base(r.URL.Path)
		}

		id, ok := refs.Resolve(token)
		if !ok {
			http.NotFound(w, r)
			return
		}

		rc, info, err := refs.Store().Open(id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "Failed to open payload", http.StatusInternalServerError)
			return
		}
		defer rc.Close()

		contentType := info.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", fmt.Sprintf("%d", info.Size))
		// Tokens are single-session temporaries; keep them out of shared
		// caches.
		w.Header().Set("Cache-Control", "private, max-age=3600")

		if r.Method == http.MethodHead {
			return
		}
		io.Copy(w, rc)
	})
}
