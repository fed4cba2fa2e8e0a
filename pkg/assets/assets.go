// Package assets serves embedded static files with content-addressed
// ETags. The DropKit client runtime ships inside the binary; the ETag is
// derived from the bytes, so browsers revalidate with a cheap 304 and a
// new build invalidates caches by itself.
package assets

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
)

// Asset is one immutable in-memory file. It implements http.Handler.
type Asset struct {
	name        string
	contentType string
	body        []byte
	etag        string
}

// New builds an Asset around body. The name only appears in logs and
// error text; routing is up to the caller.
func New(name, contentType string, body []byte) *Asset {
	sum := sha256.Sum256(body)
	return &Asset{
		name:        name,
		contentType: contentType,
		body:        body,
		etag:        `"` + hex.EncodeToString(sum[:8]) + `"`,
	}
}

// Name returns the asset's name.
func (a *Asset) Name() string { return a.name }

// ETag returns the quoted entity tag clients revalidate against.
func (a *Asset) ETag() string { return a.etag }

// Len returns the body size in bytes.
func (a *Asset) Len() int { return len(a.body) }

// ServeHTTP serves the asset with conditional-GET support.
func (a *Asset) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("ETag", a.etag)
	w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate")

	if matchesETag(r.Header.Get("If-None-Match"), a.etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", a.contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(a.body)))
	if r.Method == http.MethodHead {
		return
	}
	w.Write(a.body)
}

// matchesETag reports whether the If-None-Match header value covers
// etag. Weak validators compare by payload, which is exact here.
func matchesETag(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimPrefix(candidate, "W/")
		if candidate == etag || candidate == "*" {
			return true
		}
	}
	return false
}
