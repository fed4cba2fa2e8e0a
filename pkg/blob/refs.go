package blob

import (
	"sync"

	"github.com/google/uuid"
)

// Refs maps serving tokens to payloads. A token is the server-side
// object URL: widgets allocate one to expose a payload to the browser
// and release it when the temporary need ends. Releasing is idempotent,
// and a released token serves nothing even while the payload remains.
type Refs struct {
	store Store

	mu     sync.RWMutex
	tokens map[string]string
}

// NewRefs creates a token table over store.
func NewRefs(store Store) *Refs {
	return &Refs{
		store:  store,
		tokens: make(map[string]string),
	}
}

// Alloc mints a token for payload id. Fails with ErrNotFound when the
// payload does not exist.
func (r *Refs) Alloc(id string) (string, error) {
	if _, err := r.store.Stat(id); err != nil {
		return "", err
	}

	token := uuid.NewString()
	r.mu.Lock()
	r.tokens[token] = id
	r.mu.Unlock()
	return token, nil
}

// Release revokes a token. Unknown and already-released tokens are
// no-ops.
func (r *Refs) Release(token string) {
	if token == "" {
		return
	}
	r.mu.Lock()
	delete(r.tokens, token)
	r.mu.Unlock()
}

// ReleaseAll revokes every token.
func (r *Refs) ReleaseAll() {
	r.mu.Lock()
	r.tokens = make(map[string]string)
	r.mu.Unlock()
}

// Resolve returns the payload ID behind a live token.
func (r *Refs) Resolve(token string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.tokens[token]
	return id, ok
}

// Store returns the underlying payload store.
func (r *Refs) Store() Store {
	return r.store
}

// Len returns the number of live tokens.
func (r *Refs) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tokens)
}
