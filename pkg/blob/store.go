// Package blob stores file payloads on behalf of dropzone entries and
// serves them over revocable reference tokens, DropKit's equivalent of
// browser object URLs.
package blob

import (
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned for unknown or deleted payloads and tokens.
var ErrNotFound = errors.New("blob: not found")

// ErrTooLarge is returned when a payload exceeds the store's size limit.
var ErrTooLarge = errors.New("blob: payload too large")

// Info describes a stored payload.
type Info struct {
	// ID is the payload's storage identifier.
	ID string

	// Name is the original filename from intake.
	Name string

	// ContentType is the declared MIME type.
	ContentType string

	// Size is the payload size in bytes.
	Size int64

	// CreatedAt is when the payload was stored.
	CreatedAt time.Time
}

// Store is a payload storage backend. Payloads live from file intake
// until their entry is removed or the cleanup pass expires them.
type Store interface {
	// Put stores the payload read from r and returns its Info.
	Put(name, contentType string, r io.Reader) (Info, error)

	// Open returns a reader over the payload. Callers must close it.
	// A payload may be opened any number of times while it exists.
	Open(id string) (io.ReadCloser, Info, error)

	// Stat returns payload metadata without opening it.
	Stat(id string) (Info, error)

	// Delete removes the payload. Deleting an absent payload returns
	// ErrNotFound.
	Delete(id string) error

	// Cleanup removes payloads older than maxAge and reports how many
	// were removed. Called periodically by the host application.
	Cleanup(maxAge time.Duration) int

	// Len returns the number of stored payloads.
	Len() int
}
