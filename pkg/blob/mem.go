package blob

import (
	"bytes"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore keeps payloads in memory. It is the default backend: dropzone
// payloads are working-set sized and live only as long as their entries.
type MemStore struct {
	maxSize int64

	mu    sync.RWMutex
	blobs map[string]*memBlob
}

type memBlob struct {
	info Info
	data []byte
}

// NewMemStore creates an in-memory store. maxSize caps a single payload
// in bytes; 0 means no limit.
func NewMemStore(maxSize int64) *MemStore {
	return &MemStore{
		maxSize: maxSize,
		blobs:   make(map[string]*memBlob),
	}
}

// Put stores the payload read from r.
func (s *MemStore) Put(name, contentType string, r io.Reader) (Info, error) {
	var reader io.Reader = r
	if s.maxSize > 0 {
		// +1 so an exactly-at-limit payload is distinguishable from an
		// oversized one.
		reader = io.LimitReader(r, s.maxSize+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return Info{}, err
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return Info{}, ErrTooLarge
	}

	info := Info{
		ID:          uuid.NewString(),
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		CreatedAt:   time.Now(),
	}

	s.mu.Lock()
	s.blobs[info.ID] = &memBlob{info: info, data: data}
	s.mu.Unlock()

	return info, nil
}

// Open returns a reader over the payload bytes. The returned reader
// stays valid even if the payload is deleted mid-read.
func (s *MemStore) Open(id string) (io.ReadCloser, Info, error) {
	s.mu.RLock()
	b, ok := s.blobs[id]
	s.mu.RUnlock()

	if !ok {
		return nil, Info{}, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b.data)), b.info, nil
}

// Stat returns payload metadata.
func (s *MemStore) Stat(id string) (Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.blobs[id]
	if !ok {
		return Info{}, ErrNotFound
	}
	return b.info, nil
}

// Delete removes the payload.
func (s *MemStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[id]; !ok {
		return ErrNotFound
	}
	delete(s.blobs, id)
	return nil
}

// Cleanup removes payloads older than maxAge.
func (s *MemStore) Cleanup(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, b := range s.blobs {
		if b.info.CreatedAt.Before(cutoff) {
			delete(s.blobs, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored payloads.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

// Bytes returns the total stored payload size.
func (s *MemStore) Bytes() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, b := range s.blobs {
		total += b.info.Size
	}
	return total
}
