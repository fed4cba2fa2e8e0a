package blob

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DiskStore keeps payloads under a directory, one file per payload plus
// a JSON metadata sidecar. Use it when uploads are large or the process
// must survive restarts with pending entries.
type DiskStore struct {
	dir     string
	maxSize int64

	mu    sync.RWMutex
	infos map[string]Info
}

// NewDiskStore creates a disk-backed store rooted at dir, creating the
// directory if needed. maxSize caps a single payload in bytes; 0 means
// no limit.
func NewDiskStore(dir string, maxSize int64) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{
		dir:     dir,
		maxSize: maxSize,
		infos:   make(map[string]Info),
	}, nil
}

// Put streams the payload to disk.
func (s *DiskStore) Put(name, contentType string, r io.Reader) (Info, error) {
	id := uuid.NewString()
	path := filepath.Join(s.dir, id)

	f, err := os.Create(path)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	var reader io.Reader = r
	if s.maxSize > 0 {
		reader = io.LimitReader(r, s.maxSize+1)
	}

	written, err := io.Copy(f, reader)
	if err != nil {
		os.Remove(path)
		return Info{}, err
	}
	if s.maxSize > 0 && written > s.maxSize {
		os.Remove(path)
		return Info{}, ErrTooLarge
	}

	info := Info{
		ID:          id,
		Name:        name,
		ContentType: contentType,
		Size:        written,
		CreatedAt:   time.Now(),
	}

	s.mu.Lock()
	s.infos[id] = info
	s.mu.Unlock()

	s.saveInfo(info)

	return info, nil
}

// Open opens the payload file.
func (s *DiskStore) Open(id string) (io.ReadCloser, Info, error) {
	info, err := s.Stat(id)
	if err != nil {
		return nil, Info{}, err
	}

	f, err := os.Open(filepath.Join(s.dir, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, Info{}, ErrNotFound
		}
		return nil, Info{}, err
	}
	return f, info, nil
}

// Stat returns payload metadata, falling back to the sidecar file after
// a restart.
func (s *DiskStore) Stat(id string) (Info, error) {
	s.mu.RLock()
	info, ok := s.infos[id]
	s.mu.RUnlock()
	if ok {
		return info, nil
	}

	info, err := s.loadInfo(id)
	if err != nil {
		return Info{}, ErrNotFound
	}

	s.mu.Lock()
	s.infos[id] = info
	s.mu.Unlock()
	return info, nil
}

// Delete removes the payload file and its sidecar.
func (s *DiskStore) Delete(id string) error {
	s.mu.Lock()
	_, ok := s.infos[id]
	delete(s.infos, id)
	s.mu.Unlock()

	path := filepath.Join(s.dir, id)
	if !ok {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return ErrNotFound
		}
	}
	os.Remove(path)
	os.Remove(s.infoPath(id))
	return nil
}

// Cleanup removes payloads older than maxAge, including orphaned files
// left by a previous process.
func (s *DiskStore) Cleanup(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	removed := 0

	s.mu.Lock()
	for id, info := range s.infos {
		if info.CreatedAt.Before(cutoff) {
			delete(s.infos, id)
			os.Remove(filepath.Join(s.dir, id))
			os.Remove(s.infoPath(id))
			removed++
		}
	}
	s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return removed
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		if fi.ModTime().Before(cutoff) {
			os.Remove(filepath.Join(s.dir, entry.Name()))
		}
	}

	return removed
}

// Len returns the number of tracked payloads.
func (s *DiskStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.infos)
}

func (s *DiskStore) infoPath(id string) string {
	return filepath.Join(s.dir, id+".meta")
}

func (s *DiskStore) saveInfo(info Info) error {
	data, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return os.WriteFile(s.infoPath(info.ID), data, 0o644)
}

func (s *DiskStore) loadInfo(id string) (Info, error) {
	data, err := os.ReadFile(s.infoPath(id))
	if err != nil {
		return Info{}, err
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return Info{}, err
	}
	return info, nil
}
