package main

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/dropkit-dev/dropkit/pkg/blob"
)

// receiver is the demo's upload destination: a multipart endpoint that
// writes the file part into a disk store under a temp directory, so the
// widget's uploads complete against a real HTTP server.
type receiver struct {
	dir   string
	store *blob.DiskStore
	log   *slog.Logger
}

func newReceiver(logger *slog.Logger) (*receiver, error) {
	dir, err := os.MkdirTemp("", "dropkit-demo-recv-")
	if err != nil {
		return nil, err
	}
	store, err := blob.NewDiskStore(dir, 0)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	return &receiver{dir: dir, store: store, log: logger.With("component", "receiver")}, nil
}

func (rc *receiver) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mr, err := r.MultipartReader()
	if err != nil {
		http.Error(w, "expected multipart/form-data", http.StatusBadRequest)
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			http.Error(w, "malformed multipart body", http.StatusBadRequest)
			return
		}
		if part.FormName() != "file" {
			io.Copy(io.Discard, part)
			part.Close()
			continue
		}

		info, err := rc.store.Put(part.FileName(), part.Header.Get("Content-Type"), part)
		part.Close()
		if err != nil {
			rc.log.Error("store upload", "err", err)
			http.Error(w, "store failed", http.StatusInternalServerError)
			return
		}
		rc.log.Info("received upload", "name", info.Name, "size", info.Size, "blob", info.ID)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": info.ID, "size": info.Size})
		return
	}
	http.Error(w, "no file part", http.StatusBadRequest)
}

// Close removes the receiver's temp directory and everything in it.
func (rc *receiver) Close() error {
	return os.RemoveAll(rc.dir)
}
