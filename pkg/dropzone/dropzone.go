package dropzone

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dropkit-dev/dropkit/pkg/blob"
	"github.com/dropkit-dev/dropkit/pkg/live"
	"github.com/dropkit-dev/dropkit/pkg/reactive"
)

// Loop is the slice of the live session a dropzone needs: re-entering
// the event loop, intake routing, and lifecycle hookup. *live.Session
// implements it.
type Loop interface {
	Dispatch(fn func()) error
	RegisterFileSink(widgetID string, sink live.FileSink)
	UnregisterFileSink(widgetID string)
	Owner() *reactive.Owner
	Logger() *slog.Logger
}

// Dropzone is one upload widget instance. All methods except Render
// must run on the session event loop; callers on other goroutines go
// through Loop.Dispatch.
type Dropzone struct {
	id      string
	loop    Loop
	config  Config
	log     *slog.Logger
	metrics *Metrics

	store blob.Store
	refs  *blob.Refs

	entries *reactive.Slice[Entry]

	// runtime keys by entry ID. Removed entries leave the map; late
	// async results that find no runtime are dropped.
	runtime map[int64]*entryRuntime

	lastID   int64
	disposed bool
}

// New mounts a dropzone on the session. The widget registers its intake
// sink immediately and tears itself down with the session owner.
func New(loop Loop, refs *blob.Refs, cfg Config) *Dropzone {
	if cfg.WidgetID == "" {
		cfg.WidgetID = "dz-" + uuid.NewString()[:8]
	}
	if cfg.BlobPath == "" {
		cfg.BlobPath = "/dropkit/blob/"
	}

	log := cfg.Logger
	if log == nil {
		log = loop.Logger()
	}
	if log == nil {
		log = slog.Default()
	}

	d := &Dropzone{
		id:      cfg.WidgetID,
		loop:    loop,
		config:  cfg,
		log:     log.With("widget", cfg.WidgetID),
		metrics: cfg.Metrics,
		store:   refs.Store(),
		refs:    refs,
		entries: reactive.NewSlice[Entry](nil),
		runtime: make(map[int64]*entryRuntime),
	}

	loop.RegisterFileSink(d.id, d.acceptIncoming)
	loop.Owner().OnCleanup(d.Dispose)
	return d
}

// ID returns the widget's intake routing ID.
func (d *Dropzone) ID() string { return d.id }

// Entries returns a snapshot of the current entry list.
func (d *Dropzone) Entries() []Entry { return d.entries.Items() }

// Entry returns the current snapshot of one entry.
func (d *Dropzone) Entry(id int64) (Entry, bool) {
	return d.entries.Find(func(e Entry) bool { return e.ID == id })
}

func (d *Dropzone) acceptIncoming(f live.IncomingFile) {
	d.Accept(File{
		Name:         f.Name,
		Size:         f.Size,
		ContentType:  f.ContentType,
		LastModified: f.LastModified,
		BlobID:       f.BlobID,
	})
}

// Accept validates f and, when it passes, appends a preparing entry and
// starts its pipeline. Type and count rejections produce no entry; the
// returned bool reports whether an entry was created.
func (d *Dropzone) Accept(f File) (int64, bool) {
	if d.disposed {
		return 0, false
	}
	if !d.typeAllowed(f.ContentType) {
		d.reject(f, "type")
		return 0, false
	}
	if d.config.MaxFiles > 0 && len(d.entries.Peek()) >= d.config.MaxFiles {
		d.reject(f, "count")
		return 0, false
	}

	id := d.nextID()
	e := Entry{
		ID:           id,
		Name:         f.Name,
		Size:         f.Size,
		ContentType:  f.ContentType,
		LastModified: f.LastModified,
		AddedAt:      time.Now(),
		Status:       StatusPreparing,
	}
	d.runtime[id] = &entryRuntime{blobID: f.BlobID}
	d.entries.Append(e)
	d.metrics.FileAccepted()
	d.notifyStatus(e, StatusPreparing)

	if d.config.MaxSizeBytes > 0 && f.Size > d.config.MaxSizeBytes {
		d.transition(id, StatusErrorFileSize, nil)
		d.deletePayload(id)
		return id, true
	}

	d.startPreview(id)
	return id, true
}

// AcceptReader stores the payload read from r and accepts it like a
// dropped file. Intended for programmatic intake.
func (d *Dropzone) AcceptReader(name, contentType string, lastModified time.Time, r io.Reader) (int64, bool, error) {
	info, err := d.store.Put(name, contentType, r)
	if err != nil {
		return 0, false, err
	}
	id, ok := d.Accept(File{
		Name:         name,
		Size:         info.Size,
		ContentType:  contentType,
		LastModified: lastModified,
		BlobID:       info.ID,
	})
	if !ok {
		return 0, false, nil
	}
	return id, true, nil
}

func (d *Dropzone) typeAllowed(contentType string) bool {
	if len(d.config.AcceptPrefixes) == 0 {
		return true
	}
	for _, prefix := range d.config.AcceptPrefixes {
		if strings.HasPrefix(contentType, prefix) {
			return true
		}
	}
	return false
}

// reject drops a file without creating an entry. The payload is deleted
// so rejected intake never leaks storage.
func (d *Dropzone) reject(f File, reason string) {
	if f.BlobID != "" {
		if err := d.store.Delete(f.BlobID); err != nil && !errors.Is(err, blob.ErrNotFound) {
			d.log.Warn("rejected payload delete failed", "blob", f.BlobID, "err", err)
		}
	}
	d.metrics.FileRejected(reason)
	d.log.Debug("file rejected", "name", f.Name, "reason", reason)
}

func (d *Dropzone) nextID() int64 {
	if d.config.NextID != nil {
		return d.config.NextID()
	}
	d.lastID++
	return d.lastID
}

// transition advances one entry through the status guard. mutate, when
// non-nil, applies extra field changes to the same copy. Regressions
// and terminal re-entries are dropped; the return reports whether the
// transition applied.
func (d *Dropzone) transition(id int64, to Status, mutate func(*Entry)) bool {
	applied := false
	var after Entry
	d.entries.UpdateWhere(
		func(e Entry) bool { return e.ID == id },
		func(e Entry) Entry {
			if !canTransition(e.Status, to) {
				return e
			}
			e.Status = to
			if mutate != nil {
				mutate(&e)
			}
			applied = true
			after = e
			return e
		},
	)
	if applied {
		d.notifyStatus(after, to)
	}
	return applied
}

func (d *Dropzone) notifyStatus(e Entry, s Status) {
	if d.config.OnChangeStatus != nil {
		d.config.OnChangeStatus(e, s)
	}
}

// Cancel aborts one in-flight upload. The cancel observer fires before
// the abort; the aborted status then arrives through the upload's own
// completion path. Entries without a live transport are left alone.
func (d *Dropzone) Cancel(id int64) {
	rt, ok := d.runtime[id]
	if !ok || rt.uploadCancel == nil {
		return
	}
	if e, ok := d.Entry(id); ok && d.config.OnCancel != nil {
		d.config.OnCancel(e)
	}
	rt.uploadCancel()
}

// Remove deletes one entry and its resources. A live upload keeps
// running; its late result finds no entry and is dropped.
func (d *Dropzone) Remove(id int64) {
	e, ok := d.Entry(id)
	if !ok {
		return
	}
	if d.config.OnRemove != nil {
		d.config.OnRemove(e)
	}
	d.entries.RemoveWhere(func(e Entry) bool { return e.ID == id })
	d.releaseRuntime(id, false)
}

// releaseRuntime drops an entry's runtime side: the probe is canceled,
// the preview token released, the payload deleted. abortUpload also
// aborts a live transport.
func (d *Dropzone) releaseRuntime(id int64, abortUpload bool) {
	rt, ok := d.runtime[id]
	if !ok {
		return
	}
	delete(d.runtime, id)

	if rt.probeCancel != nil {
		rt.probeCancel()
		rt.probeCancel = nil
	}
	if abortUpload && rt.uploadCancel != nil {
		rt.uploadCancel()
		rt.uploadCancel = nil
	}
	d.releasePreview(rt)
	d.deletePayloadRT(rt)
}

func (d *Dropzone) deletePayload(id int64) {
	if rt, ok := d.runtime[id]; ok {
		d.deletePayloadRT(rt)
	}
}

func (d *Dropzone) deletePayloadRT(rt *entryRuntime) {
	if rt.blobID == "" {
		return
	}
	if err := d.store.Delete(rt.blobID); err != nil && !errors.Is(err, blob.ErrNotFound) {
		d.log.Warn("payload delete failed", "blob", rt.blobID, "err", err)
	}
	rt.blobID = ""
}

// Dispose tears the widget down: every live upload is aborted, probes
// canceled, preview tokens released, payloads deleted, and the intake
// sink unregistered. Runs automatically on session cleanup.
func (d *Dropzone) Dispose() {
	if d.disposed {
		return
	}
	d.disposed = true
	d.loop.UnregisterFileSink(d.id)
	for id := range d.runtime {
		d.releaseRuntime(id, true)
	}
}

// SubmitEnabled reports whether the submit affordance is active: at
// least one entry reached headers_received or done, and none is still
// preparing or uploading.
func (d *Dropzone) SubmitEnabled() bool {
	ready := false
	for _, e := range d.entries.Peek() {
		switch e.Status {
		case StatusPreparing, StatusUploading:
			return false
		case StatusHeadersReceived, StatusDone:
			ready = true
		}
	}
	return ready
}

// Submit hands the current entries to the submit observer, honoring the
// SubmitAll setting. A no-op while SubmitEnabled is false.
func (d *Dropzone) Submit() {
	if !d.SubmitEnabled() || d.config.OnSubmit == nil {
		return
	}
	files := d.entries.Items()
	if !d.config.SubmitAll {
		kept := make([]Entry, 0, len(files))
		for _, e := range files {
			if e.Status == StatusDone {
				kept = append(kept, e)
			}
		}
		files = kept
	}
	d.config.OnSubmit(files)
}
