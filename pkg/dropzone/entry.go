package dropzone

import (
	"context"
	"time"
)

// Entry is the widget's record of one accepted file. Entries are plain
// values: list mutations replace the whole entry, so a snapshot handed
// to an observer or a template never changes underneath it.
type Entry struct {
	// ID is unique within one widget instance and strictly increasing
	// in intake order. IDs are never reused, even after removal.
	ID int64

	Name         string
	Size         int64
	ContentType  string
	LastModified time.Time
	AddedAt      time.Time

	Status  Status
	Percent float64

	// PreviewURL serves the stored payload for thumbnail rendering.
	// Only image entries keep it; audio and video probes release their
	// reference once metadata is extracted.
	PreviewURL string

	// Width and Height come from the image probe.
	Width  int
	Height int

	// Duration comes from the audio and video probes.
	Duration time.Duration

	// VideoWidth and VideoHeight come from the video probe.
	VideoWidth  int
	VideoHeight int

	// Meta carries host data merged from the resolved upload
	// parameters. Merges copy the map, so older snapshots keep the
	// version they saw.
	Meta map[string]any
}

// File describes an incoming payload offered to Accept. BlobID points
// at the stored payload bytes; intake stores the body before the widget
// ever sees the file.
type File struct {
	Name         string
	Size         int64
	ContentType  string
	LastModified time.Time
	BlobID       string
}

// triggerState is the one-shot latch around the upload trigger.
type triggerState int

const (
	triggerIdle triggerState = iota
	triggerStarted
	triggerFinished
)

// entryRuntime holds the non-rendered side of an entry: payload
// location, cancel handles and the trigger latch. Only the event loop
// touches it.
type entryRuntime struct {
	blobID       string
	previewToken string
	probeCancel  context.CancelFunc
	uploadCancel context.CancelFunc

	// ready flips once the preview stage has finished; the trigger
	// refuses to fire before that.
	ready   bool
	trigger triggerState
}
