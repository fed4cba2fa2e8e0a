package dropzone

import (
	"context"
	"io"
	"math"

	"github.com/dropkit-dev/dropkit/pkg/transport"
)

// readyForUpload runs after the preview stage. The ready observer may
// defer the upload by returning true, in which case the host triggers
// it later; otherwise the upload starts immediately.
func (d *Dropzone) readyForUpload(id int64) {
	rt, ok := d.runtime[id]
	if !ok {
		return
	}
	e, ok := d.Entry(id)
	if !ok || e.Status != StatusPreparing {
		return
	}
	rt.ready = true
	if d.config.OnReady != nil && d.config.OnReady(e) {
		return
	}
	d.TriggerUpload(id)
}

// TriggerUpload starts the upload for one prepared entry. The first
// call wins; repeated calls are no-ops, as are calls for removed
// entries and calls before the entry finished preparing. Runs on the
// session loop.
func (d *Dropzone) TriggerUpload(id int64) {
	rt, ok := d.runtime[id]
	if !ok || !rt.ready || rt.trigger != triggerIdle {
		return
	}
	rt.trigger = triggerStarted

	// No parameter source means no transport: the entry is complete
	// the moment it is triggered.
	if d.config.Params == nil {
		rt.trigger = triggerFinished
		d.transition(id, StatusDone, func(e *Entry) { e.Percent = 100 })
		return
	}

	e, ok := d.Entry(id)
	if !ok {
		return
	}
	// Uploading covers parameter resolution too, so a params failure
	// lands on an entry already marked uploading.
	if !d.transition(id, StatusUploading, nil) {
		rt.trigger = triggerFinished
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	rt.uploadCancel = cancel
	go d.upload(ctx, id, e, rt.blobID)
}

// upload drives one transport attempt off the loop. Every state change
// it produces re-enters the loop through Dispatch; the entry may be
// removed at any point, in which case the dispatched work finds nothing
// to apply to.
func (d *Dropzone) upload(ctx context.Context, id int64, e Entry, blobID string) {
	uploader := d.config.Uploader
	if uploader == nil {
		uploader = transport.NewClient()
	}

	params, err := d.config.Params(ctx, e)
	// A cancel may land while the provider is still resolving; that is
	// an abort, not a params failure.
	if ctx.Err() != nil {
		d.finish(id, StatusAborted, 0, 0)
		return
	}
	if err != nil || params.URL == "" {
		if err != nil {
			d.log.Warn("upload params failed", "entry", id, "err", err)
		}
		d.finish(id, StatusErrorUploadParams, 0, 0)
		return
	}
	if len(params.Meta) > 0 {
		_ = d.loop.Dispatch(func() { d.mergeMeta(id, params.Meta) })
	}

	// error_upload is reserved for responses with a status of 400 or
	// above; a request that never went out surfaces as aborted, the
	// same as a transport death without a status.
	payload, closer, err := d.openPayload(blobID, e)
	if err != nil {
		d.log.Warn("payload open failed", "entry", id, "err", err)
		d.finish(id, StatusAborted, 0, 0)
		return
	}
	defer closer.Close()

	res, err := uploader.Upload(ctx, params, payload, transport.Callbacks{
		Progress: func(sent, total int64) {
			percent := 100.0
			if total > 0 {
				percent = float64(sent) / float64(total) * 100
			}
			_ = d.loop.Dispatch(func() { d.setPercent(id, percent) })
		},
		HeadersReceived: func(status int) {
			if status >= 200 && status < 400 {
				_ = d.loop.Dispatch(func() {
					d.transition(id, StatusHeadersReceived, func(e *Entry) { e.Percent = 100 })
				})
			}
		},
	})

	switch {
	case err != nil:
		// Canceled, or the request died before any status arrived.
		d.finish(id, StatusAborted, 0, 0)
	case res.StatusCode >= 400:
		d.finish(id, StatusErrorUpload, 0, 0)
	default:
		d.finish(id, StatusDone, 100, e.Size)
	}
}

func (d *Dropzone) openPayload(blobID string, e Entry) (transport.Payload, io.Closer, error) {
	rc, info, err := d.store.Open(blobID)
	if err != nil {
		return transport.Payload{}, nil, err
	}
	return transport.Payload{
		Name:        e.Name,
		ContentType: e.ContentType,
		Size:        info.Size,
		Body:        rc,
	}, rc, nil
}

// finish dispatches an upload's terminal transition, settles the
// trigger latch, and drops the abort handle.
func (d *Dropzone) finish(id int64, to Status, percent float64, bytes int64) {
	_ = d.loop.Dispatch(func() {
		if rt, ok := d.runtime[id]; ok {
			rt.trigger = triggerFinished
			if rt.uploadCancel != nil {
				rt.uploadCancel()
				rt.uploadCancel = nil
			}
		}
		var mutate func(*Entry)
		if percent > 0 {
			mutate = func(e *Entry) { e.Percent = percent }
		}
		if d.transition(id, to, mutate) {
			d.metrics.UploadFinished(string(to))
			if bytes > 0 {
				d.metrics.BytesUploaded(bytes)
			}
		}
	})
}

// setPercent applies a progress sample. Percent never decreases, never
// exceeds 100, and stops moving once the entry leaves the uploading
// phases, so stale samples racing a terminal transition are dropped.
func (d *Dropzone) setPercent(id int64, percent float64) {
	d.entries.UpdateWhere(
		func(e Entry) bool { return e.ID == id },
		func(e Entry) Entry {
			if e.Status != StatusUploading && e.Status != StatusHeadersReceived {
				return e
			}
			if percent > e.Percent {
				e.Percent = math.Min(percent, 100)
			}
			return e
		},
	)
}

// mergeMeta folds resolved parameter metadata into the entry. The map
// is copied so snapshots handed out earlier keep what they saw.
func (d *Dropzone) mergeMeta(id int64, meta map[string]any) {
	d.entries.UpdateWhere(
		func(e Entry) bool { return e.ID == id },
		func(e Entry) Entry {
			merged := make(map[string]any, len(e.Meta)+len(meta))
			for k, v := range e.Meta {
				merged[k] = v
			}
			for k, v := range meta {
				merged[k] = v
			}
			e.Meta = merged
			return e
		},
	)
}
