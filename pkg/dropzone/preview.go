package dropzone

import (
	"context"

	"github.com/dropkit-dev/dropkit/pkg/preview"
)

// startPreview begins the preview stage for a preparing entry. Kinds
// without a configured prober skip straight to the upload trigger.
// Probe failures are swallowed: the entry proceeds without preview
// metadata and the failure surfaces only in debug logs.
func (d *Dropzone) startPreview(id int64) {
	rt, ok := d.runtime[id]
	if !ok {
		return
	}
	e, ok := d.Entry(id)
	if !ok {
		return
	}

	kind := preview.KindOf(e.ContentType)
	prober := d.config.Probers[kind]
	if prober == nil || rt.blobID == "" {
		d.readyForUpload(id)
		return
	}

	// The token is allocated up front so image entries can keep it as
	// their preview URL. Non-image probes release it when they finish.
	token, err := d.refs.Alloc(rt.blobID)
	if err != nil {
		d.log.Debug("preview ref alloc failed", "entry", id, "err", err)
		d.readyForUpload(id)
		return
	}
	rt.previewToken = token

	ctx, cancel := context.WithCancel(context.Background())
	rt.probeCancel = cancel
	go d.probe(ctx, id, kind, prober, rt.blobID)
}

// probe runs off the loop: open the payload, extract metadata, dispatch
// the result back. A dead session means teardown already released the
// entry's resources, so the dispatch error is ignored.
func (d *Dropzone) probe(ctx context.Context, id int64, kind preview.Kind, prober preview.Prober, blobID string) {
	meta, err := d.probePayload(ctx, prober, blobID)
	_ = d.loop.Dispatch(func() { d.finishPreview(id, kind, meta, err) })
}

func (d *Dropzone) probePayload(ctx context.Context, prober preview.Prober, blobID string) (preview.Meta, error) {
	rc, info, err := d.store.Open(blobID)
	if err != nil {
		return preview.Meta{}, err
	}
	defer rc.Close()
	return prober.Probe(ctx, info.ContentType, rc)
}

// finishPreview applies probe results on the loop and hands the entry
// to the upload trigger. Entries removed while the probe ran have no
// runtime anymore and are dropped; their token was already released.
func (d *Dropzone) finishPreview(id int64, kind preview.Kind, meta preview.Meta, probeErr error) {
	rt, ok := d.runtime[id]
	if !ok {
		return
	}
	rt.probeCancel = nil

	if probeErr != nil {
		d.log.Debug("preview probe failed", "entry", id, "err", probeErr)
		d.releasePreview(rt)
		d.readyForUpload(id)
		return
	}

	// Images keep their token alive for thumbnail serving. Audio and
	// video only needed the payload for metadata, so the token goes
	// back immediately.
	token := rt.previewToken
	if kind != preview.KindImage {
		d.releasePreview(rt)
	}

	d.entries.UpdateWhere(
		func(e Entry) bool { return e.ID == id },
		func(e Entry) Entry {
			switch kind {
			case preview.KindImage:
				e.Width = meta.Width
				e.Height = meta.Height
				e.PreviewURL = d.previewURL(token)
			case preview.KindAudio:
				e.Duration = meta.Duration
			case preview.KindVideo:
				e.Duration = meta.Duration
				e.VideoWidth = meta.VideoWidth
				e.VideoHeight = meta.VideoHeight
			}
			return e
		},
	)

	d.readyForUpload(id)
}

func (d *Dropzone) releasePreview(rt *entryRuntime) {
	if rt.previewToken == "" {
		return
	}
	d.refs.Release(rt.previewToken)
	rt.previewToken = ""
}

func (d *Dropzone) previewURL(token string) string {
	if token == "" {
		return ""
	}
	return d.config.BlobPath + token
}
