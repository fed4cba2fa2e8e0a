package main

import (
	"github.com/dropkit-dev/dropkit/el"
	"github.com/dropkit-dev/dropkit/internal/version"
	"github.com/dropkit-dev/dropkit/pkg/dropzone"
)

// demoPage frames the dropzone with a little chrome so the demo looks
// like an application page rather than a bare widget.
type demoPage struct {
	zone *dropzone.Dropzone
}

func (p demoPage) Render() *el.VNode {
	entries := p.zone.Entries()
	done := 0
	for _, e := range entries {
		if e.Status == dropzone.StatusDone {
			done++
		}
	}

	return el.Div(el.Class("demo"),
		el.Header(el.Class("demo-header"),
			el.H1("DropKit"),
			el.P(el.Class("demo-sub"),
				el.Text("Drop files below; uploads run server-side with live progress."),
			),
		),
		el.Main(
			p.zone.Render(),
			el.P(el.Class("demo-counts"),
				el.Textf("%d files, %d uploaded", len(entries), done),
			),
		),
		el.Footer(el.Class("demo-footer"),
			el.Small(el.Textf("dropkit-demo %s", version.Version)),
		),
	)
}

const demoCSS = `
body { font-family: system-ui, sans-serif; margin: 0; background: #f6f7f9; color: #1d2129; }
.demo { max-width: 640px; margin: 0 auto; padding: 2rem 1rem; }
.demo-header h1 { margin: 0 0 .25rem; }
.demo-sub { margin: 0 0 1.5rem; color: #5b6572; }
.demo-counts, .demo-footer { color: #5b6572; font-size: .9rem; }
.dropkit { background: #fff; border-radius: 8px; padding: 1rem; box-shadow: 0 1px 3px rgba(0,0,0,.08); }
.dropkit-prompt { display: block; border: 2px dashed #c3cad4; border-radius: 6px; padding: 2.5rem 1rem; text-align: center; cursor: pointer; color: #5b6572; }
.dropkit-prompt.dropkit-over { border-color: #2563eb; color: #2563eb; }
.dropkit-input { display: none; }
.dropkit-entry { display: flex; align-items: center; gap: .75rem; padding: .75rem 0; border-bottom: 1px solid #eceff3; }
.dropkit-preview { width: 48px; height: 48px; object-fit: cover; border-radius: 4px; }
.dropkit-name { flex: 1; overflow: hidden; text-overflow: ellipsis; white-space: nowrap; }
.dropkit-size, .dropkit-status { color: #5b6572; font-size: .85rem; }
.dropkit-progress { width: 100px; }
.dropkit-cancel, .dropkit-remove { border: none; background: none; color: #b91c1c; cursor: pointer; }
.dropkit-submit { margin-top: 1rem; padding: .5rem 1.5rem; border: none; border-radius: 6px; background: #2563eb; color: #fff; cursor: pointer; }
.dropkit-submit[disabled] { background: #c3cad4; cursor: default; }
`
