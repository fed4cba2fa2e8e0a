package dropzone

import (
	"fmt"
	"strconv"

	"github.com/dropkit-dev/dropkit/pkg/vdom"
)

// Render builds the widget markup from the current entry list. Reading
// the list through the signal subscribes the session's render listener,
// so every applied entry mutation repaints the widget.
func (d *Dropzone) Render() *vdom.VNode {
	entries := d.entries.Get()
	cls := d.config.ClassNames

	rows := vdom.Range(entries, func(e Entry, _ int) *vdom.VNode {
		return d.renderEntry(e)
	})

	return vdom.Div(
		vdom.Class(cls.Root),
		vdom.Data("dropkit-widget", d.id),
		d.renderPrompt(),
		vdom.Div(vdom.Class(cls.List), rows),
		d.renderSubmit(),
	)
}

func (d *Dropzone) renderPrompt() *vdom.VNode {
	if d.config.RenderPrompt != nil {
		return d.config.RenderPrompt()
	}
	cls := d.config.ClassNames
	return vdom.Label(
		vdom.Class(cls.Prompt),
		vdom.Data("dropkit-target", "true"),
		vdom.Input(
			vdom.Type("file"),
			vdom.Class(cls.Input),
			vdom.Data("dropkit-input", "true"),
			vdom.AttrIf(d.config.Accept != "", vdom.Accept(d.config.Accept)),
			vdom.AttrIf(d.config.MaxFiles != 1, vdom.Multiple()),
		),
		vdom.Span(vdom.Text("Drop files here or click to browse")),
	)
}

func (d *Dropzone) renderEntry(e Entry) *vdom.VNode {
	if d.config.RenderEntry != nil {
		return d.config.RenderEntry(e)
	}
	cls := d.config.ClassNames
	id := e.ID

	var controls []*vdom.VNode
	if d.config.CanCancel && e.Status == StatusUploading {
		controls = append(controls, vdom.Button(
			vdom.Class(cls.Cancel),
			vdom.OnClick(func() { d.Cancel(id) }),
			vdom.Text("Cancel"),
		))
	}
	if d.config.CanRemove {
		controls = append(controls, vdom.Button(
			vdom.Class(cls.Remove),
			vdom.OnClick(func() { d.Remove(id) }),
			vdom.Text("Remove"),
		))
	}

	return vdom.Div(
		vdom.Class(cls.Entry),
		vdom.Key(e.ID),
		vdom.Data("entry-id", strconv.FormatInt(e.ID, 10)),
		vdom.Data("entry-status", string(e.Status)),
		vdom.When(e.PreviewURL != "", func() *vdom.VNode {
			return vdom.Img(
				vdom.Class(cls.Preview),
				vdom.Src(e.PreviewURL),
				vdom.Alt(e.Name),
				vdom.Loading("lazy"),
			)
		}),
		vdom.Span(vdom.Class(cls.Name), vdom.Text(e.Name)),
		vdom.Span(vdom.Class(cls.Size), vdom.Text(formatSize(e.Size))),
		vdom.Progress(
			vdom.Class(cls.Progress),
			vdom.Max("100"),
			vdom.Value(strconv.FormatFloat(e.Percent, 'f', -1, 64)),
		),
		vdom.Span(vdom.Class(cls.Status), vdom.Text(statusLabel(e.Status))),
		controls,
	)
}

func (d *Dropzone) renderSubmit() *vdom.VNode {
	enabled := d.SubmitEnabled()
	if d.config.RenderSubmit != nil {
		return d.config.RenderSubmit(enabled)
	}
	return vdom.Button(
		vdom.Class(d.config.ClassNames.Submit),
		vdom.AttrIf(!enabled, vdom.Disabled()),
		vdom.OnClick(func() { d.Submit() }),
		vdom.Text("Submit"),
	)
}

func statusLabel(s Status) string {
	switch s {
	case StatusPreparing:
		return "Preparing"
	case StatusUploading:
		return "Uploading"
	case StatusHeadersReceived:
		return "Finishing"
	case StatusDone:
		return "Done"
	case StatusAborted:
		return "Canceled"
	case StatusErrorFileSize:
		return "File too large"
	case StatusErrorUploadParams:
		return "Upload rejected"
	case StatusErrorUpload:
		return "Upload failed"
	default:
		return string(s)
	}
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
