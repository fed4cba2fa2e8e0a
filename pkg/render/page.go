package render

import (
	"fmt"
	"io"

	"github.com/dropkit-dev/dropkit/pkg/vdom"
)

// PageData describes a complete HTML document around a widget mount
// point. The body is rendered server-side once; after the websocket
// connects, the live session keeps the mount target patched.
type PageData struct {
	// Title is the document title.
	Title string

	// Lang is the html lang attribute. Defaults to "en".
	Lang string

	// MountID is the element ID the live session patches.
	// Defaults to "dk-root".
	MountID string

	// Body is the initial content of the mount element. May be nil;
	// the first live frame fills it in.
	Body *vdom.VNode

	// ClientScript is the path of the DropKit client runtime.
	// Defaults to "/dropkit/client.js".
	ClientScript string

	// LiveURL is the websocket endpoint the client connects to.
	// Defaults to "/dropkit/live".
	LiveURL string

	// StyleSheets are external stylesheet paths.
	StyleSheets []string

	// Styles are inline CSS blocks.
	Styles []string
}

// WritePage renders the full document to w.
func WritePage(w io.Writer, r *Renderer, page PageData) error {
	if page.Lang == "" {
		page.Lang = "en"
	}
	if page.MountID == "" {
		page.MountID = "dk-root"
	}
	if page.ClientScript == "" {
		page.ClientScript = "/dropkit/client.js"
	}
	if page.LiveURL == "" {
		page.LiveURL = "/dropkit/live"
	}

	if _, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html lang=%q><head>", page.Lang); err != nil {
		return err
	}
	if _, err := io.WriteString(w, `<meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`); err != nil {
		return err
	}
	if page.Title != "" {
		if _, err := fmt.Fprintf(w, "<title>%s</title>", escapeHTML(page.Title)); err != nil {
			return err
		}
	}
	for _, href := range page.StyleSheets {
		if _, err := fmt.Fprintf(w, `<link rel="stylesheet" href="%s">`, escapeAttr(href)); err != nil {
			return err
		}
	}
	for _, css := range page.Styles {
		if _, err := fmt.Fprintf(w, "<style>%s</style>", css); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "</head><body>"); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, `<div id="%s" data-dropkit-live="%s">`, escapeAttr(page.MountID), escapeAttr(page.LiveURL)); err != nil {
		return err
	}
	if page.Body != nil {
		if err := r.RenderToWriter(w, page.Body); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "</div>"); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, `<script src="%s" defer></script>`, escapeAttr(page.ClientScript)); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</body></html>")
	return err
}
