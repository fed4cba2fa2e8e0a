// Package el is the UI DSL for DropKit applications.
//
// It re-exports the element constructors, attribute helpers, event
// helpers, and VDOM utilities from
// github.com/dropkit-dev/dropkit/pkg/vdom so page code reads as markup:
//
//	import "github.com/dropkit-dev/dropkit/el"
//
//	el.Div(el.Class("uploads"),
//	    el.H1("My files"),
//	    zone.Render(),
//	)
//
// The reactive APIs stay in pkg/reactive; el only carries presentation.
package el
