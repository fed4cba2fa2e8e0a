// Package vdom provides the virtual node tree DropKit widgets render.
//
// Widgets build trees with variadic element constructors:
//
//	Div(Class("dk-entry"), Key(id),
//	    Span(Text(name)),
//	    Button(OnClick(remove), Text("Remove")),
//	)
//
// The tree lives on the server. pkg/render serializes it to HTML and
// collects event handlers; the live session ships the HTML to the browser
// and routes DOM events back to the collected handlers by hydration ID.
package vdom
