package vdom

import "strings"

// VKind discriminates node types.
type VKind uint8

const (
	KindElement  VKind = iota // <div>, <button>, ...
	KindText                  // escaped text
	KindFragment              // children without a wrapper
	KindRaw                   // unescaped HTML
)

// String returns the kind name.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindRaw:
		return "Raw"
	default:
		return "Unknown"
	}
}

// VNode is one node of a rendered widget tree.
type VNode struct {
	Kind     VKind
	Tag      string   // element tag, KindElement only
	Props    Props    // attributes and event handlers
	Children []*VNode
	Key      string // stable identity among siblings
	Text     string // KindText and KindRaw content
	HID      string // hydration ID, assigned by the renderer
}

// Props holds attributes plus event handlers. Handler entries use the
// "on"-prefixed event name as key and a func value.
type Props map[string]any

// IsInteractive reports whether the node carries at least one event
// handler and therefore needs a hydration ID.
func (v *VNode) IsInteractive() bool {
	if v == nil || v.Kind != KindElement {
		return false
	}
	for key := range v.Props {
		if strings.HasPrefix(key, "on") {
			return true
		}
	}
	return false
}

// Attr is a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty reports whether the attribute is the zero value, produced by
// conditional helpers that decided to emit nothing.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// EventHandler pairs an "on"-prefixed event name with its handler func.
type EventHandler struct {
	Event   string
	Handler any
}

// Component is anything that renders to a VNode.
type Component interface {
	Render() *VNode
}

// FuncComponent adapts a plain render function.
type FuncComponent struct {
	render func() *VNode
}

// Render implements Component.
func (f *FuncComponent) Render() *VNode {
	return f.render()
}

// Func wraps a render function as a Component.
func Func(render func() *VNode) Component {
	return &FuncComponent{render: render}
}
