package live

import "github.com/dropkit-dev/dropkit/pkg/vdom"

// Component renders a VNode tree. The session re-renders it whenever a
// signal read during the previous render changes.
type Component interface {
	Render() *vdom.VNode
}

// ComponentFunc adapts a function to the Component interface.
type ComponentFunc func() *vdom.VNode

// Render calls f.
func (f ComponentFunc) Render() *vdom.VNode {
	return f()
}
