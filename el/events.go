// This file re-exports vdom event helpers for the el package.
package el

import "github.com/dropkit-dev/dropkit/pkg/vdom"

func OnClick(handler any) EventHandler {
	return vdom.OnClick(handler)
}
func OnDblClick(handler any) EventHandler {
	return vdom.OnDblClick(handler)
}
func OnMouseEnter(handler any) EventHandler {
	return vdom.OnMouseEnter(handler)
}
func OnMouseLeave(handler any) EventHandler {
	return vdom.OnMouseLeave(handler)
}
func OnKeyDown(handler any) EventHandler {
	return vdom.OnKeyDown(handler)
}
func OnKeyUp(handler any) EventHandler {
	return vdom.OnKeyUp(handler)
}
func OnInput(handler any) EventHandler {
	return vdom.OnInput(handler)
}
func OnChange(handler any) EventHandler {
	return vdom.OnChange(handler)
}
func OnSubmit(handler any) EventHandler {
	return vdom.OnSubmit(handler)
}
func OnFocus(handler any) EventHandler {
	return vdom.OnFocus(handler)
}
func OnBlur(handler any) EventHandler {
	return vdom.OnBlur(handler)
}
func OnDragStart(handler any) EventHandler {
	return vdom.OnDragStart(handler)
}
func OnDragEnd(handler any) EventHandler {
	return vdom.OnDragEnd(handler)
}
func OnDragEnter(handler any) EventHandler {
	return vdom.OnDragEnter(handler)
}
func OnDragOver(handler any) EventHandler {
	return vdom.OnDragOver(handler)
}
func OnDragLeave(handler any) EventHandler {
	return vdom.OnDragLeave(handler)
}
func OnDrop(handler any) EventHandler {
	return vdom.OnDrop(handler)
}
