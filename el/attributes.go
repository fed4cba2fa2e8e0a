// This file re-exports vdom attribute helpers for the el package.
package el

import "github.com/dropkit-dev/dropkit/pkg/vdom"

func ID(id string) Attr {
	return vdom.ID(id)
}
func Class(classes ...string) Attr {
	return vdom.Class(classes...)
}
func Classes(classes ...any) Attr {
	return vdom.Classes(classes...)
}
func StyleAttr(style string) Attr {
	return vdom.StyleAttr(style)
}
func TitleAttr(title string) Attr {
	return vdom.TitleAttr(title)
}
func Data(key, value string) Attr {
	return vdom.Data(key, value)
}
func AttrIf(condition bool, a Attr) Attr {
	return vdom.AttrIf(condition, a)
}
func Role(role string) Attr {
	return vdom.Role(role)
}
func AriaLabel(label string) Attr {
	return vdom.AriaLabel(label)
}
func AriaHidden(hidden bool) Attr {
	return vdom.AriaHidden(hidden)
}
func AriaLive(mode string) Attr {
	return vdom.AriaLive(mode)
}
func AriaDisabled(disabled bool) Attr {
	return vdom.AriaDisabled(disabled)
}
func AriaValueNow(value float64) Attr {
	return vdom.AriaValueNow(value)
}
func AriaValueMin(value float64) Attr {
	return vdom.AriaValueMin(value)
}
func AriaValueMax(value float64) Attr {
	return vdom.AriaValueMax(value)
}
func TabIndex(index int) Attr {
	return vdom.TabIndex(index)
}
func Href(url string) Attr {
	return vdom.Href(url)
}
func Target(target string) Attr {
	return vdom.Target(target)
}
func Rel(rel string) Attr {
	return vdom.Rel(rel)
}
func Download(filename ...string) Attr {
	return vdom.Download(filename...)
}
func Name(name string) Attr {
	return vdom.Name(name)
}
func Value(value string) Attr {
	return vdom.Value(value)
}
func Type(t string) Attr {
	return vdom.Type(t)
}
func Placeholder(text string) Attr {
	return vdom.Placeholder(text)
}
func For(id string) Attr {
	return vdom.For(id)
}
func Action(url string) Attr {
	return vdom.Action(url)
}
func Method(method string) Attr {
	return vdom.Method(method)
}
func Enctype(enctype string) Attr {
	return vdom.Enctype(enctype)
}
func Disabled() Attr {
	return vdom.Disabled()
}
func Readonly() Attr {
	return vdom.Readonly()
}
func Required() Attr {
	return vdom.Required()
}
func Checked() Attr {
	return vdom.Checked()
}
func Multiple() Attr {
	return vdom.Multiple()
}
func Autofocus() Attr {
	return vdom.Autofocus()
}
func Hidden() Attr {
	return vdom.Hidden()
}
func Open() Attr {
	return vdom.Open()
}
func Accept(types string) Attr {
	return vdom.Accept(types)
}
func Capture(mode string) Attr {
	return vdom.Capture(mode)
}
func Min(value string) Attr {
	return vdom.Min(value)
}
func Max(value string) Attr {
	return vdom.Max(value)
}
func Src(url string) Attr {
	return vdom.Src(url)
}
func Alt(text string) Attr {
	return vdom.Alt(text)
}
func Width(w int) Attr {
	return vdom.Width(w)
}
func Height(h int) Attr {
	return vdom.Height(h)
}
func Controls() Attr {
	return vdom.Controls()
}
func Preload(mode string) Attr {
	return vdom.Preload(mode)
}
func Poster(url string) Attr {
	return vdom.Poster(url)
}
func Loading(mode string) Attr {
	return vdom.Loading(mode)
}
func Draggable() Attr {
	return vdom.Draggable()
}
