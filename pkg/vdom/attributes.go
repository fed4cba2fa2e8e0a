package vdom

import "strings"

// attr builds an Attr.
func attr(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// Identity and styling.

// ID sets the id attribute.
func ID(id string) Attr { return attr("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return attr("class", strings.Join(classes, " ")) }

// Classes merges class values: string, []string, and map[string]bool
// (included when true).
func Classes(classes ...any) Attr {
	var result []string
	for _, c := range classes {
		switch v := c.(type) {
		case string:
			if v != "" {
				result = append(result, v)
			}
		case []string:
			for _, s := range v {
				if s != "" {
					result = append(result, s)
				}
			}
		case map[string]bool:
			for class, include := range v {
				if include && class != "" {
					result = append(result, class)
				}
			}
		}
	}
	return attr("class", strings.Join(result, " "))
}

// StyleAttr sets the style attribute. Named to avoid colliding with the
// Style element.
func StyleAttr(style string) Attr { return attr("style", style) }

// TitleAttr sets the title attribute. Named to avoid colliding with the
// Title element.
func TitleAttr(title string) Attr { return attr("title", title) }

// Data creates a data-* attribute: Data("entry-id", "3") renders
// data-entry-id="3".
func Data(key, value string) Attr { return attr("data-"+key, value) }

// AttrIf emits a when condition holds, and nothing otherwise.
func AttrIf(condition bool, a Attr) Attr {
	if condition {
		return a
	}
	return Attr{}
}

// Accessibility.

func Role(role string) Attr            { return attr("role", role) }
func AriaLabel(label string) Attr      { return attr("aria-label", label) }
func AriaHidden(hidden bool) Attr      { return attr("aria-hidden", hidden) }
func AriaLive(mode string) Attr        { return attr("aria-live", mode) }
func AriaDisabled(disabled bool) Attr  { return attr("aria-disabled", disabled) }
func AriaValueNow(value float64) Attr  { return attr("aria-valuenow", value) }
func AriaValueMin(value float64) Attr  { return attr("aria-valuemin", value) }
func AriaValueMax(value float64) Attr  { return attr("aria-valuemax", value) }
func TabIndex(index int) Attr          { return attr("tabindex", index) }

// Links.

func Href(url string) Attr      { return attr("href", url) }
func Target(target string) Attr { return attr("target", target) }
func Rel(rel string) Attr       { return attr("rel", rel) }

// Download marks a link as a download, optionally with a filename.
func Download(filename ...string) Attr {
	if len(filename) > 0 {
		return attr("download", filename[0])
	}
	return attr("download", true)
}

// Form and input.

func Name(name string) Attr        { return attr("name", name) }
func Value(value string) Attr      { return attr("value", value) }
func Type(t string) Attr           { return attr("type", t) }
func Placeholder(text string) Attr { return attr("placeholder", text) }
func For(id string) Attr           { return attr("for", id) }
func Action(url string) Attr       { return attr("action", url) }
func Method(method string) Attr    { return attr("method", method) }
func Enctype(enctype string) Attr  { return attr("enctype", enctype) }

// Boolean form state.

func Disabled() Attr  { return attr("disabled", true) }
func Readonly() Attr  { return attr("readonly", true) }
func Required() Attr  { return attr("required", true) }
func Checked() Attr   { return attr("checked", true) }
func Multiple() Attr  { return attr("multiple", true) }
func Autofocus() Attr { return attr("autofocus", true) }
func Hidden() Attr    { return attr("hidden", true) }
func Open() Attr      { return attr("open", true) }

// File inputs.

// Accept sets the accept attribute (comma-separated type filters).
func Accept(types string) Attr { return attr("accept", types) }

// Capture sets the capture attribute for camera/microphone input.
func Capture(mode string) Attr { return attr("capture", mode) }

// Numeric ranges (progress, meter, number inputs).

func Min(value string) Attr { return attr("min", value) }
func Max(value string) Attr { return attr("max", value) }

// Media.

func Src(url string) Attr      { return attr("src", url) }
func Alt(text string) Attr     { return attr("alt", text) }
func Width(w int) Attr         { return attr("width", w) }
func Height(h int) Attr        { return attr("height", h) }
func Controls() Attr           { return attr("controls", true) }
func Preload(mode string) Attr { return attr("preload", mode) }
func Poster(url string) Attr   { return attr("poster", url) }
func Loading(mode string) Attr { return attr("loading", mode) }

// Draggable sets draggable="true".
func Draggable() Attr { return attr("draggable", "true") }
