package vdom

// event builds an EventHandler; name is prefixed with "on".
func event(name string, handler any) EventHandler {
	return EventHandler{Event: "on" + name, Handler: handler}
}

// Mouse events.

func OnClick(handler any) EventHandler      { return event("click", handler) }
func OnDblClick(handler any) EventHandler   { return event("dblclick", handler) }
func OnMouseEnter(handler any) EventHandler { return event("mouseenter", handler) }
func OnMouseLeave(handler any) EventHandler { return event("mouseleave", handler) }

// Keyboard events.

func OnKeyDown(handler any) EventHandler { return event("keydown", handler) }
func OnKeyUp(handler any) EventHandler   { return event("keyup", handler) }

// Form events.

func OnInput(handler any) EventHandler  { return event("input", handler) }
func OnChange(handler any) EventHandler { return event("change", handler) }
func OnSubmit(handler any) EventHandler { return event("submit", handler) }
func OnFocus(handler any) EventHandler  { return event("focus", handler) }
func OnBlur(handler any) EventHandler   { return event("blur", handler) }

// Drag and drop events. The client runtime forwards these from the
// dropzone element; drop events on file targets carry the picked files
// through the intake route rather than the event payload.

func OnDragStart(handler any) EventHandler { return event("dragstart", handler) }
func OnDragEnd(handler any) EventHandler   { return event("dragend", handler) }
func OnDragEnter(handler any) EventHandler { return event("dragenter", handler) }
func OnDragOver(handler any) EventHandler  { return event("dragover", handler) }
func OnDragLeave(handler any) EventHandler { return event("dragleave", handler) }
func OnDrop(handler any) EventHandler      { return event("drop", handler) }
