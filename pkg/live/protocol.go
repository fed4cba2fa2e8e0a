package live

import (
	"encoding/json"
	"fmt"
)

// Frame type tags. Clients send "event", "ping" and "pong"; the server
// sends "mount", "patch", "ping" and "pong".
const (
	frameEvent = "event"
	framePing  = "ping"
	framePong  = "pong"
	frameMount = "mount"
	framePatch = "patch"
)

// clientFrame is one JSON message from the browser.
type clientFrame struct {
	T    string            `json:"t"`
	HID  string            `json:"hid,omitempty"`
	Name string            `json:"name,omitempty"`
	Data map[string]string `json:"data,omitempty"`
}

// serverFrame is one JSON message to the browser. Mount and patch frames
// carry the rendered HTML for the element identified by Target. The mount
// frame additionally carries the session ID, which the client echoes in
// intake URLs.
type serverFrame struct {
	T       string `json:"t"`
	Target  string `json:"target,omitempty"`
	HTML    string `json:"html,omitempty"`
	Session string `json:"session,omitempty"`
}

func decodeClientFrame(data []byte) (*clientFrame, error) {
	var f clientFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("live: decode frame: %w", err)
	}
	if f.T == "" {
		return nil, fmt.Errorf("live: frame missing type tag")
	}
	return &f, nil
}

// Event is a browser event routed to a handler by HID and event name.
type Event struct {
	// HID identifies the element, as assigned at render time.
	HID string

	// Name is the DOM event name without the "on" prefix, e.g. "click".
	Name string

	// Data carries event detail fields sent by the client.
	Data map[string]string
}

// handlerKey builds the lookup key into the session handler table.
func (e *Event) handlerKey() string {
	return e.HID + "_on" + e.Name
}
