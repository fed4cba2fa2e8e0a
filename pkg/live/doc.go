// Package live runs widget sessions over WebSocket connections.
//
// Each session owns a root component, a reactive owner scope, and an
// event loop goroutine. Browser events arrive as JSON frames, run their
// handlers on the loop, and any signal written during a handler marks
// the session dirty; the session then re-renders the root and ships the
// fresh HTML to the client as a patch frame. Async work re-enters the
// loop through Session.Dispatch, so all widget state stays confined to
// a single goroutine.
package live
