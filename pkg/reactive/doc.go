// Package reactive provides the signal primitives that drive DropKit
// widget state.
//
// A Signal holds a value; reading it inside a tracked scope (a widget
// render) subscribes the current listener, and writing it marks every
// subscriber dirty. Widgets keep their renderable state in signals so
// that the session loop knows exactly when a re-render is due.
//
// The package is deliberately small: signals, copy-on-write slices,
// ownership scopes for cleanup, and batching. There is no effect or
// derived-value machinery; DropKit widgets orchestrate their async work
// explicitly through the session dispatch queue.
package reactive
