package clientdist

import _ "embed"

// DropkitJS is the browser runtime bundle.
//
// It is served by the app at "<BasePath>/client.js".
//
//go:embed dropkit.js
var DropkitJS []byte
