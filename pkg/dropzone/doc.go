// Package dropzone implements the drag-and-drop upload widget.
//
// A Dropzone tracks one entry per accepted file and walks it through a
// monotonic status machine: preparing, then preview probing, then the
// upload trigger, then the transport attempt. Every mutation happens on
// the session event loop; async stages (probes, uploads) re-enter the
// loop through Dispatch. The entry list lives in a copy-on-write
// reactive slice, so each applied mutation re-renders the widget.
package dropzone
