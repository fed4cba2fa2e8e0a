package dropzone

// Status is the lifecycle phase of one entry. Statuses only move
// forward: once an entry leaves a phase it never returns to it, and a
// terminal status never changes again.
type Status string

const (
	// StatusPreparing is the initial status of every accepted entry.
	StatusPreparing Status = "preparing"
	// StatusErrorFileSize marks an entry whose payload exceeds the
	// configured size limit. Terminal.
	StatusErrorFileSize Status = "error_file_size"
	// StatusUploading marks an entry whose upload attempt has started,
	// including the parameter resolution that precedes the request.
	StatusUploading Status = "uploading"
	// StatusErrorUploadParams marks an entry whose upload parameters
	// could not be resolved or carried no URL. Terminal.
	StatusErrorUploadParams Status = "error_upload_params"
	// StatusHeadersReceived marks an entry whose upload got a 2xx/3xx
	// response header while the response body is still outstanding.
	StatusHeadersReceived Status = "headers_received"
	// StatusErrorUpload marks an entry whose upload finished with a
	// status of 400 or above. Terminal.
	StatusErrorUpload Status = "error_upload"
	// StatusAborted marks an entry whose upload was canceled or died
	// without an HTTP status. Terminal.
	StatusAborted Status = "aborted"
	// StatusDone marks a fully completed entry. Terminal.
	StatusDone Status = "done"
)

// transitions enumerates every legal forward edge. Anything absent is a
// regression or a terminal re-entry and gets dropped by the guard.
var transitions = map[Status][]Status{
	StatusPreparing:       {StatusErrorFileSize, StatusUploading, StatusDone},
	StatusUploading:       {StatusErrorUploadParams, StatusHeadersReceived, StatusErrorUpload, StatusAborted, StatusDone},
	StatusHeadersReceived: {StatusDone, StatusErrorUpload, StatusAborted},
}

// canTransition reports whether from may advance to to.
func canTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the status can never change again.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Err reports whether the status is one of the error statuses.
func (s Status) Err() bool {
	switch s {
	case StatusErrorFileSize, StatusErrorUploadParams, StatusErrorUpload:
		return true
	}
	return false
}
