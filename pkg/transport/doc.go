// Package transport sends file payloads to their upload destination.
//
// A Provider resolves per-upload parameters (URL, form fields, headers),
// and Client performs the multipart POST with progress and header
// callbacks so callers can mirror the attempt's lifecycle.
package transport
