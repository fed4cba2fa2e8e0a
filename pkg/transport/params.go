package transport

import "context"

// Params describe a single upload attempt.
type Params struct {
	// URL is the upload destination. An empty URL means there is nowhere
	// to send the payload and no request may be started.
	URL string

	// Method defaults to POST when empty.
	Method string

	// Fields are written as plain form fields before the file part.
	// Presigned POST policies (S3 and friends) require this ordering.
	Fields map[string]string

	// Headers extend or override the request headers.
	Headers map[string]string

	// Meta is not sent over the wire; callers merge it into their own
	// bookkeeping for the entry being uploaded.
	Meta map[string]any
}

// Provider resolves upload parameters for a payload about to be sent.
// Implementations may call out to a backend to mint presigned URLs.
type Provider interface {
	UploadParams(ctx context.Context, name, contentType string, size int64) (Params, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, name, contentType string, size int64) (Params, error)

// UploadParams calls f.
func (f ProviderFunc) UploadParams(ctx context.Context, name, contentType string, size int64) (Params, error) {
	return f(ctx, name, contentType, size)
}

// StaticProvider points every upload at the same URL.
func StaticProvider(url string) Provider {
	return ProviderFunc(func(context.Context, string, string, int64) (Params, error) {
		return Params{URL: url}, nil
	})
}
