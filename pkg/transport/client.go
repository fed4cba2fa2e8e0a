package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strings"

	"github.com/juju/ratelimit"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "dropkit/transport"

// ErrNoURL reports that upload params carried no destination URL.
var ErrNoURL = errors.New("transport: no upload url")

// Payload is the file content handed to Upload. Size may be -1 when the
// length is not known up front; the request is then sent chunked and
// progress totals are reported as -1.
type Payload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Callbacks mirror the lifecycle of one upload attempt. Either field may
// be nil. Both are invoked from the uploading goroutine.
type Callbacks struct {
	// Progress reports request body bytes handed to the HTTP transport.
	// sent is non-decreasing; total is the exact body length, or -1 when
	// the payload size is unknown.
	Progress func(sent, total int64)

	// HeadersReceived fires once response headers arrive, before the
	// response body is drained.
	HeadersReceived func(status int)
}

// Result is returned once the response body has been consumed.
type Result struct {
	StatusCode int
}

// Client uploads payloads as multipart/form-data requests.
type Client struct {
	http   *http.Client
	bucket *ratelimit.Bucket
	tracer trace.Tracer
	log    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRateLimit caps outbound body bytes per second.
func WithRateLimit(bytesPerSecond int64) Option {
	return func(c *Client) {
		if bytesPerSecond > 0 {
			c.bucket = ratelimit.NewBucketWithRate(float64(bytesPerSecond), bytesPerSecond)
		}
	}
}

// WithTracerProvider sets the tracer provider for upload spans.
// By default the global OpenTelemetry provider is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithLogger sets the logger for upload diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient builds an upload client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:   &http.Client{},
		tracer: otel.Tracer(tracerName),
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload sends the payload to params.URL as a multipart request: form
// fields first, then the file under the "file" field. It returns once
// the response body is drained. A nil Result means the request never
// completed: canceled, refused, or cut off mid-response. HeadersReceived
// may have fired by then.
func (c *Client) Upload(ctx context.Context, params Params, payload Payload, cb Callbacks) (*Result, error) {
	if params.URL == "" {
		return nil, ErrNoURL
	}
	method := params.Method
	if method == "" {
		method = http.MethodPost
	}

	prelude, trailer, contentType, err := framePayload(params.Fields, payload)
	if err != nil {
		return nil, err
	}

	total := int64(-1)
	if payload.Size >= 0 {
		total = int64(len(prelude)) + payload.Size + int64(len(trailer))
	}

	var body io.Reader = io.MultiReader(
		bytes.NewReader(prelude),
		payload.Body,
		bytes.NewReader(trailer),
	)
	if c.bucket != nil {
		body = ratelimit.Reader(body, c.bucket)
	}
	pr := &progressReader{r: body, total: total, fn: cb.Progress}

	ctx, span := c.tracer.Start(ctx, "dropkit.upload",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("dropkit.upload_url", params.URL),
			attribute.String("dropkit.file_name", payload.Name),
			attribute.Int64("dropkit.file_size", payload.Size),
		),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, method, params.URL, pr)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("transport: build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	for k, v := range params.Headers {
		req.Header.Set(k, v)
	}
	if total >= 0 {
		req.ContentLength = total
	}

	log := c.log.With("url", params.URL, "file", payload.Name)
	log.Debug("upload started", "size", payload.Size, "method", method)

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Debug("upload failed before a status arrived", "err", err)
		return nil, fmt.Errorf("transport: upload %s: %w", params.URL, err)
	}
	defer resp.Body.Close()

	if cb.HeadersReceived != nil {
		cb.HeadersReceived(resp.StatusCode)
	}
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		// The request died between headers and body, so it never
		// completed; callers treat this like an abort.
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Debug("response body read failed", "status", resp.StatusCode, "err", err)
		return nil, fmt.Errorf("transport: read response: %w", err)
	}

	span.SetAttributes(attribute.Int("dropkit.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, resp.Status)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	log.Debug("upload finished", "status", resp.StatusCode, "sent", pr.sent)

	return &Result{StatusCode: resp.StatusCode}, nil
}

// framePayload renders the multipart framing around the file content:
// every form field, then the header of the file part, then the closing
// boundary. The file bytes themselves are streamed between the two
// halves, so the exact content length is known without buffering them.
func framePayload(fields map[string]string, payload Payload) (prelude, trailer []byte, contentType string, err error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := mw.WriteField(name, fields[name]); err != nil {
			return nil, nil, "", fmt.Errorf("transport: write field %q: %w", name, err)
		}
	}

	partCT := payload.ContentType
	if partCT == "" {
		partCT = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(payload.Name)))
	header.Set("Content-Type", partCT)
	if _, err := mw.CreatePart(header); err != nil {
		return nil, nil, "", fmt.Errorf("transport: create file part: %w", err)
	}

	mark := buf.Len()
	if err := mw.Close(); err != nil {
		return nil, nil, "", fmt.Errorf("transport: close multipart: %w", err)
	}

	raw := buf.Bytes()
	return raw[:mark], raw[mark:], mw.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

type progressReader struct {
	r     io.Reader
	sent  int64
	total int64
	fn    func(sent, total int64)
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	if n > 0 {
		pr.sent += int64(n)
		if pr.fn != nil {
			pr.fn(pr.sent, pr.total)
		}
	}
	return n, err
}
