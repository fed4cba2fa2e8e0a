package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestUploadMultipartShape(t *testing.T) {
	var (
		gotMethod, gotXRW string
		gotField          string
		gotName, gotCT    string
		gotBody           []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotXRW = r.Header.Get("X-Requested-With")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm() error = %v", err)
			return
		}
		gotField = r.FormValue("kind")
		f, fh, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile() error = %v", err)
			return
		}
		defer f.Close()
		gotBody, _ = io.ReadAll(f)
		gotName = fh.Filename
		gotCT = fh.Header.Get("Content-Type")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient()
	res, err := c.Upload(context.Background(),
		Params{URL: srv.URL, Fields: map[string]string{"kind": "avatar"}},
		Payload{Name: "cat.png", ContentType: "image/png", Size: 4, Body: strings.NewReader("meow")},
		Callbacks{})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if res.StatusCode != http.StatusNoContent {
		t.Errorf("StatusCode = %d, want %d", res.StatusCode, http.StatusNoContent)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("method = %q, want POST", gotMethod)
	}
	if gotXRW != "XMLHttpRequest" {
		t.Errorf("X-Requested-With = %q, want XMLHttpRequest", gotXRW)
	}
	if gotField != "avatar" {
		t.Errorf("field kind = %q, want avatar", gotField)
	}
	if gotName != "cat.png" {
		t.Errorf("filename = %q, want cat.png", gotName)
	}
	if gotCT != "image/png" {
		t.Errorf("part content type = %q, want image/png", gotCT)
	}
	if string(gotBody) != "meow" {
		t.Errorf("file body = %q, want meow", gotBody)
	}
}

func TestUploadProgressExactAndMonotonic(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 256<<10)

	var gotContentLength int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentLength = r.ContentLength
		io.Copy(io.Discard, r.Body)
	}))
	defer srv.Close()

	var mu sync.Mutex
	var sents, totals []int64
	cb := Callbacks{Progress: func(sent, total int64) {
		mu.Lock()
		sents = append(sents, sent)
		totals = append(totals, total)
		mu.Unlock()
	}}

	c := NewClient()
	if _, err := c.Upload(context.Background(),
		Params{URL: srv.URL},
		Payload{Name: "big.bin", Size: int64(len(payload)), Body: bytes.NewReader(payload)},
		cb); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(sents) == 0 {
		t.Fatal("no progress callbacks fired")
	}
	total := totals[0]
	if total <= int64(len(payload)) {
		t.Errorf("total = %d, want > payload size %d", total, len(payload))
	}
	if gotContentLength != total {
		t.Errorf("server Content-Length = %d, want %d", gotContentLength, total)
	}
	prev := int64(0)
	for i, s := range sents {
		if s < prev {
			t.Fatalf("sent regressed at call %d: %d < %d", i, s, prev)
		}
		if s > totals[i] {
			t.Fatalf("sent %d exceeds total %d", s, totals[i])
		}
		prev = s
	}
	if sents[len(sents)-1] != total {
		t.Errorf("final sent = %d, want %d", sents[len(sents)-1], total)
	}
}

func TestUploadUnknownSizeReportsNoTotal(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseMultipartForm(1 << 20)
		f, _, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile() error = %v", err)
			return
		}
		defer f.Close()
		gotBody, _ = io.ReadAll(f)
	}))
	defer srv.Close()

	var mu sync.Mutex
	var totals []int64
	c := NewClient()
	_, err := c.Upload(context.Background(),
		Params{URL: srv.URL},
		Payload{Name: "stream.bin", Size: -1, Body: strings.NewReader("streamed")},
		Callbacks{Progress: func(sent, total int64) {
			mu.Lock()
			totals = append(totals, total)
			mu.Unlock()
		}})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if string(gotBody) != "streamed" {
		t.Errorf("file body = %q, want streamed", gotBody)
	}
	mu.Lock()
	defer mu.Unlock()
	for _, total := range totals {
		if total != -1 {
			t.Fatalf("total = %d, want -1 for unknown size", total)
		}
	}
}

func TestUploadHeadersReceived(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	var gotStatus int
	c := NewClient()
	res, err := c.Upload(context.Background(),
		Params{URL: srv.URL},
		Payload{Name: "a", Size: 1, Body: strings.NewReader("a")},
		Callbacks{HeadersReceived: func(status int) { gotStatus = status }})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if gotStatus != http.StatusCreated {
		t.Errorf("HeadersReceived status = %d, want %d", gotStatus, http.StatusCreated)
	}
	if res.StatusCode != http.StatusCreated {
		t.Errorf("StatusCode = %d, want %d", res.StatusCode, http.StatusCreated)
	}
}

func TestUploadErrorStatusIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient()
	res, err := c.Upload(context.Background(),
		Params{URL: srv.URL},
		Payload{Name: "a", Size: 1, Body: strings.NewReader("a")},
		Callbacks{})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if res.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want %d", res.StatusCode, http.StatusInternalServerError)
	}
}

func TestUploadCanceledReturnsNoResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	c := NewClient()
	res, err := c.Upload(ctx,
		Params{URL: srv.URL},
		Payload{Name: "a", Size: 1, Body: strings.NewReader("a")},
		Callbacks{})
	if err == nil {
		t.Fatal("Upload() error = nil, want cancellation error")
	}
	if res != nil {
		t.Fatalf("Result = %+v, want nil", res)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled in chain", err)
	}
}

func TestUploadNoURL(t *testing.T) {
	c := NewClient()
	_, err := c.Upload(context.Background(), Params{}, Payload{Name: "a", Size: 0, Body: strings.NewReader("")}, Callbacks{})
	if !errors.Is(err, ErrNoURL) {
		t.Fatalf("error = %v, want ErrNoURL", err)
	}
}

func TestUploadMethodAndHeaderOverride(t *testing.T) {
	var gotMethod, gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotHeader = r.Header.Get("X-Widget")
		io.Copy(io.Discard, r.Body)
	}))
	defer srv.Close()

	c := NewClient()
	_, err := c.Upload(context.Background(),
		Params{URL: srv.URL, Method: http.MethodPut, Headers: map[string]string{"X-Widget": "dz1"}},
		Payload{Name: "a", Size: 1, Body: strings.NewReader("a")},
		Callbacks{})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if gotMethod != http.MethodPut {
		t.Errorf("method = %q, want PUT", gotMethod)
	}
	if gotHeader != "dz1" {
		t.Errorf("X-Widget = %q, want dz1", gotHeader)
	}
}

func TestUploadRateLimited(t *testing.T) {
	payload := bytes.Repeat([]byte("y"), 64<<10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
	}))
	defer srv.Close()

	c := NewClient(WithRateLimit(8 << 20))
	res, err := c.Upload(context.Background(),
		Params{URL: srv.URL},
		Payload{Name: "big.bin", Size: int64(len(payload)), Body: bytes.NewReader(payload)},
		Callbacks{})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", res.StatusCode)
	}
}

func TestStaticProvider(t *testing.T) {
	p := StaticProvider("https://uploads.example.com/in")
	params, err := p.UploadParams(context.Background(), "a.txt", "text/plain", 3)
	if err != nil {
		t.Fatalf("UploadParams() error = %v", err)
	}
	if params.URL != "https://uploads.example.com/in" {
		t.Errorf("URL = %q", params.URL)
	}
}

func TestFramePayloadContentLength(t *testing.T) {
	prelude, trailer, contentType, err := framePayload(
		map[string]string{"b": "2", "a": "1"},
		Payload{Name: `we"ird.txt`, ContentType: "text/plain"},
	)
	if err != nil {
		t.Fatalf("framePayload() error = %v", err)
	}
	if !strings.HasPrefix(contentType, "multipart/form-data; boundary=") {
		t.Errorf("content type = %q", contentType)
	}
	s := string(prelude)
	if !strings.Contains(s, `name="a"`) || !strings.Contains(s, `name="b"`) {
		t.Errorf("prelude missing fields: %q", s)
	}
	if strings.Index(s, `name="a"`) > strings.Index(s, `name="b"`) {
		t.Error("fields not written in sorted order")
	}
	if !strings.Contains(s, `filename="we\"ird.txt"`) {
		t.Errorf("prelude missing escaped filename: %q", s)
	}
	if !strings.HasSuffix(string(trailer), "--\r\n") {
		t.Errorf("trailer = %q, want closing boundary", trailer)
	}
}
