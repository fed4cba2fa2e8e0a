package dropkit

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dropkit-dev/dropkit/pkg/blob"
	"github.com/dropkit-dev/dropkit/pkg/live"
)

// handleIntake receives browser files for one widget. The client posts
// multipart/form-data where each file part may be preceded by a
// "last_modified" text part carrying the file's mtime in epoch millis.
// Payloads go straight into the blob store; only metadata crosses into
// the session event loop.
func (a *App) handleIntake(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session")
	widgetID := chi.URLParam(r, "widget")

	sess, ok := a.manager.Get(sessionID)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "unknown session"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.config.Intake.MaxRequestBytes)
	mr, err := r.MultipartReader()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "expected multipart/form-data"})
		return
	}

	accepted := 0
	files := 0
	var lastModified time.Time

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			a.intakeError(w, err, accepted)
			return
		}

		if part.FileName() == "" {
			if part.FormName() == "last_modified" {
				lastModified = readLastModified(part)
			}
			part.Close()
			continue
		}

		files++
		if files > a.config.Intake.MaxFilesPerRequest {
			part.Close()
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{
				"error":    "too many files",
				"accepted": accepted,
			})
			return
		}

		contentType := part.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		info, err := a.store.Put(part.FileName(), contentType, part)
		part.Close()
		if err != nil {
			a.intakeError(w, err, accepted)
			return
		}

		incoming := live.IncomingFile{
			Name:         info.Name,
			ContentType:  info.ContentType,
			Size:         info.Size,
			LastModified: lastModified,
			BlobID:       info.ID,
		}
		lastModified = time.Time{}

		if err := sess.DeliverFile(widgetID, incoming); err != nil {
			// The payload has no owner now; drop it before reporting.
			a.store.Delete(info.ID)
			switch {
			case errors.Is(err, live.ErrNoSink):
				writeJSON(w, http.StatusNotFound, map[string]any{
					"error":    "unknown widget",
					"accepted": accepted,
				})
			case errors.Is(err, live.ErrSessionClosed):
				writeJSON(w, http.StatusGone, map[string]any{
					"error":    "session closed",
					"accepted": accepted,
				})
			default:
				writeJSON(w, http.StatusInternalServerError, map[string]any{
					"error":    "delivery failed",
					"accepted": accepted,
				})
			}
			return
		}

		a.metrics.IntakeAccepted(info.Size)
		accepted++
	}

	writeJSON(w, http.StatusOK, map[string]any{"accepted": accepted})
}

// intakeError maps a mid-stream failure to a response. Files delivered
// before the failure stay delivered; the count tells the client how far
// the request got.
func (a *App) intakeError(w http.ResponseWriter, err error, accepted int) {
	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &tooBig):
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{
			"error":    "request body too large",
			"accepted": accepted,
		})
	case errors.Is(err, blob.ErrTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{
			"error":    "payload too large",
			"accepted": accepted,
		})
	default:
		a.config.Logger.Warn("intake failed", "err", err)
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":    "malformed upload",
			"accepted": accepted,
		})
	}
}

// readLastModified parses an epoch-millis text part. Zero on garbage;
// intake never fails over a bad timestamp.
func readLastModified(part io.Reader) time.Time {
	raw, err := io.ReadAll(io.LimitReader(part, 32))
	if err != nil {
		return time.Time{}
	}
	millis, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil || millis <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(millis)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
