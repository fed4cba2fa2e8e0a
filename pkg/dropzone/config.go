package dropzone

import (
	"context"
	"log/slog"

	"github.com/dropkit-dev/dropkit/pkg/preview"
	"github.com/dropkit-dev/dropkit/pkg/transport"
	"github.com/dropkit-dev/dropkit/pkg/vdom"
)

// ParamsFunc resolves the upload parameters for one entry. It runs off
// the event loop and may block on network calls. Leaving Config.Params
// nil disables transport entirely: triggered entries complete as done
// without a request.
type ParamsFunc func(ctx context.Context, e Entry) (transport.Params, error)

// ProviderParams adapts a transport.Provider to a ParamsFunc.
func ProviderParams(p transport.Provider) ParamsFunc {
	return func(ctx context.Context, e Entry) (transport.Params, error) {
		return p.UploadParams(ctx, e.Name, e.ContentType, e.Size)
	}
}

// StaticParams uploads every entry to the same URL.
func StaticParams(url string) ParamsFunc {
	return ProviderParams(transport.StaticProvider(url))
}

// ClassNames are the CSS class hooks on the default markup.
type ClassNames struct {
	Root     string
	Prompt   string
	Input    string
	List     string
	Entry    string
	Preview  string
	Name     string
	Size     string
	Progress string
	Status   string
	Cancel   string
	Remove   string
	Submit   string
}

// Config describes one dropzone instance. Start from DefaultConfig and
// override; a zero Config gets permissive limits but also zero-valued
// feature toggles.
type Config struct {
	// WidgetID routes intake requests to this instance. Defaults to a
	// generated ID.
	WidgetID string

	// MaxFiles caps the entry list; further files are rejected without
	// producing an entry. Zero means unlimited.
	MaxFiles int

	// MaxSizeBytes is the per-file size limit. Oversized files still
	// become entries, in the terminal error_file_size status. Zero
	// means unlimited.
	MaxSizeBytes int64

	// AcceptPrefixes restricts intake by content-type prefix match
	// ("image/", "application/pdf"). Non-matching files are rejected
	// without producing an entry. Empty accepts everything.
	AcceptPrefixes []string

	// Accept is the advisory filter handed to the browser's file
	// picker. It does not validate anything; AcceptPrefixes does.
	Accept string

	// Probers maps preview kinds to their metadata probes. A kind
	// without a prober skips the preview stage. DefaultConfig installs
	// the image prober.
	Probers map[preview.Kind]preview.Prober

	// BlobPath prefixes preview tokens to form the serving URL.
	BlobPath string

	// Params resolves upload parameters. Nil disables transport.
	Params ParamsFunc

	// Uploader performs the HTTP upload. Defaults to a fresh
	// transport client.
	Uploader *transport.Client

	// OnReady runs when an entry has finished preparing, before its
	// upload starts. Returning true defers the upload; the host then
	// calls TriggerUpload when it is ready.
	OnReady func(Entry) bool

	// OnChangeStatus observes every applied status change.
	OnChangeStatus func(Entry, Status)

	// OnCancel observes a cancel request, before the abort happens.
	OnCancel func(Entry)

	// OnRemove observes removal of an entry.
	OnRemove func(Entry)

	// OnSubmit receives the submitted entries.
	OnSubmit func([]Entry)

	// SubmitAll submits every entry regardless of status; when false,
	// only done entries are handed to OnSubmit.
	SubmitAll bool

	// CanCancel shows the cancel control on uploading entries.
	CanCancel bool

	// CanRemove shows the remove control on every entry.
	CanRemove bool

	// NextID overrides the entry ID generator. It must return strictly
	// increasing values. Nil selects a per-instance counter.
	NextID func() int64

	// RenderEntry, RenderSubmit and RenderPrompt replace the default
	// markup for the corresponding piece.
	RenderEntry  func(Entry) *vdom.VNode
	RenderSubmit func(enabled bool) *vdom.VNode
	RenderPrompt func() *vdom.VNode

	// ClassNames override the default CSS hooks.
	ClassNames ClassNames

	// Logger overrides the session logger.
	Logger *slog.Logger

	// Metrics records intake and upload counters. Nil disables them.
	Metrics *Metrics
}

// DefaultConfig returns the stock widget configuration: image previews,
// submit-all, cancel and remove controls enabled, no limits.
func DefaultConfig() Config {
	return Config{
		Probers: map[preview.Kind]preview.Prober{
			preview.KindImage: preview.ImageProber{},
		},
		BlobPath:  "/dropkit/blob/",
		SubmitAll: true,
		CanCancel: true,
		CanRemove: true,
		ClassNames: ClassNames{
			Root:     "dropkit",
			Prompt:   "dropkit-prompt",
			Input:    "dropkit-input",
			List:     "dropkit-list",
			Entry:    "dropkit-entry",
			Preview:  "dropkit-preview",
			Name:     "dropkit-name",
			Size:     "dropkit-size",
			Progress: "dropkit-progress",
			Status:   "dropkit-status",
			Cancel:   "dropkit-cancel",
			Remove:   "dropkit-remove",
			Submit:   "dropkit-submit",
		},
	}
}
