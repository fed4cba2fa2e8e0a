// Package dropkit wires the upload widget kit into a single http.Handler:
// the live WebSocket endpoint, the file intake route, blob serving, and
// the embedded browser runtime.
//
// A minimal host looks like:
//
//	app := dropkit.New(dropkit.Config{Logger: logger})
//	app.Mount(func(s *dropkit.Session) dropkit.Component {
//	    return dropzone.New(s, app.Refs(), dropzone.Config{
//	        Params: dropzone.StaticParams("https://uploads.example.com"),
//	    })
//	})
//	app.Page("/", render.PageData{Title: "Uploads"})
//	http.ListenAndServe(":8080", app)
package dropkit

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	clientdist "github.com/dropkit-dev/dropkit/client/dist"
	"github.com/dropkit-dev/dropkit/pkg/assets"
	"github.com/dropkit-dev/dropkit/pkg/blob"
	"github.com/dropkit-dev/dropkit/pkg/live"
	"github.com/dropkit-dev/dropkit/pkg/middleware"
	"github.com/dropkit-dev/dropkit/pkg/render"
)

// Re-exports for hosts that only ever import the root package.
type (
	// Session is one live WebSocket connection and the widget state
	// behind it.
	Session = live.Session

	// Component renders a VNode tree.
	Component = live.Component

	// ComponentFunc adapts a function to the Component interface.
	ComponentFunc = live.ComponentFunc

	// MountFunc builds the root component for a fresh session.
	MountFunc = live.MountFunc
)

// App is the DropKit application host. It implements http.Handler and
// owns the session manager, the blob store, and the HTTP surface.
type App struct {
	config  Config
	router  chi.Router
	manager *live.Manager
	store   blob.Store
	refs    *blob.Refs
	metrics *live.Metrics

	liveHandler http.HandlerFunc
	client      *assets.Asset

	mu    sync.RWMutex
	mount MountFunc
}

// New creates an App from cfg. Call Mount before serving traffic, then
// use the App as an http.Handler.
func New(cfg Config) *App {
	cfg = cfg.withDefaults()

	var liveMetrics *live.Metrics
	if cfg.Metrics != nil {
		liveMetrics = live.NewMetrics(cfg.Metrics)
	}

	a := &App{
		config:  cfg,
		store:   cfg.Blob.Store,
		metrics: liveMetrics,
		client:  assets.New("dropkit.js", "text/javascript; charset=utf-8", clientdist.DropkitJS),
	}
	a.refs = blob.NewRefs(a.store)
	a.manager = live.NewManager(live.ManagerConfig{
		Session:     cfg.Live.Session,
		MaxSessions: cfg.Live.MaxSessions,
		Logger:      cfg.Logger,
		Metrics:     liveMetrics,
	})
	a.liveHandler = a.manager.HandleLive(a.buildRoot, a.originCheck())

	r := chi.NewRouter()
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.RequestLogger(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(middleware.WithRegistry(cfg.Metrics)))
	}
	r.Use(middleware.OpenTelemetry())

	r.Route(cfg.BasePath, func(r chi.Router) {
		r.Get("/live", a.handleLive)
		r.Post("/intake/{session}/{widget}", a.handleIntake)
		r.Handle("/blob/{token}", blob.Handler(a.refs))
		r.Get("/client.js", a.client.ServeHTTP)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	a.router = r

	return a
}

// Mount sets the function that builds each session's root component.
func (a *App) Mount(fn MountFunc) {
	a.mu.Lock()
	a.mount = fn
	a.mu.Unlock()
}

// buildRoot runs the host's mount function for a fresh session.
func (a *App) buildRoot(s *Session) Component {
	a.mu.RLock()
	mount := a.mount
	a.mu.RUnlock()
	return mount(s)
}

func (a *App) handleLive(w http.ResponseWriter, r *http.Request) {
	a.mu.RLock()
	mounted := a.mount != nil
	a.mu.RUnlock()
	if !mounted {
		http.Error(w, "No root component mounted", http.StatusServiceUnavailable)
		return
	}
	a.liveHandler(w, r)
}

// originCheck resolves the websocket origin policy. DevMode accepts
// every origin so local tooling can connect across ports.
func (a *App) originCheck() func(*http.Request) bool {
	if a.config.Live.CheckOrigin != nil {
		return a.config.Live.CheckOrigin
	}
	if a.config.DevMode {
		return func(*http.Request) bool { return true }
	}
	return nil
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Page registers a GET route that serves a full HTML document wired to
// the live endpoint. Zero fields of page get app-level defaults.
func (a *App) Page(pattern string, page render.PageData) {
	if page.ClientScript == "" {
		page.ClientScript = a.ClientScriptPath()
	}
	if page.LiveURL == "" {
		page.LiveURL = a.LiveURL()
	}
	a.router.Get(pattern, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := render.WritePage(w, render.NewRenderer(), page); err != nil {
			a.config.Logger.Error("page render failed", "pattern", pattern, "err", err)
		}
	})
}

// Router exposes the underlying chi router so hosts can add their own
// routes next to the DropKit endpoints.
func (a *App) Router() chi.Router {
	return a.router
}

// Refs returns the blob reference table widgets allocate preview tokens
// from.
func (a *App) Refs() *blob.Refs {
	return a.refs
}

// Store returns the payload store.
func (a *App) Store() blob.Store {
	return a.store
}

// Sessions returns the live session manager.
func (a *App) Sessions() *live.Manager {
	return a.manager
}

// BlobPath returns the URL prefix payload tokens resolve under, for use
// in dropzone configs.
func (a *App) BlobPath() string {
	return a.config.BasePath + "/blob/"
}

// ClientScriptPath returns the URL of the embedded browser runtime.
func (a *App) ClientScriptPath() string {
	return a.config.BasePath + "/client.js"
}

// LiveURL returns the websocket endpoint path.
func (a *App) LiveURL() string {
	return a.config.BasePath + "/live"
}

// SweepBlobs removes orphaned payloads on the configured interval until
// ctx is canceled. Run it alongside the HTTP server:
//
//	g.Go(func() error { return app.SweepBlobs(ctx) })
func (a *App) SweepBlobs(ctx context.Context) error {
	if a.config.Blob.SweepInterval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}
	ticker := time.NewTicker(a.config.Blob.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := a.store.Cleanup(a.config.Blob.MaxAge); n > 0 {
				a.config.Logger.Info("blob sweep", "removed", n, "remaining", a.store.Len())
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close shuts down every live session. In-flight uploads are aborted by
// each session's dispose pass.
func (a *App) Close() {
	a.manager.CloseAll()
}
