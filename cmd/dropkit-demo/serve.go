package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dropkit-dev/dropkit"
	"github.com/dropkit-dev/dropkit/internal/config"
	"github.com/dropkit-dev/dropkit/internal/version"
	"github.com/dropkit-dev/dropkit/pkg/blob"
	"github.com/dropkit-dev/dropkit/pkg/dropzone"
	"github.com/dropkit-dev/dropkit/pkg/render"
	"github.com/dropkit-dev/dropkit/pkg/transport"
)

func serveCmd() *cobra.Command {
	var (
		addr      string
		dev       bool
		uploadURL string
		maxFiles  int
		maxFileMB int64
		s3Bucket  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo server",
		Long: `Run the demo server.

All settings come from DROPKIT_* environment variables; flags given
here win over the environment.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("addr") {
				cfg.Addr = addr
			}
			if flags.Changed("dev") {
				cfg.DevMode = dev
			}
			if flags.Changed("upload-url") {
				cfg.ReceiverURL = uploadURL
			}
			if flags.Changed("max-files") {
				cfg.MaxFiles = maxFiles
			}
			if flags.Changed("max-file-mb") {
				cfg.MaxFileMB = maxFileMB
			}
			if flags.Changed("s3-bucket") {
				cfg.S3Bucket = s3Bucket
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().BoolVar(&dev, "dev", false, "Relax the websocket origin check")
	cmd.Flags().StringVar(&uploadURL, "upload-url", "", "Upload destination (default: the built-in receiver)")
	cmd.Flags().IntVar(&maxFiles, "max-files", 10, "Entry cap per widget, 0 for unlimited")
	cmd.Flags().Int64Var(&maxFileMB, "max-file-mb", 32, "Per-file size ceiling in MiB")
	cmd.Flags().StringVar(&s3Bucket, "s3-bucket", "", "Upload to presigned S3 URLs in this bucket")

	return cmd
}

func runServe(ctx context.Context, cfg config.Config) error {
	logger, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	logger.Info("dropkit-demo starting", "version", version.String(), "addr", cfg.Addr)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	store, err := buildStore(cfg)
	if err != nil {
		return err
	}

	app := dropkit.New(dropkit.Config{
		BasePath: cfg.BasePath,
		DevMode:  cfg.DevMode,
		Logger:   logger,
		Metrics:  registry,
		Intake: dropkit.IntakeConfig{
			MaxRequestBytes: cfg.MaxRequestMB << 20,
		},
		Blob: dropkit.BlobConfig{
			Store:  store,
			MaxAge: cfg.BlobMaxAge,
		},
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.ReceiverURL == "" && !cfg.UseS3() {
		recv, err := newReceiver(logger)
		if err != nil {
			return err
		}
		defer recv.Close()
		app.Router().Post("/demo/receive", recv.ServeHTTP)
	}

	params, err := buildParams(ctx, cfg)
	if err != nil {
		return err
	}
	uploader := buildUploader(cfg, logger)
	zoneMetrics := dropzone.NewMetrics(registry)

	app.Mount(func(s *dropkit.Session) dropkit.Component {
		zcfg := dropzone.DefaultConfig()
		zcfg.MaxFiles = cfg.MaxFiles
		zcfg.MaxSizeBytes = cfg.MaxFileMB << 20
		zcfg.AcceptPrefixes = cfg.Accept
		zcfg.Accept = acceptAttr(cfg.Accept)
		zcfg.BlobPath = app.BlobPath()
		zcfg.Params = params
		zcfg.Uploader = uploader
		zcfg.Metrics = zoneMetrics
		zcfg.OnSubmit = func(entries []dropzone.Entry) {
			for _, e := range entries {
				logger.Info("submitted", "name", e.Name, "size", e.Size, "status", string(e.Status))
			}
		}
		zone := dropzone.New(s, app.Refs(), zcfg)
		return demoPage{zone: zone}
	})

	app.Page("/", render.PageData{
		Title:  "DropKit demo",
		Styles: []string{demoCSS},
	})
	app.Router().Method(http.MethodGet, "/metrics",
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("demo: serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := app.SweepBlobs(ctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		app.Close()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
	return g.Wait()
}

func buildLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
}

func buildStore(cfg config.Config) (blob.Store, error) {
	if cfg.BlobDir != "" {
		store, err := blob.NewDiskStore(cfg.BlobDir, 0)
		if err != nil {
			return nil, fmt.Errorf("demo: blob dir: %w", err)
		}
		return store, nil
	}
	return blob.NewMemStore(cfg.BlobCapMB << 20), nil
}

// buildParams picks the upload destination: presigned S3, an explicit
// receiver URL, or the built-in local receiver.
func buildParams(ctx context.Context, cfg config.Config) (dropzone.ParamsFunc, error) {
	if cfg.UseS3() {
		provider, err := transport.NewS3Provider(ctx, transport.S3Config{
			Bucket:    cfg.S3Bucket,
			KeyPrefix: cfg.S3KeyPrefix,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, err
		}
		return dropzone.ProviderParams(provider), nil
	}
	if cfg.ReceiverURL != "" {
		return dropzone.StaticParams(cfg.ReceiverURL), nil
	}
	return dropzone.StaticParams(localURL(cfg.Addr, "/demo/receive")), nil
}

func buildUploader(cfg config.Config, logger *slog.Logger) *transport.Client {
	opts := []transport.Option{transport.WithLogger(logger)}
	if cfg.UploadRateKB > 0 {
		opts = append(opts, transport.WithRateLimit(cfg.UploadRateKB<<10))
	}
	return transport.NewClient(opts...)
}

// acceptAttr turns validation prefixes into a file-picker accept
// string: a bare type prefix like "image/" becomes the wildcard
// "image/*", full types pass through.
func acceptAttr(prefixes []string) string {
	parts := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		if strings.HasSuffix(p, "/") {
			p += "*"
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, ",")
}

// localURL turns a listen address into a URL the server can dial
// itself on; ":8080" has no host, so loopback fills in.
func localURL(addr, path string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}
	return "http://" + addr + path
}
