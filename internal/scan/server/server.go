// Package server serves the scan form and turns uploads into listing reports.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Its-donkey/hawkeye/internal/scan/analyzer"
	"github.com/Its-donkey/hawkeye/internal/scan/frames"
	"github.com/Its-donkey/hawkeye/internal/scan/linkmeta"
	"github.com/Its-donkey/hawkeye/internal/scan/metrics"
	"github.com/Its-donkey/hawkeye/internal/scan/storage"
	"github.com/Its-donkey/hawkeye/logging"
)

const (
	staticPrefix   = "/static"
	productsPrefix = "/products"

	// DefaultPlatform is used when the form omits a platform.
	DefaultPlatform = "eBay"
	// DefaultConfidence is the slider's starting value.
	DefaultConfidence = 75
)

// Platforms lists the marketplaces offered on the scan form.
var Platforms = []string{"eBay", "Poshmark", "Mercari", "Depop", "Facebook Marketplace"}

// Cropper cuts product stills for a stored video.
type Cropper interface {
	CropAll(ctx context.Context, videoPath string, shots []frames.Shot) []frames.Result
}

// Previewer reads the page behind a pasted video link.
type Previewer interface {
	Fetch(ctx context.Context, rawURL string) (*linkmeta.Preview, error)
}

// Options configures the scan HTTP server.
type Options struct {
	Listen         string
	AssetsDir      string
	ProductsDir    string
	MaxUploadBytes int64
	SettleMS       int
	AnalyzeTimeout time.Duration

	Store     storage.Store
	Analyzer  analyzer.Analyzer
	Cropper   Cropper
	Previewer Previewer
	Metrics   *metrics.Metrics
	Logger    *logging.Logger
}

type server struct {
	assetsDir      string
	productsDir    string
	maxUploadBytes int64
	settleMS       int
	analyzeTimeout time.Duration
	templates      map[string]*template.Template
	store          storage.Store
	analyzer       analyzer.Analyzer
	cropper        Cropper
	previewer      Previewer
	metrics        *metrics.Metrics
	logger         *logging.Logger
}

// New builds the HTTP handler. Store and Analyzer are required.
func New(opts Options) (http.Handler, error) {
	if opts.Store == nil {
		return nil, errors.New("server: store is required")
	}
	if opts.Analyzer == nil {
		return nil, errors.New("server: analyzer is required")
	}
	tmpl, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	srv := &server{
		assetsDir:      opts.AssetsDir,
		productsDir:    opts.ProductsDir,
		maxUploadBytes: opts.MaxUploadBytes,
		settleMS:       opts.SettleMS,
		analyzeTimeout: opts.AnalyzeTimeout,
		templates:      tmpl,
		store:          opts.Store,
		analyzer:       opts.Analyzer,
		cropper:        opts.Cropper,
		previewer:      opts.Previewer,
		metrics:        opts.Metrics,
		logger:         opts.Logger,
	}
	if srv.metrics == nil {
		srv.metrics = metrics.New()
	}
	if srv.logger == nil {
		srv.logger = logging.New(logging.INFO)
	}
	if srv.productsDir != "" {
		if err := os.MkdirAll(srv.productsDir, 0o755); err != nil {
			return nil, fmt.Errorf("create products dir: %w", err)
		}
	}
	return srv.routes(), nil
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(logging.NewHTTPLogger(s.logger).Middleware)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)
	r.Use(traceRequests)

	r.Get("/", s.handleHome)
	r.Post("/scan", s.handleScan)
	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	if s.assetsDir != "" {
		r.Handle(staticPrefix+"/*", http.StripPrefix(staticPrefix, assetHandler(s.assetsDir)))
	}
	if s.productsDir != "" {
		r.Handle(productsPrefix+"/*", http.StripPrefix(productsPrefix, http.FileServer(http.Dir(s.productsDir))))
	}
	return r
}

// assetHandler serves static files with the wasm MIME type browsers require
// for instantiateStreaming.
func assetHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if filepath.Ext(r.URL.Path) == ".wasm" {
			w.Header().Set("Content-Type", "application/wasm")
		}
		files.ServeHTTP(w, r)
	})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, opts Options) error {
	handler, err := New(opts)
	if err != nil {
		return err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.New(logging.INFO)
	}

	httpServer := &http.Server{
		Addr:              opts.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server", "listening", map[string]any{"addr": opts.Listen})
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server", "stopped", nil)
	return nil
}
