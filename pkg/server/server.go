// Package server serves rendered thread pages over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/singleflight"

	"github.com/Sumatoshi-tech/threadlens/pkg/analysis"
	"github.com/Sumatoshi-tech/threadlens/pkg/cache"
	"github.com/Sumatoshi-tech/threadlens/pkg/observability"
	"github.com/Sumatoshi-tech/threadlens/pkg/persist"
)

const (
	defaultAnalyzeTimeout = 10 * time.Minute
	shutdownTimeout       = 10 * time.Second
	defaultTitle          = "Thread analysis"
)

// Analyzer runs and replays thread analyses. *analysis.Runner implements it.
type Analyzer interface {
	Run(ctx context.Context, threadURL string) (*analysis.Result, error)
	Replay(ctx context.Context, snap *persist.Snapshot) *analysis.Result
}

// Options configures a Server.
type Options struct {
	Analyzer Analyzer
	// Cache is optional; without it every request runs the backend.
	Cache *cache.Snapshots
	// Metrics is mounted on /metrics when set.
	Metrics        http.Handler
	Tracer         trace.Tracer
	RED            *observability.REDMetrics
	Logger         *slog.Logger
	Title          string
	AnalyzeTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// Server is the HTTP front end.
type Server struct {
	opts   Options
	router *mux.Router
	group  singleflight.Group
	logger *slog.Logger
}

// New creates a Server and registers its routes.
func New(opts Options) *Server {
	if opts.Tracer == nil {
		opts.Tracer = nooptrace.NewTracerProvider().Tracer("threadlens")
	}

	if opts.AnalyzeTimeout <= 0 {
		opts.AnalyzeTimeout = defaultAnalyzeTimeout
	}

	if opts.Title == "" {
		opts.Title = defaultTitle
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{opts: opts, router: mux.NewRouter(), logger: observability.Component(logger, "server")}
	s.routes()

	return s
}

func (s *Server) routes() {
	s.router.Use(func(next http.Handler) http.Handler {
		return observability.HTTPMiddleware(s.opts.Tracer, s.opts.RED, next)
	})

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/thread", s.handleThread).Methods(http.MethodGet)
	s.router.HandleFunc("/thread/specs", s.handleSpecs).Methods(http.MethodGet)
	s.router.HandleFunc("/thread/cache", s.handleInvalidate).Methods(http.MethodDelete)
	s.router.HandleFunc("/cache/stats", s.handleCacheStats).Methods(http.MethodGet)

	if s.opts.Metrics != nil {
		s.router.Handle("/metrics", s.opts.Metrics).Methods(http.MethodGet)
	}
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve accepts connections on ln until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadTimeout:       s.opts.ReadTimeout,
		ReadHeaderTimeout: s.opts.ReadTimeout,
		WriteTimeout:      s.opts.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.InfoContext(ctx, "listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}

	return nil
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig

	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}

	return s.Serve(ctx, ln)
}
