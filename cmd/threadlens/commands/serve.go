package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/threadlens/pkg/cache"
	"github.com/Sumatoshi-tech/threadlens/pkg/observability"
	"github.com/Sumatoshi-tech/threadlens/pkg/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand(globals *Globals) *cobra.Command {
	var (
		addr    string
		noCache bool
		theme   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve thread pages over HTTP",
		Long: `Start an HTTP server that renders threads on demand.

Routes:
  GET    /thread?url=<thread>&format=html|json   rendered page or aggregates
  GET    /thread/specs?url=<thread>              chart specs
  DELETE /thread/cache?url=<thread>              drop a cached thread
  GET    /cache/stats                            cache statistics
  GET    /healthz                                liveness
  GET    /metrics                                Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEnv(cmd, globals, observability.ModeServe)
			if err != nil {
				return err
			}
			defer e.close(cmd.Context())

			return runServe(cmd.Context(), e, addr, theme, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.addr)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the snapshot cache")
	cmd.Flags().StringVar(&theme, "theme", "", "page theme: light or dark (default render.theme)")

	return cmd
}

func runServe(ctx context.Context, e *env, addr, themeName string, noCache bool) (err error) {
	if addr == "" {
		addr = e.cfg.Server.Addr
	}

	theme, err := e.theme(themeName)
	if err != nil {
		return err
	}

	prom, err := observability.NewPrometheus()
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, prom.Provider.Shutdown(context.WithoutCancel(ctx)))
	}()

	// Backend and HTTP metrics both go to the scrape endpoint.
	e.red, err = observability.NewREDMetrics(prom.Meter)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	opts := server.Options{
		Analyzer:     e.runner(theme, ""),
		Metrics:      prom.Handler,
		Tracer:       e.providers.Tracer,
		RED:          e.red,
		Logger:       e.providers.Logger,
		ReadTimeout:  e.cfg.Server.ReadTimeout,
		WriteTimeout: e.cfg.Server.WriteTimeout,
	}

	if !noCache {
		store, openErr := cache.Open(ctx, e.cfg.Cache)
		if openErr != nil {
			return openErr
		}

		defer func() {
			err = errors.Join(err, store.Close())
		}()

		opts.Cache = cache.NewSnapshots(store)
		e.info("Caching snapshots in %s", store.Stats().Backend)
	}

	e.success("Listening on %s", addr)

	return server.New(opts).ListenAndServe(ctx, addr)
}
