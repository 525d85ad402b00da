package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/threadlens/pkg/analysis"
	"github.com/Sumatoshi-tech/threadlens/pkg/backend"
	"github.com/Sumatoshi-tech/threadlens/pkg/config"
	"github.com/Sumatoshi-tech/threadlens/pkg/observability"
	"github.com/Sumatoshi-tech/threadlens/pkg/persist"
	"github.com/Sumatoshi-tech/threadlens/pkg/render"
	"github.com/Sumatoshi-tech/threadlens/pkg/report"
	"github.com/Sumatoshi-tech/threadlens/pkg/version"
)

const stateDirName = "threadlens"

// env is the per-invocation runtime shared by the commands.
type env struct {
	globals   *Globals
	cfg       *config.Config
	providers observability.Providers
	red       *observability.REDMetrics
	out       io.Writer
	errOut    io.Writer
}

func newEnv(cmd *cobra.Command, globals *Globals, mode observability.AppMode) (*env, error) {
	cfg, err := config.LoadConfig(globals.ConfigPath)
	if err != nil {
		return nil, err
	}

	obsCfg := cfg.Observability(mode, version.Version)

	switch {
	case globals.Quiet:
		obsCfg.LogLevel = slog.LevelError
	case globals.Verbose:
		obsCfg.LogLevel = slog.LevelDebug
	}

	providers, err := observability.InitWithWriter(obsCfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	red, err := observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return &env{
		globals:   globals,
		cfg:       cfg,
		providers: providers,
		red:       red,
		out:       cmd.OutOrStdout(),
		errOut:    cmd.ErrOrStderr(),
	}, nil
}

func (e *env) close(ctx context.Context) {
	if err := e.providers.Shutdown(context.WithoutCancel(ctx)); err != nil {
		e.providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}

func (e *env) theme(override string) (render.Theme, error) {
	name := e.cfg.Render.Theme
	if override != "" {
		name = override
	}

	return render.ParseTheme(name)
}

func (e *env) fetcher() backend.Fetcher {
	// Validated by config.LoadConfig.
	maxBytes, _ := e.cfg.Backend.MaxResponseBytes()

	client := backend.NewClient(backend.Config{
		BaseURL:          e.cfg.Backend.BaseURL,
		Timeout:          e.cfg.Backend.Timeout,
		MaxResponseBytes: maxBytes,
		Tracer:           e.providers.Tracer,
		Metrics:          e.red,
		Logger:           e.providers.Logger,
	})

	return backend.Fetcher{Client: client, TopN: e.cfg.Bias.TopN}
}

func (e *env) runner(theme render.Theme, title string) *analysis.Runner {
	return &analysis.Runner{
		Fetcher:        e.fetcher(),
		FallbackToFull: e.cfg.Bias.FallbackToFull,
		Theme:          theme,
		Title:          title,
		Tracer:         e.providers.Tracer,
		Logger:         e.providers.Logger,
	}
}

func (e *env) slot() (*persist.URLSlot, error) {
	dir := e.cfg.State.Dir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve state dir: %w", err)
		}

		dir = filepath.Join(base, stateDirName)
	}

	return persist.NewURLSlot(dir), nil
}

func (e *env) reportConfig(noColor bool) report.Config {
	cfg := report.NewConfig()
	cfg.NoColor = cfg.NoColor || noColor || color.NoColor

	return cfg
}

// Status lines go to stderr so stdout stays clean for reports and specs.

func (e *env) success(format string, args ...any) {
	e.status(color.FgGreen, "✓ ", format, args...)
}

func (e *env) warn(format string, args ...any) {
	e.status(color.FgYellow, "! ", format, args...)
}

func (e *env) info(format string, args ...any) {
	e.status(color.FgCyan, "", format, args...)
}

func (e *env) status(attr color.Attribute, prefix, format string, args ...any) {
	if e.globals.Quiet {
		return
	}

	c := color.New(attr)
	c.Fprint(e.errOut, prefix)
	fmt.Fprintf(e.errOut, format+"\n", args...)
}
