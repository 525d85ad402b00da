package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/threadlens/pkg/aggregate"
	"github.com/Sumatoshi-tech/threadlens/pkg/analysis"
	"github.com/Sumatoshi-tech/threadlens/pkg/observability"
	"github.com/Sumatoshi-tech/threadlens/pkg/persist"
	"github.com/Sumatoshi-tech/threadlens/pkg/report"
	"github.com/Sumatoshi-tech/threadlens/pkg/thread"
)

const (
	outputDirPerm = 0o750
	defaultTitle  = "Thread analysis"

	notAThreadGuidance = "This is not a Reddit thread page.\n" +
		"Open a post's comments and pass its URL to `threadlens detect` or `threadlens analyze`."
)

// pageOptions are the output flags shared by analyze, open and render.
type pageOptions struct {
	output   string
	theme    string
	title    string
	save     string
	noReport bool
	noColor  bool
	maxBins  int
}

func (o *pageOptions) register(cmd *cobra.Command, withSave bool) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "HTML output path (default render.output)")
	cmd.Flags().StringVar(&o.theme, "theme", "", "page theme: light or dark (default render.theme)")
	cmd.Flags().StringVar(&o.title, "title", "", "page title")
	cmd.Flags().BoolVar(&o.noReport, "no-report", false, "skip the terminal summary")
	cmd.Flags().BoolVar(&o.noColor, "no-color", false, "disable colors in the terminal summary")
	cmd.Flags().IntVar(&o.maxBins, "max-bins", 0, "bins listed in the terminal summary (0 = default)")

	if withSave {
		cmd.Flags().StringVar(&o.save, "save", "", "save a snapshot (.json or .json.lz4)")
	}
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(globals *Globals) *cobra.Command {
	opts := &pageOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <thread-url>",
		Short: "Analyze a Reddit thread and write an HTML page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, globals, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer e.close(cmd.Context())

			target := thread.Detect(args[0])

			slot, err := e.slot()
			if err != nil {
				return err
			}

			if err := slot.Observe(target); err != nil {
				e.warn("could not update last thread: %v", err)
			}

			return analyzeTarget(cmd.Context(), e, target, opts)
		},
	}

	opts.register(cmd, true)

	return cmd
}

func analyzeTarget(ctx context.Context, e *env, target thread.Target, opts *pageOptions) error {
	threadURL, err := target.Require()
	if err != nil {
		return fmt.Errorf("%w: %q", err, target.URL)
	}

	theme, err := e.theme(opts.theme)
	if err != nil {
		return err
	}

	e.info("Analyzing %s", threadURL)

	result, runErr := e.runner(theme, opts.title).Run(ctx, threadURL)

	if writeErr := writePage(e, result, opts, threadURL); writeErr != nil {
		return errors.Join(runErr, writeErr)
	}

	if result.Snapshot == nil {
		return runErr
	}

	if runErr != nil {
		e.warn("%v", runErr)
	}

	if opts.save != "" {
		if err := persist.WriteSnapshot(opts.save, result.Snapshot); err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}

		e.success("Snapshot saved to %s", opts.save)
	}

	return printReport(e, result, opts)
}

func writePage(e *env, result *analysis.Result, opts *pageOptions, description string) error {
	output := opts.output
	if output == "" {
		output = e.cfg.Render.Output
	}

	if err := os.MkdirAll(filepath.Dir(output), outputDirPerm); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create page: %w", err)
	}

	title := opts.title
	if title == "" {
		title = defaultTitle
	}

	if err := result.Sink.WritePage(f, title, description); err != nil {
		f.Close()

		return fmt.Errorf("write page: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close page: %w", err)
	}

	e.success("Page written to %s", output)

	return nil
}

func printReport(e *env, result *analysis.Result, opts *pageOptions) error {
	if opts.noReport || e.globals.Quiet || result.Snapshot == nil {
		return nil
	}

	snap := result.Snapshot

	return report.Write(e.out, report.Summary{
		Title:    snap.Title,
		URL:      snap.URL,
		Analysis: aggregate.Analyze(snap.Latest()),
		Notices:  snap.Notices,
		MaxBins:  opts.maxBins,
	}, e.reportConfig(opts.noColor))
}

// NewOpenCommand creates the open command.
func NewOpenCommand(globals *Globals) *cobra.Command {
	opts := &pageOptions{}

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Analyze the last detected thread",
		Long: `Analyze the thread stored by the last analyze or detect call. When nothing
valid is stored, print how to pick a thread.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEnv(cmd, globals, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer e.close(cmd.Context())

			slot, err := e.slot()
			if err != nil {
				return err
			}

			target, err := slot.Resolve()
			if err != nil {
				return fmt.Errorf("read last thread: %w", err)
			}

			if !target.IsValidThread {
				fmt.Fprintln(e.out, notAThreadGuidance)

				return nil
			}

			return analyzeTarget(cmd.Context(), e, target, opts)
		},
	}

	opts.register(cmd, true)

	return cmd
}

// NewDetectCommand creates the detect command.
func NewDetectCommand(globals *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <url>",
		Short: "Check whether a URL is a Reddit thread and remember it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, globals, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer e.close(cmd.Context())

			target := thread.Detect(args[0])

			slot, err := e.slot()
			if err != nil {
				return err
			}

			if err := slot.Observe(target); err != nil {
				return fmt.Errorf("update last thread: %w", err)
			}

			if target.IsValidThread {
				fmt.Fprintf(e.out, "thread: %s\n", target.URL)
			} else {
				fmt.Fprintf(e.out, "not a thread: %s\n", target.URL)
			}

			return nil
		},
	}
}
