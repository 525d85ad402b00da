package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/threadlens/pkg/analysis"
	"github.com/Sumatoshi-tech/threadlens/pkg/observability"
	"github.com/Sumatoshi-tech/threadlens/pkg/persist"
)

// NewRenderCommand creates the render command.
func NewRenderCommand(globals *Globals) *cobra.Command {
	opts := &pageOptions{}

	cmd := &cobra.Command{
		Use:   "render <snapshot>",
		Short: "Render a saved snapshot as an HTML page",
		Long: `Render a snapshot written by analyze --save without contacting the backend.
The page goes through the same two-phase update as a live run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd, globals, observability.ModeCLI)
			if err != nil {
				return err
			}
			defer e.close(cmd.Context())

			snap, err := persist.ReadSnapshot(args[0])
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}

			theme, err := e.theme(opts.theme)
			if err != nil {
				return err
			}

			if opts.title == "" {
				opts.title = snap.Title
			}

			runner := &analysis.Runner{Theme: theme, Title: opts.title, Logger: e.providers.Logger}
			result := runner.Replay(cmd.Context(), snap)

			if !snap.HasBias() {
				e.warn("%v", analysis.ErrBiasNotCaptured)
			}

			if err := writePage(e, result, opts, snap.URL); err != nil {
				return err
			}

			return printReport(e, result, opts)
		},
	}

	opts.register(cmd, false)

	return cmd
}
