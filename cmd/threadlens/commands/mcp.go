package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/threadlens/pkg/mcp"
	"github.com/Sumatoshi-tech/threadlens/pkg/observability"
	"github.com/Sumatoshi-tech/threadlens/pkg/render"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand(globals *Globals) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start an MCP server for AI agent integration",
		Long: `Start a Model Context Protocol server on stdio.

Tools:
  - threadlens_insight: analyze a thread URL and summarize sentiment and bias
  - threadlens_snapshot: summarize a saved snapshot file
  - threadlens_detect: check whether a URL is a thread page`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := newEnv(cmd, globals, observability.ModeMCP)
			if err != nil {
				return err
			}
			defer e.close(cmd.Context())

			srv := mcp.NewServer(mcp.ServerDeps{
				Analyzer: e.runner(render.ThemeLight, ""),
				Logger:   e.providers.Logger,
				Metrics:  e.red,
				Tracer:   e.providers.Tracer,
			})

			return srv.Run(cmd.Context())
		},
	}
}
