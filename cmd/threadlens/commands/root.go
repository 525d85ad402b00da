// Package commands implements the threadlens CLI commands.
package commands

import (
	"github.com/spf13/cobra"
)

// Globals holds the persistent flags shared by every command.
type Globals struct {
	ConfigPath string
	Verbose    bool
	Quiet      bool
}

// NewRootCommand assembles the CLI.
func NewRootCommand() *cobra.Command {
	globals := &Globals{}

	rootCmd := &cobra.Command{
		Use:   "threadlens",
		Short: "Sentiment and bias charts for Reddit threads",
		Long: `threadlens sends a Reddit thread to the analysis backend, merges the fast
sentiment pass with the slower bias pass, and renders the result as charts.

Commands:
  analyze   Analyze a thread and write an HTML page
  open      Analyze the last detected thread
  detect    Check whether a URL is a thread page
  render    Render a saved snapshot
  spec      Print chart specs of a saved snapshot
  serve     Serve thread pages over HTTP
  mcp       Start an MCP server on stdio`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&globals.ConfigPath, "config", "c", "", "config file (default .threadlens.yaml in . or $HOME)")
	rootCmd.PersistentFlags().BoolVarP(&globals.Verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&globals.Quiet, "quiet", "q", false, "suppress output")

	rootCmd.AddCommand(
		NewAnalyzeCommand(globals),
		NewOpenCommand(globals),
		NewDetectCommand(globals),
		NewRenderCommand(globals),
		NewSpecCommand(globals),
		NewServeCommand(globals),
		NewMCPCommand(globals),
		NewVersionCommand(),
	)

	return rootCmd
}
