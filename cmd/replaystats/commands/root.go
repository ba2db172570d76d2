// Package commands implements CLI command handlers for replaystats.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/replaystats/pkg/version"
)

// Global flag names.
const (
	flagConfig    = "config"
	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"
)

// NewRootCommand creates the replaystats command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(NewParseCommand(), NewExportCommand(), NewMCPCommand(), NewVersionCommand())
}

func newRootCommand(subcommands ...*cobra.Command) *cobra.Command {
	root := &cobra.Command{
		Use:   "replaystats",
		Short: "Per-unit statistics from tournament replay trees",
		Long: `replaystats walks a tree of tournament replay folders and turns every replay
into per-unit production and loss records.

Commands:
  parse     Walk a replay tree and write the match_info artifact
  export    Convert the artifact to CSV, JSON, YAML or a table
  mcp       Serve parse and classify tools over MCP stdio`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringP(flagConfig, "c", "", "Config file (default: replaystats.yaml in ., ./config, $HOME/.replaystats)")
	root.PersistentFlags().String(flagLogLevel, "", "Log level: debug, info, warn, error")
	root.PersistentFlags().String(flagLogFormat, "", "Log format: text, json")

	root.AddCommand(subcommands...)

	return root
}

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
