package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/replaystats/pkg/mcp"
	"github.com/Sumatoshi-tech/replaystats/pkg/observability"
)

// serveExecutor runs a configured MCP server until ctx ends.
type serveExecutor func(ctx context.Context, srv *mcp.Server) error

// NewMCPCommand creates the MCP server command.
func NewMCPCommand() *cobra.Command {
	return newMCPCommandWithDeps(func(ctx context.Context, srv *mcp.Server) error {
		return srv.Run(ctx)
	})
}

func newMCPCommandWithDeps(serve serveExecutor) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The MCP server exposes replaystats as tools that AI agents can discover and
invoke:
  - replays_parse: walk a replay tree and return per-unit records
  - units_classify: map raw unit names to their canonical unit`,
		Args: cobra.NoArgs,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cobraCmd)
			if err != nil {
				return err
			}

			if debug {
				cfg.Logging.Level = slog.LevelDebug.String()
			}

			providers, err := initObservability(cfg, cobraCmd.Name(), observability.ModeMCP)
			if err != nil {
				return err
			}

			defer func() {
				shutdownErr := providers.Shutdown(context.Background())
				if shutdownErr != nil {
					providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
				}
			}()

			red, err := observability.NewREDMetrics(providers.Meter)
			if err != nil {
				return err
			}

			runMetrics, err := observability.NewRunMetrics(providers.Meter)
			if err != nil {
				return err
			}

			srv := mcp.NewServer(mcp.ServerDeps{
				Config:     cfg,
				Logger:     providers.Logger,
				Metrics:    red,
				RunMetrics: runMetrics,
				Tracer:     providers.Tracer,
			})

			return serve(cobraCmd.Context(), srv)
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")

	return cmd
}
