package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/replaystats/pkg/config"
	"github.com/Sumatoshi-tech/replaystats/pkg/observability"
	"github.com/Sumatoshi-tech/replaystats/pkg/version"
)

// Standard OTel exporter variables, used when the config leaves them empty.
const (
	envOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOTLPHeaders  = "OTEL_EXPORTER_OTLP_HEADERS"
	envOTLPInsecure = "OTEL_EXPORTER_OTLP_INSECURE"
)

// loadConfig loads the configuration named by --config and applies the
// global logging flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(flagValue(cmd, flagConfig))
	if err != nil {
		return nil, err
	}

	if level := flagValue(cmd, flagLogLevel); level != "" {
		cfg.Logging.Level = level
	}

	if format := flagValue(cmd, flagLogFormat); format != "" {
		cfg.Logging.Format = format
	}

	return cfg, nil
}

// flagValue returns a local or inherited flag value, or "" when the flag
// is not defined on this command tree.
func flagValue(cmd *cobra.Command, name string) string {
	flag := cmd.Flag(name)
	if flag == nil {
		return ""
	}

	return flag.Value.String()
}

// initObservability builds providers for one command invocation. The
// returned Shutdown also closes a file log output.
func initObservability(
	cfg *config.Config, command string, mode observability.AppMode,
) (observability.Providers, error) {
	level, err := observability.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return observability.Providers{}, err
	}

	output := cfg.Logging.Output
	if mode == observability.ModeMCP && output == "stdout" {
		// stdout carries the MCP transport.
		output = "stderr"
	}

	logOut, closeLog, err := observability.OpenLogOutput(output)
	if err != nil {
		return observability.Providers{}, err
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = mode
	obsCfg.Command = command
	obsCfg.RunID = uuid.NewString()
	obsCfg.OTLPEndpoint = firstNonEmpty(cfg.Telemetry.OTLPEndpoint, os.Getenv(envOTLPEndpoint))
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(firstNonEmpty(cfg.Telemetry.OTLPHeaders, os.Getenv(envOTLPHeaders)))
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure || os.Getenv(envOTLPInsecure) == "true"
	obsCfg.MetricsTextfile = cfg.Telemetry.MetricsTextfile
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Logging.Format == config.LogFormatJSON || mode == observability.ModeMCP
	obsCfg.LogOutput = logOut

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return observability.Providers{}, errors.Join(fmt.Errorf("init observability: %w", err), closeLog())
	}

	shutdown := providers.Shutdown
	providers.Shutdown = func(ctx context.Context) error {
		return errors.Join(shutdown(ctx), closeLog())
	}

	return providers, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
