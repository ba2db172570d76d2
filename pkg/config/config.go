// Package config provides configuration loading and validation for replaystats.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/replaystats/pkg/fuzz"
	"github.com/Sumatoshi-tech/replaystats/pkg/identity"
	"github.com/Sumatoshi-tech/replaystats/pkg/observability"
)

// Sentinel validation errors.
var (
	ErrInvalidParserKind   = errors.New("invalid parser kind")
	ErrMissingCommand      = errors.New("parser command required for kind command")
	ErrInvalidTimeout      = errors.New("parser timeout must not be negative")
	ErrInvalidLogFormat    = errors.New("invalid log format")
	ErrEmptyArtifactName   = errors.New("artifact name must not be empty")
	ErrInvalidArtifactName = errors.New("artifact name must be a plain file name")
)

// Parser kinds.
const (
	ParserDump    = "dump"
	ParserCommand = "command"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

const envPrefix = "REPLAYSTATS"

// Config holds all configuration for replaystats.
type Config struct {
	Input     InputConfig     `mapstructure:"input"`
	Output    OutputConfig    `mapstructure:"output"`
	Parser    ParserConfig    `mapstructure:"parser"`
	Matching  MatchingConfig  `mapstructure:"matching"`
	Walk      WalkConfig      `mapstructure:"walk"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// InputConfig locates the replay tree.
type InputConfig struct {
	Root string `mapstructure:"root"`
}

// OutputConfig controls where the artifact and CSV are written.
type OutputConfig struct {
	Dir      string `mapstructure:"dir"`
	Artifact string `mapstructure:"artifact"`
	// CSV names the file written by export and by parse --csv.
	CSV      string `mapstructure:"csv"`
	Compress bool   `mapstructure:"compress"`
}

// ParserConfig selects how replay files become telemetry.
type ParserConfig struct {
	Kind    string        `mapstructure:"kind"`
	Command string        `mapstructure:"command"`
	Args    []string      `mapstructure:"args"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// MatchingConfig selects the player name scorer and strategy.
type MatchingConfig struct {
	Scorer   string `mapstructure:"scorer"`
	Strategy string `mapstructure:"strategy"`
}

// WalkConfig tunes the tree traversal.
type WalkConfig struct {
	IsolateFailures bool `mapstructure:"isolate_failures"`
	SkipAuxiliary   bool `mapstructure:"skip_auxiliary"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	OTLPEndpoint    string `mapstructure:"otlp_endpoint"`
	OTLPInsecure    bool   `mapstructure:"otlp_insecure"`
	OTLPHeaders     string `mapstructure:"otlp_headers"`
	MetricsTextfile string `mapstructure:"metrics_textfile"`
}

// LoadConfig loads configuration from file and environment variables.
// An empty configPath searches for replaystats.yaml in the usual places
// and falls back to defaults when none exists.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("replaystats")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("$HOME/.replaystats")
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := config.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	def := Default()

	viperCfg.SetDefault("input.root", def.Input.Root)

	viperCfg.SetDefault("output.dir", def.Output.Dir)
	viperCfg.SetDefault("output.artifact", def.Output.Artifact)
	viperCfg.SetDefault("output.csv", def.Output.CSV)
	viperCfg.SetDefault("output.compress", def.Output.Compress)

	viperCfg.SetDefault("parser.kind", def.Parser.Kind)
	viperCfg.SetDefault("parser.command", def.Parser.Command)
	viperCfg.SetDefault("parser.args", def.Parser.Args)
	viperCfg.SetDefault("parser.timeout", def.Parser.Timeout.String())

	viperCfg.SetDefault("matching.scorer", def.Matching.Scorer)
	viperCfg.SetDefault("matching.strategy", def.Matching.Strategy)

	viperCfg.SetDefault("walk.isolate_failures", def.Walk.IsolateFailures)
	viperCfg.SetDefault("walk.skip_auxiliary", def.Walk.SkipAuxiliary)

	viperCfg.SetDefault("logging.level", def.Logging.Level)
	viperCfg.SetDefault("logging.format", def.Logging.Format)
	viperCfg.SetDefault("logging.output", def.Logging.Output)

	viperCfg.SetDefault("telemetry.otlp_endpoint", def.Telemetry.OTLPEndpoint)
	viperCfg.SetDefault("telemetry.otlp_insecure", def.Telemetry.OTLPInsecure)
	viperCfg.SetDefault("telemetry.otlp_headers", def.Telemetry.OTLPHeaders)
	viperCfg.SetDefault("telemetry.metrics_textfile", def.Telemetry.MetricsTextfile)
}

// Validate checks the configuration. The CLI calls it again after applying
// flag overrides.
func (c *Config) Validate() error {
	switch c.Parser.Kind {
	case ParserDump:
	case ParserCommand:
		if strings.TrimSpace(c.Parser.Command) == "" {
			return ErrMissingCommand
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidParserKind, c.Parser.Kind)
	}

	if c.Parser.Timeout < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, c.Parser.Timeout)
	}

	if _, err := fuzz.Lookup(c.Matching.Scorer); err != nil {
		return err
	}

	if !slices.Contains(identity.Strategies(), c.Matching.Strategy) {
		return fmt.Errorf("%w: %q", identity.ErrUnknownStrategy, c.Matching.Strategy)
	}

	if _, err := observability.ParseLevel(c.Logging.Level); err != nil {
		return err
	}

	if c.Logging.Format != LogFormatText && c.Logging.Format != LogFormatJSON {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	if c.Output.Artifact == "" {
		return ErrEmptyArtifactName
	}

	if strings.ContainsAny(c.Output.Artifact, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidArtifactName, c.Output.Artifact)
	}

	return nil
}
