package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/replaystats/pkg/config"
	"github.com/Sumatoshi-tech/replaystats/pkg/fuzz"
	"github.com/Sumatoshi-tech/replaystats/pkg/identity"
	"github.com/Sumatoshi-tech/replaystats/pkg/observability"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "replaystats.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	// Test loading with no config file (should use defaults).
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "hsc_replays", cfg.Input.Root)
	assert.Equal(t, ".", cfg.Output.Dir)
	assert.Equal(t, "match_info", cfg.Output.Artifact)
	assert.Equal(t, "match_info.csv", cfg.Output.CSV)
	assert.False(t, cfg.Output.Compress)
	assert.Equal(t, config.ParserDump, cfg.Parser.Kind)
	assert.Equal(t, 2*time.Minute, cfg.Parser.Timeout)
	assert.Equal(t, fuzz.ScorerPartial, cfg.Matching.Scorer)
	assert.Equal(t, identity.StrategyFirstName, cfg.Matching.Strategy)
	assert.False(t, cfg.Walk.IsolateFailures)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, config.LogFormatText, cfg.Logging.Format)
	assert.Empty(t, cfg.Telemetry.OTLPEndpoint)
}

func TestDefaultMatchesLoadedDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	def := config.Default()
	assert.Equal(t, def.Input, cfg.Input)
	assert.Equal(t, def.Output, cfg.Output)
	assert.Equal(t, def.Matching, cfg.Matching)
	assert.Equal(t, def.Logging, cfg.Logging)
	require.NoError(t, def.Validate())
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
input:
  root: /data/hsc
output:
  dir: /tmp/out
  artifact: games
  compress: true
parser:
  kind: command
  command: sc2dump
  args: ["--json", "{path}"]
  timeout: 30s
matching:
  scorer: levenshtein
  strategy: assignment
walk:
  isolate_failures: true
  skip_auxiliary: true
logging:
  level: debug
  format: json
telemetry:
  metrics_textfile: /tmp/replaystats.prom
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/hsc", cfg.Input.Root)
	assert.Equal(t, "/tmp/out", cfg.Output.Dir)
	assert.Equal(t, "games", cfg.Output.Artifact)
	assert.True(t, cfg.Output.Compress)
	assert.Equal(t, config.ParserCommand, cfg.Parser.Kind)
	assert.Equal(t, "sc2dump", cfg.Parser.Command)
	assert.Equal(t, []string{"--json", "{path}"}, cfg.Parser.Args)
	assert.Equal(t, 30*time.Second, cfg.Parser.Timeout)
	assert.Equal(t, fuzz.ScorerLevenshtein, cfg.Matching.Scorer)
	assert.Equal(t, identity.StrategyAssignment, cfg.Matching.Strategy)
	assert.True(t, cfg.Walk.IsolateFailures)
	assert.True(t, cfg.Walk.SkipAuxiliary)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, config.LogFormatJSON, cfg.Logging.Format)
	assert.Equal(t, "/tmp/replaystats.prom", cfg.Telemetry.MetricsTextfile)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("REPLAYSTATS_INPUT_ROOT", "/env/root")
	t.Setenv("REPLAYSTATS_MATCHING_SCORER", "ratio")
	t.Setenv("REPLAYSTATS_WALK_ISOLATE_FAILURES", "true")

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "/env/root", cfg.Input.Root)
	assert.Equal(t, fuzz.ScorerRatio, cfg.Matching.Scorer)
	assert.True(t, cfg.Walk.IsolateFailures)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadConfigRejectsInvalidFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "parser:\n  kind: magic\n")

	_, err := config.LoadConfig(path)
	require.ErrorIs(t, err, config.ErrInvalidParserKind)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   error
	}{
		{"unknown parser kind", func(c *config.Config) { c.Parser.Kind = "binary" }, config.ErrInvalidParserKind},
		{"command without program", func(c *config.Config) { c.Parser.Kind = config.ParserCommand }, config.ErrMissingCommand},
		{"negative timeout", func(c *config.Config) { c.Parser.Timeout = -time.Second }, config.ErrInvalidTimeout},
		{"unknown scorer", func(c *config.Config) { c.Matching.Scorer = "jaro" }, fuzz.ErrUnknownScorer},
		{"unknown strategy", func(c *config.Config) { c.Matching.Strategy = "greedy" }, identity.ErrUnknownStrategy},
		{"unknown level", func(c *config.Config) { c.Logging.Level = "loud" }, observability.ErrUnknownLevel},
		{"unknown format", func(c *config.Config) { c.Logging.Format = "xml" }, config.ErrInvalidLogFormat},
		{"empty artifact", func(c *config.Config) { c.Output.Artifact = "" }, config.ErrEmptyArtifactName},
		{"artifact with path", func(c *config.Config) { c.Output.Artifact = "a/b" }, config.ErrInvalidArtifactName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.Default()
			tt.mutate(&cfg)

			require.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestValidateCommandParser(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Parser.Kind = config.ParserCommand
	cfg.Parser.Command = "sc2dump"

	require.NoError(t, cfg.Validate())
}
