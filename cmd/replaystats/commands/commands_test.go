package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/replaystats/pkg/config"
	"github.com/Sumatoshi-tech/replaystats/pkg/export"
	"github.com/Sumatoshi-tech/replaystats/pkg/framework"
	"github.com/Sumatoshi-tech/replaystats/pkg/identity"
	"github.com/Sumatoshi-tech/replaystats/pkg/mcp"
	"github.com/Sumatoshi-tech/replaystats/pkg/observability"
	"github.com/Sumatoshi-tech/replaystats/pkg/records"
	"github.com/Sumatoshi-tech/replaystats/pkg/replay"
	"github.com/Sumatoshi-tech/replaystats/pkg/walker"
)

var errWalk = errors.New("walk exploded")

func execute(t *testing.T, root *cobra.Command, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append(args, "--log-level", "error"))

	err := root.Execute()

	return stdout.String(), stderr.String(), err
}

func sampleRecord(unit string) records.Record {
	group := "A"

	return records.Record{
		GameID:     "g1",
		Map:        "Oceanborn",
		Duration:   10.5,
		Group:      &group,
		PlayerName: "PlayerOne",
		IsWinner:   true,
		Race:       "Terran",
		UnitName:   unit,
		Produced:   5,
		Killed:     2,
	}
}

func writeReplayTree(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	path := filepath.Join(root, "GroupA", "PlayerOne vs. PlayerTwo", "game1.json")

	tel := &replay.Telemetry{
		Players: map[int]replay.Player{
			1: {Name: "PlayerOne", Race: replay.RaceTerran},
			2: {Name: "PlayerTwo", Race: replay.RaceZerg},
		},
		Timeline: []replay.Snapshot{{
			1: {Units: replay.UnitState{{Name: "Marine", Live: 3, Died: 2}}},
			2: {Units: replay.UnitState{{Name: "Zergling", Live: 8, Died: 4}}},
		}},
		Metadata: replay.Metadata{Map: "Oceanborn", GameLength: 600, Winner: 1},
	}

	data, err := json.Marshal(tel)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return root
}

func TestParseCommand_CLIFlagsOverrideConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "replaystats.yaml")
	content := `input:
  root: /from/config
output:
  artifact: games
matching:
  scorer: ratio
walk:
  isolate_failures: true
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	var seen *config.Config

	exec := func(_ context.Context, cfg *config.Config, _ observability.Providers) (*framework.Result, error) {
		seen = cfg

		return &framework.Result{Records: []records.Record{sampleRecord("Marine")}}, nil
	}

	outDir := filepath.Join(dir, "out")
	root := newRootCommand(newParseCommandWithDeps(exec))

	_, _, err := execute(t, root, "parse", "/from/args",
		"--config", cfgPath,
		"--out-dir", outDir,
		"--scorer", "levenshtein",
		"--strategy", "assignment",
		"--parser-cmd", "sc2dump",
		"--parser-arg", "--json",
		"--parser-arg", "{path}",
		"--silent",
	)
	require.NoError(t, err)
	require.NotNil(t, seen)

	assert.Equal(t, "/from/args", seen.Input.Root)
	assert.Equal(t, outDir, seen.Output.Dir)
	assert.Equal(t, "games", seen.Output.Artifact)
	assert.Equal(t, "levenshtein", seen.Matching.Scorer)
	assert.Equal(t, identity.StrategyAssignment, seen.Matching.Strategy)
	assert.Equal(t, config.ParserCommand, seen.Parser.Kind)
	assert.Equal(t, "sc2dump", seen.Parser.Command)
	assert.Equal(t, []string{"--json", "{path}"}, seen.Parser.Args)
	assert.True(t, seen.Walk.IsolateFailures)
	assert.Equal(t, "error", seen.Logging.Level)

	loaded, err := export.LoadArtifact(filepath.Join(outDir, "games.json"), true)
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestParseCommand_InvalidOverride(t *testing.T) {
	t.Parallel()

	called := false
	exec := func(_ context.Context, _ *config.Config, _ observability.Providers) (*framework.Result, error) {
		called = true

		return &framework.Result{}, nil
	}

	root := newRootCommand(newParseCommandWithDeps(exec))

	_, _, err := execute(t, root, "parse", t.TempDir(), "--strategy", "greedy", "--out-dir", t.TempDir())
	require.ErrorIs(t, err, identity.ErrUnknownStrategy)
	assert.False(t, called)
}

func TestParseCommand_WalkErrorSkipsPersist(t *testing.T) {
	t.Parallel()

	exec := func(_ context.Context, _ *config.Config, _ observability.Providers) (*framework.Result, error) {
		return &framework.Result{}, errWalk
	}

	outDir := t.TempDir()
	root := newRootCommand(newParseCommandWithDeps(exec))

	_, _, err := execute(t, root, "parse", t.TempDir(), "--out-dir", outDir)
	require.ErrorIs(t, err, errWalk)

	_, statErr := os.Stat(filepath.Join(outDir, "match_info.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestParseCommand_FailuresPersistThenFail(t *testing.T) {
	t.Parallel()

	exec := func(_ context.Context, _ *config.Config, _ observability.Providers) (*framework.Result, error) {
		return &framework.Result{
			Records: []records.Record{sampleRecord("Marine")},
			Report: walker.FailureReport{Failures: []walker.LeafFailure{
				{Path: "/replays/bad.json", Err: errWalk},
			}},
			Stats: walker.Stats{Leaves: 2, Failed: 1, Records: 1},
			Games: 1,
		}, nil
	}

	outDir := t.TempDir()
	root := newRootCommand(newParseCommandWithDeps(exec))

	stdout, _, err := execute(t, root, "parse", t.TempDir(), "--out-dir", outDir, "--no-color")
	require.ErrorIs(t, err, ErrReplayFailures)

	assert.FileExists(t, filepath.Join(outDir, "match_info.json"))
	assert.Contains(t, stdout, "Parsed 1 replays into 1 records (1 games)")
	assert.Contains(t, stdout, "Failed: 1 replays")
	assert.Contains(t, stdout, "/replays/bad.json: walk exploded")
}

func TestParseCommand_EndToEnd(t *testing.T) {
	t.Parallel()

	tree := writeReplayTree(t)
	outDir := t.TempDir()
	csvPath := filepath.Join(outDir, "units.csv")

	stdout, _, err := execute(t, NewRootCommand(), "parse", tree,
		"--out-dir", outDir,
		"--csv", csvPath,
		"--compress",
		"--no-color",
	)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Parsed 1 replays into 2 records (1 games)")
	assert.Contains(t, stdout, "Artifact: "+filepath.Join(outDir, "match_info.json.lz4"))

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "GameID,Map,Duration,Group,PlayerName,IsWinner,Race,UnitName,Produced,Killed", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], ",10.0,A,PlayerOne,True,Terran,Marine,5,2"), lines[1])
	assert.True(t, strings.HasSuffix(lines[2], ",10.0,A,PlayerTwo,False,Zerg,Zergling,12,4"), lines[2])

	// export reads the compressed artifact back and matches the direct CSV.
	exported := filepath.Join(outDir, "exported.csv")

	_, _, err = execute(t, NewRootCommand(), "export",
		"--input", filepath.Join(outDir, "match_info.json.lz4"),
		"--output", exported,
	)
	require.NoError(t, err)

	again, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}

func TestExportCommand_Formats(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	path, err := export.SaveArtifact(dir, "match_info", []records.Record{sampleRecord("Marine")}, false)
	require.NoError(t, err)

	stdout, _, err := execute(t, NewRootCommand(), "export", "--input", path, "--format", "json", "--output", "-")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"unit_name": "Marine"`)

	stdout, _, err = execute(t, NewRootCommand(), "export", "--input", path, "--format", "table", "--output", "-")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Marine")
	assert.Contains(t, stdout, "Total: 1 records")

	_, _, err = execute(t, NewRootCommand(), "export", "--input", path, "--format", "xml")
	require.ErrorIs(t, err, export.ErrUnknownFormat)
}

func TestExportCommand_InvalidArtifact(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "match_info.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"match_info":[{"game_id":""}]}`), 0o600))

	_, stderr, err := execute(t, NewRootCommand(), "export", "--input", path, "--output", "-", "--no-color")
	require.ErrorIs(t, err, export.ErrInvalidArtifact)
	assert.Contains(t, stderr, "Artifact validation failed")

	_, _, err = execute(t, NewRootCommand(), "export", "--input", path, "--output", "-", "--no-validate")
	require.NoError(t, err)
}

func TestArtifactPath_FallsBackToOtherCodec(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	written, err := export.SaveArtifact(dir, "match_info", nil, true)
	require.NoError(t, err)

	assert.Equal(t, written, artifactPath(config.OutputConfig{Dir: dir, Artifact: "match_info"}))
	assert.Equal(t, filepath.Join(dir, "other.json"), artifactPath(config.OutputConfig{Dir: dir, Artifact: "other"}))
}

func TestMCPCommand_ServesConfiguredServer(t *testing.T) {
	t.Parallel()

	var served *mcp.Server

	cmd := newMCPCommandWithDeps(func(_ context.Context, srv *mcp.Server) error {
		served = srv

		return nil
	})

	root := newRootCommand(cmd)

	_, _, err := execute(t, root, "mcp")
	require.NoError(t, err)
	require.NotNil(t, served)
	assert.Equal(t, []string{mcp.ToolNameParse, mcp.ToolNameClassify}, served.ListToolNames())
}

func TestMCPCommand_DebugFlag(t *testing.T) {
	t.Parallel()

	cmd := NewMCPCommand()
	flag := cmd.Flags().Lookup("debug")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, NewRootCommand(), "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "replaystats "))
}
