package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/replaystats/pkg/config"
	"github.com/Sumatoshi-tech/replaystats/pkg/framework"
	"github.com/Sumatoshi-tech/replaystats/pkg/observability"
)

// ErrReplayFailures is returned after persisting when isolated replay
// failures occurred.
var ErrReplayFailures = errors.New("some replays failed")

// walkExecutor runs the walk for a fully resolved configuration.
type walkExecutor func(ctx context.Context, cfg *config.Config, providers observability.Providers) (*framework.Result, error)

// ParseCommand holds flags and dependencies for the parse command.
type ParseCommand struct {
	outDir      string
	artifact    string
	csvPath     string
	compress    bool
	parserKind  string
	parserCmd   string
	parserArgs  []string
	timeout     time.Duration
	scorer      string
	strategy    string
	isolate     bool
	skipAux     bool
	silent      bool
	noColor     bool
	cpuprofile  string
	heapprofile string

	walkExec walkExecutor
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	return newParseCommandWithDeps(runWalk)
}

func newParseCommandWithDeps(walkExec walkExecutor) *cobra.Command {
	pc := &ParseCommand{walkExec: walkExec}

	cmd := &cobra.Command{
		Use:   "parse [root]",
		Short: "Walk a replay tree and write the match_info artifact",
		Long: `Walk a replay tree and write one record per unit, player and game.

Folders named like GroupA set the group of everything below them. Folders
named like "Alice vs. Bob" set the expected player pair. Every file below a
player pair is parsed as a replay.`,
		Args: cobra.MaximumNArgs(1),
		RunE: pc.run,
	}

	cmd.Flags().StringVarP(&pc.outDir, "out-dir", "o", "", "Directory for the artifact (default: output.dir)")
	cmd.Flags().StringVar(&pc.artifact, "artifact", "", "Artifact base name (default: output.artifact)")
	cmd.Flags().StringVar(&pc.csvPath, "csv", "", "Also write the CSV export to this path")
	cmd.Flags().BoolVar(&pc.compress, "compress", false, "LZ4-compress the artifact")
	cmd.Flags().StringVar(&pc.parserKind, "parser", "", "Replay parser: dump, command")
	cmd.Flags().StringVar(&pc.parserCmd, "parser-cmd", "", "Program that prints telemetry JSON for a replay")
	cmd.Flags().StringArrayVar(&pc.parserArgs, "parser-arg", nil, "Argument for --parser-cmd, repeatable; {path} is the replay")
	cmd.Flags().DurationVar(&pc.timeout, "parser-timeout", 0, "Per-replay timeout for --parser-cmd")
	cmd.Flags().StringVar(&pc.scorer, "scorer", "", "Name scorer: partial, ratio, levenshtein")
	cmd.Flags().StringVar(&pc.strategy, "strategy", "", "Player matching: first-name, assignment")
	cmd.Flags().BoolVar(&pc.isolate, "isolate-failures", false, "Report failed replays and keep walking")
	cmd.Flags().BoolVar(&pc.skipAux, "skip-auxiliary", false, "Skip dotfiles and documentation files")
	cmd.Flags().BoolVar(&pc.silent, "silent", false, "Disable the run summary")
	cmd.Flags().BoolVar(&pc.noColor, "no-color", false, "Disable colored summary output")
	cmd.Flags().StringVar(&pc.cpuprofile, "cpuprofile", "", "Write CPU profile to file")
	cmd.Flags().StringVar(&pc.heapprofile, "heapprofile", "", "Write heap profile to file")

	return cmd
}

func (pc *ParseCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	pc.applyFlags(cmd, cfg, args)

	err = cfg.Validate()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	stopProfile, err := framework.StartCPUProfile(pc.cpuprofile)
	if err != nil {
		return err
	}
	defer stopProfile()

	providers, err := initObservability(cfg, cmd.Name(), observability.ModeCLI)
	if err != nil {
		return err
	}

	defer func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	providers.Logger.InfoContext(ctx, "parse started", "root", cfg.Input.Root)

	result, err := pc.walkExec(ctx, cfg, providers)
	if err != nil {
		return err
	}

	outputs, err := framework.SaveOutputs(ctx, providers.Tracer, cfg.Output, result.Records, pc.csvPath != "")
	if err != nil {
		return err
	}

	providers.Logger.InfoContext(ctx, "parse finished",
		"records", len(result.Records),
		"failures", result.Report.Len(),
		"artifact", outputs.Artifact,
	)

	if !pc.silent {
		printSummary(cmd.OutOrStdout(), result, outputs, pc.noColor)
	}

	err = framework.WriteHeapProfile(pc.heapprofile)
	if err != nil {
		providers.Logger.WarnContext(ctx, "heap profile failed", "error", err)
	}

	if result.Report.Len() > 0 {
		return fmt.Errorf("%w: %d of %d", ErrReplayFailures, result.Report.Len(), result.Stats.Leaves)
	}

	return nil
}

// applyFlags overrides configuration values with explicitly set flags.
func (pc *ParseCommand) applyFlags(cmd *cobra.Command, cfg *config.Config, args []string) {
	if len(args) > 0 {
		cfg.Input.Root = args[0]
	}

	flags := cmd.Flags()

	setString := func(name, value string, dst *string) {
		if flags.Changed(name) {
			*dst = value
		}
	}

	setString("out-dir", pc.outDir, &cfg.Output.Dir)
	setString("artifact", pc.artifact, &cfg.Output.Artifact)
	setString("csv", pc.csvPath, &cfg.Output.CSV)
	setString("parser", pc.parserKind, &cfg.Parser.Kind)
	setString("parser-cmd", pc.parserCmd, &cfg.Parser.Command)
	setString("scorer", pc.scorer, &cfg.Matching.Scorer)
	setString("strategy", pc.strategy, &cfg.Matching.Strategy)

	if flags.Changed("parser-cmd") && !flags.Changed("parser") {
		cfg.Parser.Kind = config.ParserCommand
	}

	if flags.Changed("parser-arg") {
		cfg.Parser.Args = pc.parserArgs
	}

	if flags.Changed("parser-timeout") {
		cfg.Parser.Timeout = pc.timeout
	}

	if flags.Changed("compress") {
		cfg.Output.Compress = pc.compress
	}

	if flags.Changed("isolate-failures") {
		cfg.Walk.IsolateFailures = pc.isolate
	}

	if flags.Changed("skip-auxiliary") {
		cfg.Walk.SkipAuxiliary = pc.skipAux
	}
}

// runWalk is the production walkExecutor.
func runWalk(ctx context.Context, cfg *config.Config, providers observability.Providers) (*framework.Result, error) {
	runMetrics, err := observability.NewRunMetrics(providers.Meter)
	if err != nil {
		return nil, err
	}

	runner, err := framework.NewRunner(cfg,
		framework.WithLogger(providers.Logger),
		framework.WithTracer(providers.Tracer),
		framework.WithMetrics(runMetrics),
	)
	if err != nil {
		return nil, err
	}

	return runner.Run(ctx, cfg.Input.Root)
}
