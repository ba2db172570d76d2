package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/replaystats/pkg/framework"
	"github.com/Sumatoshi-tech/replaystats/pkg/records"
	"github.com/Sumatoshi-tech/replaystats/pkg/units"
	"github.com/Sumatoshi-tech/replaystats/pkg/walker"
)

// Tool name constants.
const (
	ToolNameParse    = "replays_parse"
	ToolNameClassify = "units_classify"
)

// Input size limits.
const (
	// MaxClassifyNames is the maximum number of unit names per classify call.
	MaxClassifyNames = 1000
)

// Sentinel errors for tool input validation.
var (
	// ErrEmptyRoot indicates the root parameter is empty.
	ErrEmptyRoot = errors.New("root parameter is required and must not be empty")
	// ErrRootNotAbsolute indicates the root is not an absolute path.
	ErrRootNotAbsolute = errors.New("root must be an absolute path")
	// ErrRootNotFound indicates the root path does not exist.
	ErrRootNotFound = errors.New("root path does not exist")
	// ErrEmptyNames indicates the names parameter is empty.
	ErrEmptyNames = errors.New("names parameter is required and must not be empty")
	// ErrTooManyNames indicates the classify input exceeds the size limit.
	ErrTooManyNames = errors.New("too many unit names")
)

// Input types (auto-generate JSON schemas via struct tags).

// ParseInput is the input schema for the replays_parse tool.
type ParseInput struct {
	IsolateFailures bool   `json:"isolate_failures,omitempty" jsonschema:"keep walking when a replay fails and report it"`
	Root            string `json:"root"                       jsonschema:"absolute path to the replay tree"`
	Scorer          string `json:"scorer,omitempty"           jsonschema:"name scorer: partial ratio or levenshtein"`
	SkipAuxiliary   bool   `json:"skip_auxiliary,omitempty"   jsonschema:"skip dotfiles and documentation files"`
	Strategy        string `json:"strategy,omitempty"         jsonschema:"player matching strategy: first-name or assignment"`
}

// ClassifyInput is the input schema for the units_classify tool.
type ClassifyInput struct {
	Names []string `json:"names" jsonschema:"raw unit type names"`
}

// ParseResult is the data returned by replays_parse.
type ParseResult struct {
	Records  []records.Record `json:"records"`
	Games    int              `json:"games"`
	Leaves   int              `json:"leaves"`
	Skipped  int              `json:"skipped"`
	Failures []FailureInfo    `json:"failures"`
}

// FailureInfo is one isolated replay failure.
type FailureInfo struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// UnitInfo is the classification of one unit name.
type UnitInfo struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Canonical string `json:"canonical,omitempty"`
}

// Output type (used as structured output for generic AddTool).

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// Result helpers.

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// handleParse walks input.Root with a fresh runner built from the server's
// base configuration and the call's overrides.
func (s *Server) handleParse(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input ParseInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	err := validateRoot(input.Root)
	if err != nil {
		return errorResult(err)
	}

	cfg := s.cfg
	cfg.Walk.IsolateFailures = cfg.Walk.IsolateFailures || input.IsolateFailures
	cfg.Walk.SkipAuxiliary = cfg.Walk.SkipAuxiliary || input.SkipAuxiliary

	if input.Scorer != "" {
		cfg.Matching.Scorer = input.Scorer
	}

	if input.Strategy != "" {
		cfg.Matching.Strategy = input.Strategy
	}

	runner, err := framework.NewRunner(&cfg,
		framework.WithLogger(s.logger),
		framework.WithMetrics(s.runMetrics),
	)
	if err != nil {
		return errorResult(err)
	}

	result, err := runner.Run(ctx, input.Root)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(newParseResult(result))
}

func newParseResult(result *framework.Result) ParseResult {
	out := ParseResult{
		Records:  result.Records,
		Games:    result.Games,
		Leaves:   result.Stats.Leaves,
		Skipped:  result.Stats.Skipped,
		Failures: make([]FailureInfo, 0, result.Report.Len()),
	}

	if out.Records == nil {
		out.Records = []records.Record{}
	}

	for _, f := range result.Report.Failures {
		out.Failures = append(out.Failures, failureInfo(f))
	}

	return out
}

func failureInfo(f walker.LeafFailure) FailureInfo {
	return FailureInfo{Path: f.Path, Error: f.Err.Error()}
}

// handleClassify reports the canonical form of every input unit name.
func handleClassify(
	_ context.Context, _ *mcpsdk.CallToolRequest, input ClassifyInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if len(input.Names) == 0 {
		return errorResult(ErrEmptyNames)
	}

	if len(input.Names) > MaxClassifyNames {
		return errorResult(fmt.Errorf("%w: %d (max %d)", ErrTooManyNames, len(input.Names), MaxClassifyNames))
	}

	infos := make([]UnitInfo, 0, len(input.Names))
	for _, name := range input.Names {
		c := units.Classify(name)
		infos = append(infos, UnitInfo{Name: name, Kind: c.Kind.String(), Canonical: c.Name})
	}

	return jsonResult(infos)
}

// validateRoot checks the replays_parse root constraints.
func validateRoot(root string) error {
	if root == "" {
		return ErrEmptyRoot
	}

	if !filepath.IsAbs(root) {
		return fmt.Errorf("%w: %s", ErrRootNotAbsolute, root)
	}

	_, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrRootNotFound, root)
	}

	return nil
}
