// Package walker traverses a tree of tournament replay folders, deriving the
// group and expected player pair from directory names and turning every
// replay file into unit records.
package walker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/src-d/enry/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/replaystats/pkg/alg/mapx"
	"github.com/Sumatoshi-tech/replaystats/pkg/observability"
	"github.com/Sumatoshi-tech/replaystats/pkg/records"
	"github.com/Sumatoshi-tech/replaystats/pkg/replay"
)

// Sentinel walker errors.
var (
	ErrMissingPlayerNames = errors.New("replay file has no expected player names in its path")
	ErrRoot               = errors.New("walk root")
)

// Skip reasons recorded in metrics and logs.
const (
	skipStat      = "stat"
	skipSpecial   = "special"
	skipAuxiliary = "auxiliary"
)

const spanLeaf = "walk.leaf"

// Resolver binds in-game player ids to expected player names.
type Resolver interface {
	Resolve(players map[int]replay.Player, expected []string) (map[int]string, error)
}

// Stats counts what a walk visited.
type Stats struct {
	Directories int
	Leaves      int
	Failed      int
	Skipped     int
	Records     int
}

// Option configures a Walker.
type Option func(*Walker)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(w *Walker) {
		w.logger = l
	}
}

// WithTracer sets the tracer used for per-leaf spans.
func WithTracer(t trace.Tracer) Option {
	return func(w *Walker) {
		w.tracer = t
	}
}

// WithMetrics sets the run metrics sink.
func WithMetrics(m *observability.RunMetrics) Option {
	return func(w *Walker) {
		w.metrics = m
	}
}

// WithIsolateFailures makes leaf failures non-fatal. Failed leaves are
// collected in the FailureReport and the walk continues.
func WithIsolateFailures(on bool) Option {
	return func(w *Walker) {
		w.isolate = on
	}
}

// WithSkipAuxiliary skips dotfiles and documentation files instead of
// parsing them as replays.
func WithSkipAuxiliary(on bool) Option {
	return func(w *Walker) {
		w.skipAuxiliary = on
	}
}

// Walker drives parse, resolve and build over a replay tree and appends the
// results to an Aggregator. It is single-use per goroutine.
type Walker struct {
	parser   replay.Parser
	resolver Resolver
	builder  *records.Builder
	agg      *records.Aggregator

	logger        *slog.Logger
	tracer        trace.Tracer
	metrics       *observability.RunMetrics
	isolate       bool
	skipAuxiliary bool

	root   string
	report FailureReport
	stats  Stats
}

// New creates a Walker.
func New(
	parser replay.Parser, resolver Resolver, builder *records.Builder, agg *records.Aggregator, opts ...Option,
) *Walker {
	w := &Walker{
		parser:   parser,
		resolver: resolver,
		builder:  builder,
		agg:      agg,
		logger:   slog.New(slog.DiscardHandler),
		tracer:   nooptrace.NewTracerProvider().Tracer(""),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Walk visits root with an empty context. The root's own name is never
// interpreted. It returns the first fatal error. With failure isolation,
// per-leaf errors land in Report instead.
func (w *Walker) Walk(ctx context.Context, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRoot, err)
	}

	w.root = root

	if !info.IsDir() {
		return w.visitLeaf(ctx, root, Context{})
	}

	return w.visitDir(ctx, root, Context{})
}

// Report returns the isolated leaf failures.
func (w *Walker) Report() FailureReport {
	return w.report
}

// Stats returns the visit counters.
func (w *Walker) Stats() Stats {
	return w.stats
}

func (w *Walker) visit(ctx context.Context, path string, node Context) error {
	err := ctx.Err()
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		w.skip(ctx, path, skipStat, "cannot stat node", slog.Any("error", err))

		return nil
	}

	switch {
	case info.IsDir():
		return w.visitDir(ctx, path, node)
	case info.Mode().IsRegular():
		return w.visitLeaf(ctx, path, node)
	default:
		w.skip(ctx, path, skipSpecial, "not a directory or file", slog.String("mode", info.Mode().String()))

		return nil
	}
}

func (w *Walker) visitDir(ctx context.Context, path string, node Context) error {
	w.stats.Directories++
	w.logger.DebugContext(ctx, "in dir", slog.String("path", path), slog.String("name", filepath.Base(path)))

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", path, err)
	}

	for _, entry := range entries {
		err = w.visit(ctx, filepath.Join(path, entry.Name()), node.Derive(entry.Name()))
		if err != nil {
			return err
		}
	}

	return nil
}

func (w *Walker) visitLeaf(ctx context.Context, path string, node Context) error {
	if w.skipAuxiliary && w.isAuxiliary(path) {
		w.skip(ctx, path, skipAuxiliary, "skipping auxiliary file")

		return nil
	}

	if !node.HasPlayers() {
		return fmt.Errorf("%w: %s", ErrMissingPlayerNames, path)
	}

	w.stats.Leaves++

	start := time.Now()

	leafCtx, span := w.tracer.Start(ctx, spanLeaf, trace.WithAttributes(
		attribute.String("replay.path", path),
		attribute.String("replay.group", node.Group),
	))
	defer span.End()

	w.logger.DebugContext(leafCtx, "found file",
		slog.String("path", path),
		slog.String("group", node.Group),
		slog.Any("players", node.PlayerNames),
	)

	n, err := w.process(leafCtx, path, node)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		w.metrics.RecordLeaf(ctx, observability.StatusError, time.Since(start))
		w.stats.Failed++

		// A canceled run is never a leaf failure.
		if ctx.Err() != nil || !w.isolate {
			return fmt.Errorf("%s: %w", path, err)
		}

		w.logger.WarnContext(leafCtx, "replay failed", slog.String("path", path), slog.Any("error", err))
		w.report.add(path, err)

		return nil
	}

	span.SetAttributes(attribute.Int("replay.records", n))
	w.metrics.RecordLeaf(ctx, observability.StatusOK, time.Since(start))
	w.metrics.RecordRecords(ctx, n)
	w.stats.Records += n

	return nil
}

func (w *Walker) process(ctx context.Context, path string, node Context) (int, error) {
	tel, err := w.parser.Parse(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("parse: %w", err)
	}

	names, err := w.resolver.Resolve(tel.Players, node.PlayerNames)
	if err != nil {
		return 0, fmt.Errorf("resolve players: %w", err)
	}

	for _, id := range mapx.SortedKeys(names) {
		w.logger.DebugContext(ctx, "bound player",
			slog.Int("id", id),
			slog.String("in_game", tel.Players[id].Name),
			slog.String("name", names[id]),
		)
	}

	game, err := w.builder.Build(tel, names, node.Group)
	if err != nil {
		return 0, fmt.Errorf("build records: %w", err)
	}

	w.agg.Append(game)

	return len(game), nil
}

func (w *Walker) skip(ctx context.Context, path, reason, msg string, attrs ...any) {
	w.stats.Skipped++
	w.metrics.RecordSkip(ctx, reason)

	args := append([]any{slog.String("path", path)}, attrs...)

	if reason == skipAuxiliary {
		w.logger.DebugContext(ctx, msg, args...)

		return
	}

	w.logger.ErrorContext(ctx, msg, args...)
}

// isAuxiliary matches dotfiles and documentation relative to the walk root,
// so directories above the root never count.
func (w *Walker) isAuxiliary(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		rel = filepath.Base(path)
	}

	rel = filepath.ToSlash(rel)

	return enry.IsDotFile(rel) || enry.IsDocumentation(rel)
}
