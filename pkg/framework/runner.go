// Package framework assembles a replay walk from configuration and writes
// its outputs.
package framework

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/replaystats/pkg/config"
	"github.com/Sumatoshi-tech/replaystats/pkg/fuzz"
	"github.com/Sumatoshi-tech/replaystats/pkg/identity"
	"github.com/Sumatoshi-tech/replaystats/pkg/observability"
	"github.com/Sumatoshi-tech/replaystats/pkg/records"
	"github.com/Sumatoshi-tech/replaystats/pkg/replay"
	"github.com/Sumatoshi-tech/replaystats/pkg/walker"
)

// ErrNilConfig is returned by NewRunner without a configuration.
var ErrNilConfig = errors.New("nil configuration")

const spanParse = "parse"

// scoreCacheSize bounds the memoized name pairs of one resolver.
const scoreCacheSize = 1024

// Result is the outcome of one walk.
type Result struct {
	Records []records.Record
	Report  walker.FailureReport
	Stats   walker.Stats
	Games   int
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger passed to the walker.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithTracer sets the tracer for run and leaf spans.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) {
		r.tracer = t
	}
}

// WithMetrics sets the walk metrics sink.
func WithMetrics(m *observability.RunMetrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithParser replaces the parser selected by configuration.
func WithParser(p replay.Parser) Option {
	return func(r *Runner) {
		r.parser = p
	}
}

// WithIDGenerator sets the game id source for built records.
func WithIDGenerator(gen func() string) Option {
	return func(r *Runner) {
		r.newID = gen
	}
}

// Runner walks replay trees with one fixed parser, resolver and walk policy.
// Every Run builds a fresh walker and aggregator, so a Runner may be reused.
type Runner struct {
	parser   replay.Parser
	resolver *identity.Resolver
	walk     config.WalkConfig

	newID   func() string
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *observability.RunMetrics
}

// NewRunner builds a Runner from cfg.
func NewRunner(cfg *config.Config, opts ...Option) (*Runner, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	runner := &Runner{
		walk:   cfg.Walk,
		logger: slog.New(slog.DiscardHandler),
		tracer: nooptrace.NewTracerProvider().Tracer(""),
	}

	for _, opt := range opts {
		opt(runner)
	}

	if runner.parser == nil {
		parser, err := NewParser(cfg.Parser)
		if err != nil {
			return nil, err
		}

		runner.parser = parser
	}

	resolver, err := NewResolver(cfg.Matching)
	if err != nil {
		return nil, err
	}

	runner.resolver = resolver

	return runner, nil
}

// NewParser returns the replay parser selected by cfg.Kind.
func NewParser(cfg config.ParserConfig) (replay.Parser, error) {
	switch cfg.Kind {
	case config.ParserDump, "":
		return replay.NewDumpParser(), nil
	case config.ParserCommand:
		if cfg.Command == "" {
			return nil, config.ErrMissingCommand
		}

		return replay.NewCommandParser(cfg.Command, cfg.Args, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidParserKind, cfg.Kind)
	}
}

// NewResolver returns the player resolver selected by cfg.
func NewResolver(cfg config.MatchingConfig) (*identity.Resolver, error) {
	scorer, err := fuzz.Lookup(cfg.Scorer)
	if err != nil {
		return nil, err
	}

	return identity.NewResolver(fuzz.NewCachedScorer(scorer, scoreCacheSize), cfg.Strategy)
}

// Run walks root and returns the collected records. On a fatal error the
// result still carries what was gathered before the walk stopped.
func (r *Runner) Run(ctx context.Context, root string) (*Result, error) {
	ctx, span := r.tracer.Start(ctx, spanParse, trace.WithAttributes(
		attribute.String("replay.root", root),
		attribute.String("match.strategy", r.resolver.Strategy()),
	))
	defer span.End()

	var builderOpts []records.BuilderOption
	if r.newID != nil {
		builderOpts = append(builderOpts, records.WithIDGenerator(r.newID))
	}

	agg := records.NewAggregator()

	w := walker.New(r.parser, r.resolver, records.NewBuilder(builderOpts...), agg,
		walker.WithLogger(r.logger),
		walker.WithTracer(r.tracer),
		walker.WithMetrics(r.metrics),
		walker.WithIsolateFailures(r.walk.IsolateFailures),
		walker.WithSkipAuxiliary(r.walk.SkipAuxiliary),
	)

	err := w.Walk(ctx, root)

	result := &Result{
		Records: agg.Records(),
		Report:  w.Report(),
		Stats:   w.Stats(),
		Games:   agg.Games(),
	}

	span.SetAttributes(
		attribute.Int("replay.leaves", result.Stats.Leaves),
		attribute.Int("replay.records", result.Stats.Records),
		attribute.Int("replay.failures", result.Report.Len()),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return result, err
	}

	return result, nil
}
