package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

const (
	attrTraceID = "trace_id"
	attrSpanID  = "span_id"
	attrService = "service"
	attrMode    = "mode"
	attrCommand = "command"
	attrRunID   = "run_id"
)

// ErrUnknownLevel is returned by ParseLevel for unrecognized level names.
var ErrUnknownLevel = errors.New("unknown log level")

// ServiceAttrs are the attributes attached to every log record.
// Empty Command and RunID are omitted.
type ServiceAttrs struct {
	Service string
	Mode    AppMode
	Command string
	RunID   string
}

// TracingHandler is an [slog.Handler] that injects OpenTelemetry trace context
// (trace_id, span_id) and service metadata into every log record.
// Service attributes are pre-attached at construction so they remain at the
// top level even when groups are used.
type TracingHandler struct {
	inner slog.Handler
}

// NewTracingHandler wraps an [slog.Handler], injecting trace context and service metadata.
func NewTracingHandler(inner slog.Handler, svc ServiceAttrs) *TracingHandler {
	attrs := []slog.Attr{
		slog.String(attrService, svc.Service),
		slog.String(attrMode, string(svc.Mode)),
	}

	if svc.Command != "" {
		attrs = append(attrs, slog.String(attrCommand, svc.Command))
	}

	if svc.RunID != "" {
		attrs = append(attrs, slog.String(attrRunID, svc.RunID))
	}

	return &TracingHandler{
		inner: inner.WithAttrs(attrs),
	}
}

// Enabled delegates to the inner handler.
func (th *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return th.inner.Enabled(ctx, level)
}

// Handle adds trace context attributes from the span context, then delegates.
func (th *TracingHandler) Handle(ctx context.Context, record slog.Record) error {
	sc := trace.SpanContextFromContext(ctx)
	if sc.IsValid() {
		record.AddAttrs(
			slog.String(attrTraceID, sc.TraceID().String()),
			slog.String(attrSpanID, sc.SpanID().String()),
		)
	}

	err := th.inner.Handle(ctx, record)
	if err != nil {
		return fmt.Errorf("tracing handler: %w", err)
	}

	return nil
}

// WithAttrs returns a new TracingHandler with additional attributes on the inner handler.
func (th *TracingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TracingHandler{
		inner: th.inner.WithAttrs(attrs),
	}
}

// WithGroup returns a new TracingHandler with a group prefix on the inner handler.
func (th *TracingHandler) WithGroup(name string) slog.Handler {
	return &TracingHandler{
		inner: th.inner.WithGroup(name),
	}
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(strings.TrimSpace(name)))
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrUnknownLevel, name)
	}

	return level, nil
}

// OpenLogOutput resolves a logging.output target: "stderr", "stdout", or a
// file path opened for appending. The returned close function is never nil.
func OpenLogOutput(target string) (io.Writer, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(strings.TrimSpace(target)) {
	case "", "stderr":
		return os.Stderr, noop, nil
	case "stdout":
		return os.Stdout, noop, nil
	}

	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, noop, fmt.Errorf("open log output: %w", err)
	}

	return f, f.Close, nil
}
