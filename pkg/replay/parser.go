package replay

import (
	"context"
	"errors"
)

// Sentinel parser errors.
var (
	ErrBinaryReplay      = errors.New("binary replay content requires an external parser")
	ErrUnsupportedFormat = errors.New("unsupported telemetry format")
	ErrParserCommand     = errors.New("parser command failed")
	ErrDecode            = errors.New("decode telemetry")
)

// Telemetry dump formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Parser extracts telemetry from a single replay file.
type Parser interface {
	Parse(ctx context.Context, path string) (*Telemetry, error)
}

// ParserFunc adapts a plain function to Parser.
type ParserFunc func(ctx context.Context, path string) (*Telemetry, error)

// Parse calls f.
func (f ParserFunc) Parse(ctx context.Context, path string) (*Telemetry, error) {
	return f(ctx, path)
}
