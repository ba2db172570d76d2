package replay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4/v4"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/replaystats/pkg/textutil"
)

const extLZ4 = ".lz4"

// DumpParser reads telemetry that was extracted from a replay ahead of time.
// Files ending in .yaml or .yml are YAML, everything else is JSON. A trailing
// .lz4 extension means the dump is an LZ4 frame.
type DumpParser struct{}

// NewDumpParser creates a DumpParser.
func NewDumpParser() *DumpParser {
	return &DumpParser{}
}

// Parse reads and decodes the dump at path.
func (p *DumpParser) Parse(ctx context.Context, path string) (*Telemetry, error) {
	err := ctx.Err()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dump: %w", err)
	}

	name := path

	if strings.EqualFold(filepath.Ext(name), extLZ4) {
		data, err = decompressLZ4(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		name = strings.TrimSuffix(name, filepath.Ext(name))
	}

	if textutil.IsMPQArchive(data) || textutil.IsBinary(data) {
		return nil, fmt.Errorf("%w: %s", ErrBinaryReplay, path)
	}

	tel, err := Decode(data, FormatFor(name))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return tel, nil
}

// FormatFor picks the dump format from a file name.
func FormatFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode parses telemetry in the given format.
func Decode(data []byte, format string) (*Telemetry, error) {
	var tel Telemetry

	switch format {
	case FormatJSON:
		err := json.Unmarshal(data, &tel)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
	case FormatYAML:
		err := yaml.Unmarshal(data, &tel)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	return &tel, nil
}

func decompressLZ4(data []byte) ([]byte, error) {
	out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}

	return out, nil
}
