package framework

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/replaystats/pkg/config"
	"github.com/Sumatoshi-tech/replaystats/pkg/export"
	"github.com/Sumatoshi-tech/replaystats/pkg/records"
)

const spanExport = "export"

// Outputs lists the files written by SaveOutputs.
type Outputs struct {
	Artifact string
	CSV      string
}

// SaveOutputs persists recs as the artifact under cfg.Dir and, when withCSV
// is set, writes cfg.CSV next to it. A nil tracer disables the export span.
func SaveOutputs(
	ctx context.Context, tracer trace.Tracer, cfg config.OutputConfig, recs []records.Record, withCSV bool,
) (Outputs, error) {
	var span trace.Span
	if tracer != nil {
		_, span = tracer.Start(ctx, spanExport, trace.WithAttributes(
			attribute.String("output.dir", cfg.Dir),
			attribute.Int("output.records", len(recs)),
		))
		defer span.End()
	}

	out, err := saveOutputs(cfg, recs, withCSV)
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return out, err
}

func saveOutputs(cfg config.OutputConfig, recs []records.Record, withCSV bool) (Outputs, error) {
	var out Outputs

	err := os.MkdirAll(cfg.Dir, 0o750)
	if err != nil {
		return out, fmt.Errorf("create output dir: %w", err)
	}

	out.Artifact, err = export.SaveArtifact(cfg.Dir, cfg.Artifact, recs, cfg.Compress)
	if err != nil {
		return out, err
	}

	if !withCSV {
		return out, nil
	}

	out.CSV = CSVPath(cfg)

	err = WriteCSVFile(out.CSV, recs)
	if err != nil {
		return out, err
	}

	return out, nil
}

// CSVPath resolves cfg.CSV against cfg.Dir unless it is absolute.
func CSVPath(cfg config.OutputConfig) string {
	name := cfg.CSV
	if name == "" {
		name = config.DefaultOutputCSV
	}

	if filepath.IsAbs(name) {
		return name
	}

	return filepath.Join(cfg.Dir, name)
}

// WriteCSVFile writes recs as CSV to path, replacing any existing file.
func WriteCSVFile(path string, recs []records.Record) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}

	defer func() {
		closeErr := f.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("close csv: %w", closeErr)
		}
	}()

	return export.WriteCSV(f, recs)
}
