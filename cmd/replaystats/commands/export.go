package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/replaystats/pkg/config"
	"github.com/Sumatoshi-tech/replaystats/pkg/export"
	"github.com/Sumatoshi-tech/replaystats/pkg/framework"
	"github.com/Sumatoshi-tech/replaystats/pkg/persist"
	"github.com/Sumatoshi-tech/replaystats/pkg/records"
)

// stdoutTarget selects standard output for --output.
const stdoutTarget = "-"

// ExportCommand holds flags for the export command.
type ExportCommand struct {
	input      string
	output     string
	format     string
	noValidate bool
	noColor    bool
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	ec := &ExportCommand{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Convert the match_info artifact to CSV, JSON, YAML or a table",
		Long: `Read a match_info artifact, validate it against the embedded schema and
write it in the requested format. CSV goes to output.csv by default; other
formats go to standard output.`,
		Args: cobra.NoArgs,
		RunE: ec.run,
	}

	cmd.Flags().StringVarP(&ec.input, "input", "i", "", "Artifact path (default: output.dir/output.artifact.json[.lz4])")
	cmd.Flags().StringVarP(&ec.output, "output", "o", "", "Output path, - for stdout")
	cmd.Flags().StringVarP(&ec.format, "format", "f", export.FormatCSV, "Output format: csv, json, yaml, table")
	cmd.Flags().BoolVar(&ec.noValidate, "no-validate", false, "Skip schema validation of the artifact")
	cmd.Flags().BoolVar(&ec.noColor, "no-color", false, "Disable colored validation output")

	return cmd
}

func (ec *ExportCommand) run(cmd *cobra.Command, _ []string) error {
	if !export.ValidFormat(ec.format) {
		return fmt.Errorf("%w: %q (want one of %v)", export.ErrUnknownFormat, ec.format, export.Formats())
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	input := ec.input
	if input == "" {
		input = artifactPath(cfg.Output)
	}

	recs, err := export.LoadArtifact(input, !ec.noValidate)
	if err != nil {
		ec.reportValidation(cmd.ErrOrStderr(), err)

		return err
	}

	output := ec.output
	if output == "" {
		output = stdoutTarget
		if ec.format == export.FormatCSV {
			output = framework.CSVPath(cfg.Output)
		}
	}

	if output == stdoutTarget {
		return export.Write(cmd.OutOrStdout(), ec.format, recs)
	}

	return writeExport(output, ec.format, recs)
}

// reportValidation lists schema problems the way the validate tools do.
func (ec *ExportCommand) reportValidation(w io.Writer, err error) {
	var verr *export.ValidationError
	if !errors.As(err, &verr) {
		return
	}

	bad := newColor(ec.noColor, color.FgRed)
	bad.Fprintf(w, "Artifact validation failed (%d problems)\n", len(verr.Problems))

	for _, problem := range verr.Problems {
		bad.Fprintf(w, "  - %s\n", problem)
	}
}

// artifactPath finds the artifact written by parse: the configured codec's
// file first, then the other one.
func artifactPath(cfg config.OutputConfig) string {
	preferred := persist.StatePath(cfg.Dir, cfg.Artifact, export.Codec(cfg.Compress))

	_, err := os.Stat(preferred)
	if err == nil {
		return preferred
	}

	alternate := persist.StatePath(cfg.Dir, cfg.Artifact, export.Codec(!cfg.Compress))

	_, err = os.Stat(alternate)
	if err == nil {
		return alternate
	}

	return preferred
}

func writeExport(path, format string, recs []records.Record) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	defer func() {
		closeErr := f.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	return export.Write(f, format, recs)
}
