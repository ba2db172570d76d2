package export

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/replaystats/pkg/persist"
	"github.com/Sumatoshi-tech/replaystats/pkg/records"
)

// Output formats.
const (
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"
)

// ErrUnknownFormat is returned by Write for unsupported formats.
var ErrUnknownFormat = errors.New("unknown export format")

// Formats returns the supported output formats.
func Formats() []string {
	return []string{FormatCSV, FormatJSON, FormatYAML, FormatTable}
}

// Write renders recs to w in the given format.
func Write(w io.Writer, format string, recs []records.Record) error {
	if recs == nil {
		recs = []records.Record{}
	}

	switch format {
	case FormatCSV:
		return WriteCSV(w, recs)
	case FormatJSON:
		return persist.NewJSONCodec().Encode(w, Artifact{MatchInfo: recs})
	case FormatYAML:
		return writeYAML(w, recs)
	case FormatTable:
		return writeTable(w, recs)
	default:
		return fmt.Errorf("%w: %q (want one of %v)", ErrUnknownFormat, format, Formats())
	}
}

// ValidFormat reports whether format is supported by Write.
func ValidFormat(format string) bool {
	return slices.Contains(Formats(), format)
}

func writeYAML(w io.Writer, recs []records.Record) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	err := enc.Encode(Artifact{MatchInfo: recs})
	if err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return fmt.Errorf("yaml close: %w", err)
	}

	return nil
}

func writeTable(w io.Writer, recs []records.Record) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Format.Header = text.FormatDefault
	tbl.Style().Format.Footer = text.FormatDefault

	header := make(table.Row, len(Header))
	for i, h := range Header {
		header[i] = h
	}

	tbl.AppendHeader(header)

	for i := range recs {
		row := Row(&recs[i])

		cells := make(table.Row, len(row))
		for j, cell := range row {
			cells[j] = cell
		}

		tbl.AppendRow(cells)
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %s records, %s games",
		humanize.Comma(int64(len(recs))),
		humanize.Comma(int64(len(records.GameIDs(recs)))),
	)})

	_, err := fmt.Fprintln(w, tbl.Render())
	if err != nil {
		return fmt.Errorf("write table: %w", err)
	}

	return nil
}
