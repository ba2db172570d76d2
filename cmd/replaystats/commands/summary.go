package commands

import (
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/Sumatoshi-tech/replaystats/pkg/framework"
)

// printSummary writes the end-of-run report for parse.
func printSummary(w io.Writer, result *framework.Result, outputs framework.Outputs, noColor bool) {
	ok := newColor(noColor, color.FgGreen)
	warn := newColor(noColor, color.FgYellow)
	bad := newColor(noColor, color.FgRed)

	ok.Fprintf(w, "Parsed %s replays into %s records (%s games)\n",
		humanize.Comma(int64(result.Stats.Leaves-result.Report.Len())),
		humanize.Comma(int64(len(result.Records))),
		humanize.Comma(int64(result.Games)),
	)

	if result.Stats.Skipped > 0 {
		warn.Fprintf(w, "  Skipped: %s nodes\n", humanize.Comma(int64(result.Stats.Skipped)))
	}

	if result.Report.Len() > 0 {
		bad.Fprintf(w, "  Failed: %s replays\n", humanize.Comma(int64(result.Report.Len())))

		for _, f := range result.Report.Failures {
			bad.Fprintf(w, "  - %s\n", f.Error())
		}
	}

	printOutput(w, "Artifact", outputs.Artifact)
	printOutput(w, "CSV", outputs.CSV)
}

func printOutput(w io.Writer, label, path string) {
	if path == "" {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		_, _ = io.WriteString(w, "  "+label+": "+path+"\n")

		return
	}

	_, _ = io.WriteString(w, "  "+label+": "+path+" ("+humanize.Bytes(uint64(info.Size()))+")\n")
}

func newColor(noColor bool, attr color.Attribute) *color.Color {
	c := color.New(attr)
	if noColor {
		c.DisableColor()
	}

	return c
}
