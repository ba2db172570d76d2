package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Sumatoshi-tech/replaystats/pkg/records"
)

// Header is the fixed CSV column list.
var Header = []string{
	"GameID", "Map", "Duration", "Group", "PlayerName",
	"IsWinner", "Race", "UnitName", "Produced", "Killed",
}

// WriteCSV writes the header and one row per record, "\n" terminated.
func WriteCSV(w io.Writer, recs []records.Record) error {
	cw := csv.NewWriter(w)

	err := cw.Write(Header)
	if err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i := range recs {
		err = cw.Write(Row(&recs[i]))
		if err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}

	cw.Flush()

	err = cw.Error()
	if err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	return nil
}

// Row renders a record in Header order. Booleans read True/False, a
// missing group is empty and whole durations keep a trailing ".0", so the
// output matches files produced by earlier Python tooling.
func Row(r *records.Record) []string {
	return []string{
		r.GameID,
		r.Map,
		formatFloat(r.Duration),
		r.GroupLabel(),
		r.PlayerName,
		formatBool(r.IsWinner),
		r.Race,
		r.UnitName,
		strconv.Itoa(r.Produced),
		strconv.Itoa(r.Killed),
	}
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}

	return s
}

func formatBool(b bool) string {
	if b {
		return "True"
	}

	return "False"
}
