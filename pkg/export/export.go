// Package export renders projections as JSON, CSV or text tables.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/kilianp07/crewplan/core/calendar"
	"github.com/kilianp07/crewplan/core/model"
)

// Formats accepted by Write.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
)

// WriteJSON writes v to w as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteMilestonesCSV writes one row per task completion.
func WriteMilestonesCSV(w io.Writer, recs []model.Projection) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"plan", "base_crews", "span", "task", "completion"}); err != nil {
		return err
	}
	for _, r := range recs {
		for _, s := range r.Spans {
			for _, m := range s.Milestones {
				row := []string{r.Plan, strconv.Itoa(r.BaseCrews), s.Name, m.Task, calendar.Format(m.Completion)}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCurveCSV writes the production curve. With display set the values are
// offset by the totals of earlier spans.
func WriteCurveCSV(w io.Writer, recs []model.Projection, display bool) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"plan", "base_crews", "span", "date", "cumulative"}); err != nil {
		return err
	}
	for _, r := range recs {
		for _, c := range r.Curve {
			v := c.Cumulative
			if display {
				v = c.Display
			}
			row := []string{r.Plan, strconv.Itoa(r.BaseCrews), c.Span, calendar.Format(c.Date), strconv.FormatFloat(v, 'f', -1, 64)}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write renders a single projection in the requested format.
func Write(w io.Writer, format string, rec model.Projection, curve, display bool) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, rec)
	case FormatCSV:
		if curve {
			return WriteCurveCSV(w, []model.Projection{rec}, display)
		}
		return WriteMilestonesCSV(w, []model.Projection{rec})
	case FormatTable, "":
		if err := WriteTable(w, rec); err != nil {
			return err
		}
		if curve {
			return WriteCurveTable(w, rec, display)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
