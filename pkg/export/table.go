package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/kilianp07/crewplan/core/calendar"
	"github.com/kilianp07/crewplan/core/deadline"
	"github.com/kilianp07/crewplan/core/model"
)

// StallMessage is printed in place of dates for a stalled projection.
const StallMessage = "rate or crew count is zero; cannot project completion"

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

// VarianceText describes the deadline variance of rec in both units.
func VarianceText(rec model.Projection) string {
	if rec.Stalled {
		return StallMessage
	}
	if rec.Deadline == nil {
		return "no deadline"
	}
	v := deadline.Compare(rec.Finish, *rec.Deadline)
	return fmt.Sprintf("%s (%s)", v.Text(deadline.BusinessDays), v.Text(deadline.CalendarDays))
}

// WriteTable prints the milestone table, the span summary and the deadline
// line of a projection.
func WriteTable(w io.Writer, rec model.Projection) error {
	if _, err := fmt.Fprintf(w, "Plan %s with %d crews, start %s\n\n", rec.Plan, rec.BaseCrews, calendar.Format(rec.Start)); err != nil {
		return err
	}
	if rec.Stalled {
		_, err := fmt.Fprintf(w, "%s\n%s\n", StallMessage, rec.Error)
		return err
	}

	milestones := newTable(w, "Span", "Task", "Completion")
	for _, s := range rec.Spans {
		for _, m := range s.Milestones {
			milestones.Append([]string{s.Name, m.Task, calendar.Format(m.Completion)})
		}
	}
	milestones.Render()
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	spans := newTable(w, "Span", "Start", "Finish", "Work days", "Units")
	for _, s := range rec.Spans {
		spans.Append([]string{
			s.Name,
			calendar.Format(s.Start),
			calendar.Format(s.Finish),
			strconv.Itoa(s.WorkDays),
			strconv.FormatFloat(s.Units, 'f', -1, 64),
		})
	}
	spans.Render()

	if _, err := fmt.Fprintf(w, "\nFinish %s", calendar.Format(rec.Finish)); err != nil {
		return err
	}
	if rec.Deadline != nil {
		if _, err := fmt.Fprintf(w, ", deadline %s: %s", calendar.Format(*rec.Deadline), VarianceText(rec)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// WriteCurveTable prints the production curve, one row per point.
func WriteCurveTable(w io.Writer, rec model.Projection, display bool) error {
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	table := newTable(w, "Span", "Date", "Cumulative")
	for _, c := range rec.Curve {
		v := c.Cumulative
		if display {
			v = c.Display
		}
		table.Append([]string{c.Span, calendar.Format(c.Date), strconv.FormatFloat(v, 'f', 2, 64)})
	}
	table.Render()
	return nil
}

// WriteScenarioTable compares projections of one plan at several crew counts.
func WriteScenarioTable(w io.Writer, recs []model.Projection) error {
	table := newTable(w, "Crews", "Finish", "Work days", "Deadline")
	for _, r := range recs {
		finish := "-"
		if !r.Stalled {
			finish = calendar.Format(r.Finish)
		}
		table.Append([]string{strconv.Itoa(r.BaseCrews), finish, strconv.Itoa(r.WorkDays()), VarianceText(r)})
	}
	table.Render()
	return nil
}

// WriteHistoryTable lists stored projection records.
func WriteHistoryTable(w io.Writer, recs []model.Projection) error {
	table := newTable(w, "Timestamp", "ID", "Plan", "Crews", "Finish", "Outcome")
	for _, r := range recs {
		finish := "-"
		if !r.Stalled {
			finish = calendar.Format(r.Finish)
		}
		table.Append([]string{
			r.Timestamp.Format(time.RFC3339),
			r.ID,
			r.Plan,
			strconv.Itoa(r.BaseCrews),
			finish,
			r.Outcome(),
		})
	}
	table.Render()
	return nil
}
