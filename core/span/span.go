// Package span chains scheduler runs so that each group of tasks starts the
// business day after the previous group finishes.
package span

import (
	"fmt"
	"time"

	"github.com/kilianp07/crewplan/core/calendar"
	"github.com/kilianp07/crewplan/core/crew"
	"github.com/kilianp07/crewplan/core/scheduler"
)

// Span is a named, ordered group of tasks scheduled as a unit.
type Span struct {
	Name  string           `json:"name" yaml:"name"`
	Tasks []scheduler.Task `json:"tasks" yaml:"tasks"`
}

// Result is the outcome of one span in a chain.
type Result struct {
	Name string `json:"name"`
	// Windows are the crew windows that applied to this span after splitting.
	Windows []crew.Window `json:"windows"`
	scheduler.Result
}

// SplitWindows divides windows at boundary, the finish date of the earlier
// span. A window ending on or before the boundary belongs to the earlier span,
// one starting after it to the later span. A window running past the
// boundary from on or before it is clipped to [Start, boundary] for the earlier span and
// [boundary, End] for the later one. Empty windows are dropped. The relative
// order of windows is kept on both sides.
func SplitWindows(windows []crew.Window, boundary time.Time) (before, after []crew.Window) {
	boundary = calendar.Truncate(boundary)
	for _, w := range windows {
		if w.Empty() {
			continue
		}
		start, end := calendar.Truncate(w.Start), calendar.Truncate(w.End)
		switch {
		case !end.After(boundary):
			before = append(before, w)
		case start.After(boundary):
			after = append(after, w)
		default:
			before = append(before, w.Clip(w.Start, boundary))
			after = append(after, w.Clip(boundary, w.End))
		}
	}
	return before, after
}

// Chain schedules spans back to back. The first span starts on the business
// day on or after start; every later span starts the business day after its
// predecessor's finish. Crew windows are split at each span boundary.
func Chain(start time.Time, spans []Span, baseCrews int, windows []crew.Window, cfg scheduler.Config) ([]Result, error) {
	return ChainWith(scheduler.New(cfg, nil), start, spans, baseCrews, windows)
}

// ChainWith is Chain running every span through s.
func ChainWith(s *scheduler.Scheduler, start time.Time, spans []Span, baseCrews int, windows []crew.Window) ([]Result, error) {
	results := make([]Result, 0, len(spans))
	next := calendar.NormalizeForward(start)
	pending := windows
	for i, sp := range spans {
		res, err := s.Run(sp.Tasks, next, baseCrews, pending)
		if err != nil {
			return nil, fmt.Errorf("span %d (%s): %w", i, sp.Name, err)
		}
		mine := pending
		if i < len(spans)-1 {
			mine, pending = SplitWindows(pending, res.Finish())
		}
		results = append(results, Result{Name: sp.Name, Windows: mine, Result: res})
		next = calendar.OffsetBusinessDays(res.Finish(), 1)
	}
	return results, nil
}

// Finish returns the finish date of the last span in a chain.
func Finish(results []Result) time.Time {
	if len(results) == 0 {
		return time.Time{}
	}
	return results[len(results)-1].Finish()
}

// DisplayCurves returns copies of the cumulative curves offset by the total
// of every earlier span, so a chained chart rises continuously. The results
// themselves are left untouched.
func DisplayCurves(results []Result) [][]float64 {
	out := make([][]float64, len(results))
	offset := 0.0
	for i, r := range results {
		curve := make([]float64, len(r.Cumulative))
		for j, v := range r.Cumulative {
			curve[j] = v + offset
		}
		out[i] = curve
		offset += r.Total()
	}
	return out
}
