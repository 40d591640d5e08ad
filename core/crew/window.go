// Package crew resolves the number of crews working on a given day from a
// base count and a list of temporary overrides.
package crew

import (
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/crewplan/core/calendar"
)

// Window temporarily overrides the base crew count for every day in
// [Start, End], both ends inclusive.
type Window struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
	Crews int       `json:"crews" yaml:"crews"`
}

// ErrInvalidWindow is returned by Validate for malformed windows.
var ErrInvalidWindow = errors.New("invalid crew window")

// Contains reports whether day falls inside the window. A window whose end is
// before its start is empty.
func (w Window) Contains(day time.Time) bool {
	day = calendar.Truncate(day)
	start, end := calendar.Truncate(w.Start), calendar.Truncate(w.End)
	return !day.Before(start) && !day.After(end)
}

// Empty reports whether the window covers no day at all.
func (w Window) Empty() bool {
	return calendar.Truncate(w.End).Before(calendar.Truncate(w.Start))
}

// Validate checks that the window is well formed.
func (w Window) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidWindow)
	}
	if w.Empty() {
		return fmt.Errorf("%w: end %s before start %s", ErrInvalidWindow,
			calendar.Format(w.End), calendar.Format(w.Start))
	}
	if w.Crews < 0 {
		return fmt.Errorf("%w: negative crew count %d", ErrInvalidWindow, w.Crews)
	}
	return nil
}

// String implements fmt.Stringer.
func (w Window) String() string {
	return fmt.Sprintf("%s..%s x%d", calendar.Format(w.Start), calendar.Format(w.End), w.Crews)
}

// CrewsFor returns the crew count in effect on day.
//
// Windows are visited in the order given and every window containing day
// overwrites the running value, so when windows overlap the last matching
// window in slice order wins. It is neither the largest count nor the
// narrowest window. With no matching window the base count is returned.
func CrewsFor(day time.Time, base int, windows []Window) int {
	crews := base
	for _, w := range windows {
		if w.Contains(day) {
			crews = w.Crews
		}
	}
	return crews
}

// Clip restricts w to [from, to]. The result may be empty.
func (w Window) Clip(from, to time.Time) Window {
	out := w
	if calendar.Truncate(from).After(calendar.Truncate(out.Start)) {
		out.Start = calendar.Truncate(from)
	}
	if calendar.Truncate(to).Before(calendar.Truncate(out.End)) {
		out.End = calendar.Truncate(to)
	}
	return out
}

// Overlap describes two windows sharing at least one day.
type Overlap struct {
	First  int
	Second int
}

// Overlapping lists every pair of windows that share a day, by index. Callers
// that want to reject overlapping input use it before scheduling; the
// resolver itself accepts overlaps.
func Overlapping(windows []Window) []Overlap {
	var out []Overlap
	for i := 0; i < len(windows); i++ {
		if windows[i].Empty() {
			continue
		}
		for j := i + 1; j < len(windows); j++ {
			if windows[j].Empty() {
				continue
			}
			a, b := windows[i], windows[j]
			if !calendar.Truncate(a.End).Before(calendar.Truncate(b.Start)) &&
				!calendar.Truncate(b.End).Before(calendar.Truncate(a.Start)) {
				out = append(out, Overlap{First: i, Second: j})
			}
		}
	}
	return out
}
