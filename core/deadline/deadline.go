// Package deadline compares a projected finish date with a deadline.
package deadline

import (
	"fmt"
	"time"

	"github.com/kilianp07/crewplan/core/calendar"
)

// Unit selects how a variance is counted.
type Unit int

const (
	BusinessDays Unit = iota
	CalendarDays
)

// String implements fmt.Stringer.
func (u Unit) String() string {
	switch u {
	case BusinessDays:
		return "business"
	case CalendarDays:
		return "calendar"
	default:
		return "unknown"
	}
}

// ParseUnit maps "business" or "calendar" to a Unit.
func ParseUnit(s string) (Unit, error) {
	switch s {
	case "", "business":
		return BusinessDays, nil
	case "calendar":
		return CalendarDays, nil
	default:
		return 0, fmt.Errorf("unknown day unit %q", s)
	}
}

// Variance describes how far a finish date lands from its deadline. Positive
// values mean the work finishes early.
type Variance struct {
	Finish       time.Time `json:"finish"`
	Deadline     time.Time `json:"deadline"`
	BusinessDays int       `json:"business_days"`
	CalendarDays int       `json:"calendar_days"`
}

// Compare measures finish against deadline.
func Compare(finish, deadline time.Time) Variance {
	return Variance{
		Finish:       calendar.Truncate(finish),
		Deadline:     calendar.Truncate(deadline),
		BusinessDays: calendar.BusinessDaysBetween(finish, deadline),
		CalendarDays: calendar.CalendarDaysBetween(finish, deadline),
	}
}

// FromWorkdays returns the deadline falling n business days after start.
func FromWorkdays(start time.Time, n int) time.Time {
	return calendar.OffsetBusinessDays(start, n)
}

// Early reports whether the finish is strictly before the deadline.
func (v Variance) Early() bool { return v.Finish.Before(v.Deadline) }

// Late reports whether the finish is strictly after the deadline.
func (v Variance) Late() bool { return v.Finish.After(v.Deadline) }

// Days returns the variance in the requested unit.
func (v Variance) Days(u Unit) int {
	if u == CalendarDays {
		return v.CalendarDays
	}
	return v.BusinessDays
}

// Text renders the variance as "N <unit> days early", "N <unit> days late" or
// "on deadline".
func (v Variance) Text(u Unit) string {
	n := v.Days(u)
	switch {
	case n > 0:
		return fmt.Sprintf("%d %s %s early", n, u, plural(n))
	case n < 0:
		return fmt.Sprintf("%d %s %s late", -n, u, plural(-n))
	case v.Late():
		// finish on a weekend day after a Friday deadline
		return fmt.Sprintf("late by less than one %s day", u)
	default:
		return "on deadline"
	}
}

func plural(n int) string {
	if n == 1 {
		return "day"
	}
	return "days"
}
