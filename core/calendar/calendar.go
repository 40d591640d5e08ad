package calendar

import (
	"fmt"
	"time"
)

// DateLayout is the textual form used for dates in plan files and exports.
const DateLayout = "2006-01-02"

// Date returns midnight UTC of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Truncate drops the wall-clock part of t and moves it to UTC, keeping the
// calendar day as seen in t's own location.
func Truncate(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// Format renders t as YYYY-MM-DD.
func Format(t time.Time) string {
	return t.Format(DateLayout)
}

// IsBusinessDay reports whether t falls on Monday through Friday.
func IsBusinessDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// NormalizeForward returns t if it is a business day, otherwise the next
// business day after it.
func NormalizeForward(t time.Time) time.Time {
	t = Truncate(t)
	for !IsBusinessDay(t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// OffsetBusinessDays moves t by n business days. The date is first rolled
// forward onto a business day, so an offset of zero from a weekend yields the
// following Monday.
func OffsetBusinessDays(t time.Time, n int) time.Time {
	t = NormalizeForward(t)
	step := 1
	if n < 0 {
		step = -1
		n = -n
	}
	// seven calendar days from a business day are always five business days
	weeks, rest := n/5, n%5
	t = t.AddDate(0, 0, step*weeks*7)
	for rest > 0 {
		t = t.AddDate(0, 0, step)
		if IsBusinessDay(t) {
			rest--
		}
	}
	return t
}

// CountBusinessDays returns the number of business days in [start, end].
// It is zero when end is before start.
func CountBusinessDays(start, end time.Time) int {
	start, end = Truncate(start), Truncate(end)
	if end.Before(start) {
		return 0
	}
	days := daysBetween(start, end) + 1
	weeks, rest := days/7, days%7
	count := weeks * 5
	d := start.AddDate(0, 0, weeks*7)
	for i := 0; i < rest; i++ {
		if IsBusinessDay(d) {
			count++
		}
		d = d.AddDate(0, 0, 1)
	}
	return count
}

// BusinessDaysBetween returns the signed number of business days needed to
// move from a to b: positive when b is after a, negative when before. Both
// dates are rolled forward onto business days first.
func BusinessDaysBetween(a, b time.Time) int {
	a, b = NormalizeForward(a), NormalizeForward(b)
	switch {
	case b.After(a):
		return CountBusinessDays(a, b) - 1
	case b.Before(a):
		return -(CountBusinessDays(b, a) - 1)
	default:
		return 0
	}
}

// CalendarDaysBetween returns the signed number of calendar days from a to b.
func CalendarDaysBetween(a, b time.Time) int {
	return daysBetween(Truncate(a), Truncate(b))
}

// daysBetween counts whole days between two UTC midnights. time.Duration
// saturates after about 292 years, so Sub is not usable here.
func daysBetween(a, b time.Time) int {
	return int((b.Unix() - a.Unix()) / 86400)
}
