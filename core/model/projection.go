package model

import "time"

// Milestone is the projected completion of a single task.
type Milestone struct {
	Task       string    `json:"task"`
	Completion time.Time `json:"completion"`
}

// SpanSummary describes one span of a projection.
type SpanSummary struct {
	Name       string      `json:"name"`
	Start      time.Time   `json:"start"`
	Finish     time.Time   `json:"finish"`
	WorkDays   int         `json:"work_days"`
	Units      float64     `json:"units"`
	Milestones []Milestone `json:"tasks"`
}

// CurvePoint is one point of the chained production curve. Display is the
// cumulative value offset by the totals of earlier spans.
type CurvePoint struct {
	Span       string    `json:"span"`
	Date       time.Time `json:"date"`
	Cumulative float64   `json:"cumulative"`
	Display    float64   `json:"display"`
}

// Projection is the outcome of projecting a plan at a given crew count.
// A stalled projection carries the error text and no spans.
type Projection struct {
	ID                   string        `json:"id"`
	Plan                 string        `json:"plan"`
	Timestamp            time.Time     `json:"timestamp"`
	BaseCrews            int           `json:"base_crews"`
	Start                time.Time     `json:"start"`
	Finish               time.Time     `json:"finish"`
	Deadline             *time.Time    `json:"deadline,omitempty"`
	BusinessDaysVariance int           `json:"business_days_variance"`
	CalendarDaysVariance int           `json:"calendar_days_variance"`
	Spans                []SpanSummary `json:"spans"`
	Curve                []CurvePoint  `json:"curve,omitempty"`
	Stalled              bool          `json:"stalled"`
	Error                string        `json:"error,omitempty"`
	Elapsed              time.Duration `json:"elapsed_ns"`
}

// Units returns the total units scheduled across all spans.
func (p Projection) Units() float64 {
	total := 0.0
	for _, s := range p.Spans {
		total += s.Units
	}
	return total
}

// WorkDays returns the business days worked across all spans.
func (p Projection) WorkDays() int {
	n := 0
	for _, s := range p.Spans {
		n += s.WorkDays
	}
	return n
}

// Outcome classifies the projection for metrics labels: "stalled", "late",
// "early", "on_time" or "no_deadline".
func (p Projection) Outcome() string {
	switch {
	case p.Stalled:
		return "stalled"
	case p.Deadline == nil:
		return "no_deadline"
	case p.Finish.After(*p.Deadline):
		return "late"
	case p.Finish.Before(*p.Deadline):
		return "early"
	default:
		return "on_time"
	}
}
