// Package plan reads project plans from YAML or JSON and turns them into
// scheduler input. Rates and remaining quantities are derived here, before
// any simulation runs.
package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/crewplan/core/calendar"
	"github.com/kilianp07/crewplan/core/crew"
	"github.com/kilianp07/crewplan/core/deadline"
	"github.com/kilianp07/crewplan/core/production"
	"github.com/kilianp07/crewplan/core/scheduler"
	"github.com/kilianp07/crewplan/core/span"
)

// ErrInvalid wraps every validation failure of a plan.
var ErrInvalid = errors.New("invalid plan")

// MaxDeadlineWorkdays bounds deadline_workdays to the longest run the
// scheduler simulates.
const MaxDeadlineWorkdays = scheduler.DefaultMaxDays

// Window policies.
const (
	// PolicyLastWins lets overlapping windows through; the later one wins.
	PolicyLastWins = "last_wins"
	// PolicyReject refuses plans with overlapping windows.
	PolicyReject = "reject"
)

// Plan is the file representation of a project.
type Plan struct {
	Name     string `json:"name" yaml:"name"`
	Start    string `json:"start" yaml:"start"`
	Deadline string `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	// DeadlineWorkdays sets the deadline that many business days after start
	// when Deadline is empty.
	DeadlineWorkdays int `json:"deadline_workdays,omitempty" yaml:"deadline_workdays,omitempty"`
	BaseCrews        int `json:"base_crews" yaml:"base_crews"`
	// RateCrews is the team size the task rates were measured with. Rates are
	// per crew when it is zero or one.
	RateCrews    int          `json:"rate_crews,omitempty" yaml:"rate_crews,omitempty"`
	WindowPolicy string       `json:"window_policy,omitempty" yaml:"window_policy,omitempty"`
	Windows      []WindowSpec `json:"windows,omitempty" yaml:"windows,omitempty"`
	Spans        []SpanSpec   `json:"spans" yaml:"spans"`
}

// WindowSpec is a crew window as written in a plan file.
type WindowSpec struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
	Crews int    `json:"crews" yaml:"crews"`
}

// SpanSpec is a group of tasks as written in a plan file.
type SpanSpec struct {
	Name  string     `json:"name" yaml:"name"`
	Tasks []TaskSpec `json:"tasks" yaml:"tasks"`
}

// TaskSpec is a task as written in a plan file.
type TaskSpec struct {
	Name      string  `json:"name" yaml:"name"`
	Total     float64 `json:"total" yaml:"total"`
	Completed float64 `json:"completed,omitempty" yaml:"completed,omitempty"`
	// Rate is the daily rate of a team of RateCrews crews.
	Rate float64 `json:"rate,omitempty" yaml:"rate,omitempty"`
	// DaysWorked counts business days of work at the base crew count since
	// Completed was measured.
	DaysWorked int `json:"days_worked,omitempty" yaml:"days_worked,omitempty"`
	// Samples replace Rate with the measured per-crew average when present.
	Samples []production.Sample `json:"samples,omitempty" yaml:"samples,omitempty"`
}

// Input is a validated plan ready for scheduling.
type Input struct {
	Name      string
	Start     time.Time
	Deadline  time.Time
	BaseCrews int
	Windows   []crew.Window
	Spans     []span.Span
}

// HasDeadline reports whether the plan sets a deadline.
func (in Input) HasDeadline() bool { return !in.Deadline.IsZero() }

// Load reads a plan from a .yaml, .yml or .json file.
func Load(path string) (*Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return Decode(f, format)
}

// Decode reads a plan in the given format ("yaml", "yml" or "json").
func Decode(r io.Reader, format string) (*Plan, error) {
	var p Plan
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&p); err != nil {
			return nil, fmt.Errorf("decode plan: %w", err)
		}
	case "json":
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("decode plan: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported plan format: %s", format)
	}
	return &p, nil
}

// WithBaseCrews returns a copy of the plan using a different base crew count.
func (p Plan) WithBaseCrews(n int) Plan {
	cp := p
	cp.BaseCrews = n
	cp.Windows = append([]WindowSpec(nil), p.Windows...)
	cp.Spans = make([]SpanSpec, len(p.Spans))
	for i, s := range p.Spans {
		cp.Spans[i] = SpanSpec{Name: s.Name, Tasks: append([]TaskSpec(nil), s.Tasks...)}
	}
	return cp
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Build validates the plan and derives the scheduler input.
//
//gocyclo:ignore
func (p Plan) Build() (Input, error) {
	in := Input{Name: p.Name, BaseCrews: p.BaseCrews}
	if p.BaseCrews < 1 {
		return in, invalid("base_crews must be at least 1, got %d", p.BaseCrews)
	}
	if p.RateCrews < 0 {
		return in, invalid("rate_crews must not be negative")
	}
	start, err := calendar.ParseDate(p.Start)
	if err != nil {
		return in, invalid("start: %v", err)
	}
	in.Start = calendar.NormalizeForward(start)

	switch {
	case p.Deadline != "":
		if in.Deadline, err = calendar.ParseDate(p.Deadline); err != nil {
			return in, invalid("deadline: %v", err)
		}
	case p.DeadlineWorkdays < 0 || p.DeadlineWorkdays > MaxDeadlineWorkdays:
		return in, invalid("deadline_workdays must be between 0 and %d, got %d", MaxDeadlineWorkdays, p.DeadlineWorkdays)
	case p.DeadlineWorkdays > 0:
		in.Deadline = deadline.FromWorkdays(in.Start, p.DeadlineWorkdays)
	}

	for i, ws := range p.Windows {
		w, err := ws.window()
		if err != nil {
			return in, invalid("window %d: %v", i, err)
		}
		if err := w.Validate(); err != nil {
			return in, invalid("window %d: %v", i, err)
		}
		in.Windows = append(in.Windows, w)
	}
	switch p.WindowPolicy {
	case "", PolicyLastWins:
	case PolicyReject:
		if ov := crew.Overlapping(in.Windows); len(ov) > 0 {
			return in, invalid("windows %d and %d overlap", ov[0].First, ov[0].Second)
		}
	default:
		return in, invalid("unknown window_policy %q", p.WindowPolicy)
	}

	if len(p.Spans) == 0 {
		return in, invalid("at least one span is required")
	}
	rateCrews := p.RateCrews
	if rateCrews == 0 {
		rateCrews = 1
	}
	for i, ss := range p.Spans {
		sp := span.Span{Name: ss.Name}
		if sp.Name == "" {
			sp.Name = fmt.Sprintf("span %d", i+1)
		}
		for j, ts := range ss.Tasks {
			task, err := ts.task(rateCrews, p.BaseCrews)
			if err != nil {
				return in, invalid("span %q task %d: %v", sp.Name, j, err)
			}
			sp.Tasks = append(sp.Tasks, task)
		}
		in.Spans = append(in.Spans, sp)
	}
	return in, nil
}

func (ws WindowSpec) window() (crew.Window, error) {
	start, err := calendar.ParseDate(ws.Start)
	if err != nil {
		return crew.Window{}, err
	}
	end, err := calendar.ParseDate(ws.End)
	if err != nil {
		return crew.Window{}, err
	}
	first := calendar.NormalizeForward(start)
	if !end.Before(start) && end.Before(first) {
		return crew.Window{}, fmt.Errorf("%s..%s covers no business day", ws.Start, ws.End)
	}
	return crew.Window{Start: first, End: end, Crews: ws.Crews}, nil
}

func (ts TaskSpec) task(rateCrews, baseCrews int) (scheduler.Task, error) {
	if ts.Name == "" {
		return scheduler.Task{}, errors.New("name is required")
	}
	if ts.Total < 0 || ts.Completed < 0 {
		return scheduler.Task{}, fmt.Errorf("%s: quantities must not be negative", ts.Name)
	}
	var rate float64
	if len(ts.Samples) > 0 {
		r, err := production.MeasuredRate(ts.Samples)
		if err != nil {
			return scheduler.Task{}, fmt.Errorf("%s: %w", ts.Name, err)
		}
		rate = r
	} else {
		r, err := production.PerCrewRate(ts.Rate, rateCrews)
		if err != nil {
			return scheduler.Task{}, fmt.Errorf("%s: %w", ts.Name, err)
		}
		rate = r
	}
	return scheduler.Task{
		Name:     ts.Name,
		Quantity: production.Remaining(ts.Total, ts.Completed, rate, baseCrews, ts.DaysWorked),
		Rate:     rate,
	}, nil
}
