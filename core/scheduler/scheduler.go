package scheduler

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/kilianp07/crewplan/core/calendar"
	"github.com/kilianp07/crewplan/core/crew"
	"github.com/kilianp07/crewplan/core/logger"
)

const (
	// DefaultEpsilon is the remaining quantity treated as zero.
	DefaultEpsilon = 1e-9
	// DefaultMaxDays bounds the number of simulated business days in a run.
	DefaultMaxDays = 100000
)

// ErrStalled indicates that outstanding work can never be completed because
// the daily capacity is not positive.
var ErrStalled = errors.New("schedule stalled")

// Task is a unit of work processed in list order.
type Task struct {
	Name string `json:"name" yaml:"name"`
	// Quantity is the remaining work in units.
	Quantity float64 `json:"quantity" yaml:"quantity"`
	// Rate is the number of units one crew completes per business day.
	Rate float64 `json:"rate" yaml:"rate"`
}

// Config tunes the simulation. The zero value applies the defaults.
type Config struct {
	Epsilon float64 `json:"epsilon" yaml:"epsilon"`
	MaxDays int     `json:"max_days" yaml:"max_days"`
}

// Validate rejects negative tuning values.
func (c Config) Validate() error {
	if c.Epsilon < 0 {
		return fmt.Errorf("epsilon must not be negative, got %v", c.Epsilon)
	}
	if c.MaxDays < 0 {
		return fmt.Errorf("max_days must not be negative, got %d", c.MaxDays)
	}
	return nil
}

func (c Config) epsilon() float64 {
	if c.Epsilon <= 0 {
		return DefaultEpsilon
	}
	return c.Epsilon
}

func (c Config) maxDays() int {
	if c.MaxDays <= 0 {
		return DefaultMaxDays
	}
	return c.MaxDays
}

// Result is the projected production curve of a run.
//
// Dates[0] is the normalized start with Cumulative[0] == 0. Every following
// entry is a simulated business day and the cumulative units completed at the
// end of it. Completion holds one date per task, in task order.
type Result struct {
	Dates      []time.Time `json:"dates"`
	Cumulative []float64   `json:"cumulative"`
	Completion []time.Time `json:"completion"`
}

// Start returns the normalized start date of the run.
func (r Result) Start() time.Time {
	if len(r.Dates) == 0 {
		return time.Time{}
	}
	return r.Dates[0]
}

// Finish returns the completion date of the last task.
func (r Result) Finish() time.Time {
	if len(r.Completion) > 0 {
		return r.Completion[len(r.Completion)-1]
	}
	return r.Start()
}

// Total returns the cumulative units completed by the end of the run.
func (r Result) Total() float64 {
	if len(r.Cumulative) == 0 {
		return 0
	}
	return r.Cumulative[len(r.Cumulative)-1]
}

// WorkDays returns the number of simulated business days.
func (r Result) WorkDays() int {
	if len(r.Dates) == 0 {
		return 0
	}
	return len(r.Dates) - 1
}

// StallError reports the task and day on which the schedule stopped
// progressing.
type StallError struct {
	Task      string
	Index     int
	Day       time.Time
	Rate      float64
	Crews     int
	Remaining float64
}

func (e *StallError) Error() string {
	return fmt.Sprintf("%v: task %d (%s) has %.4g units left on %s with rate %.4g and %d crews",
		ErrStalled, e.Index, e.Task, e.Remaining, calendar.Format(e.Day), e.Rate, e.Crews)
}

// Unwrap makes errors.Is(err, ErrStalled) hold.
func (e *StallError) Unwrap() error { return ErrStalled }

// Run simulates the tasks from start and returns the production curve.
//
// A stall is reported as *StallError and no partial result is returned. Task
// quantities are copied, the caller's slice is never modified.
func Run(tasks []Task, start time.Time, baseCrews int, windows []crew.Window, cfg Config) (Result, error) {
	eps := cfg.epsilon()
	start = calendar.NormalizeForward(start)

	remaining := make([]float64, len(tasks))
	total := 0.0
	for i, t := range tasks {
		if t.Quantity > 0 {
			remaining[i] = t.Quantity
			total += t.Quantity
		}
	}

	if total <= eps {
		res := Result{
			Dates:      []time.Time{start},
			Cumulative: []float64{0},
			Completion: make([]time.Time, len(tasks)),
		}
		for i := range res.Completion {
			res.Completion[i] = start
		}
		return res, nil
	}

	res := Result{
		Dates:      []time.Time{start},
		Cumulative: []float64{0},
		Completion: make([]time.Time, 0, len(tasks)),
	}
	idx := 0
	for idx < len(tasks) && remaining[idx] <= eps {
		res.Completion = append(res.Completion, start)
		idx++
	}

	day := start
	maxDays := cfg.maxDays()
	for idx < len(tasks) {
		day = calendar.NormalizeForward(day)
		task := tasks[idx]
		crews := crew.CrewsFor(day, baseCrews, windows)
		stall := &StallError{Task: task.Name, Index: idx, Day: day, Rate: task.Rate, Crews: crews, Remaining: remaining[idx]}
		if res.WorkDays() >= maxDays {
			return Result{}, stall
		}
		if task.Rate <= 0 || math.IsNaN(task.Rate) {
			return Result{}, stall
		}
		capacity := 0.0
		if crews > 0 {
			capacity = task.Rate * float64(crews)
		} else if !resumes(day, baseCrews, windows) {
			return Result{}, stall
		}

		done := math.Min(capacity, remaining[idx])
		remaining[idx] -= done
		res.Dates = append(res.Dates, day)
		res.Cumulative = append(res.Cumulative, res.Total()+done)

		if remaining[idx] <= eps {
			res.Completion = append(res.Completion, day)
			idx++
			// zero-quantity tasks complete alongside their predecessor
			for idx < len(tasks) && remaining[idx] <= eps {
				res.Completion = append(res.Completion, day)
				idx++
			}
		}
		day = calendar.OffsetBusinessDays(day, 1)
	}
	return res, nil
}

// resumes reports whether any business day after day has a positive crew
// count, which makes an idle day a pause rather than a stall. The count only
// changes where a window starts or ends, so the first business day after day
// and after each of those edges are the only days checked.
func resumes(day time.Time, base int, windows []crew.Window) bool {
	if base > 0 {
		return true
	}
	staffed := func(d time.Time) bool {
		d = calendar.NormalizeForward(d)
		return d.After(day) && crew.CrewsFor(d, base, windows) > 0
	}
	if staffed(day.AddDate(0, 0, 1)) {
		return true
	}
	for _, w := range windows {
		if w.Empty() {
			continue
		}
		if staffed(w.Start) || staffed(calendar.Truncate(w.End).AddDate(0, 0, 1)) {
			return true
		}
	}
	return false
}

// Scheduler wraps Run with a fixed configuration and logging.
type Scheduler struct {
	Config Config
	Log    logger.Logger
}

// New returns a Scheduler. A nil logger disables logging.
func New(cfg Config, log logger.Logger) *Scheduler {
	return &Scheduler{Config: cfg, Log: log}
}

// Run executes a scheduling run with the scheduler's configuration.
func (s *Scheduler) Run(tasks []Task, start time.Time, baseCrews int, windows []crew.Window) (Result, error) {
	res, err := Run(tasks, start, baseCrews, windows, s.Config)
	if s.Log == nil {
		return res, err
	}
	if err != nil {
		s.Log.Warnf("scheduling stopped: %v", err)
		return res, err
	}
	for i, t := range tasks {
		s.Log.Debugw("task complete", map[string]any{
			"task":       t.Name,
			"index":      i,
			"completion": calendar.Format(res.Completion[i]),
		})
	}
	s.Log.Infof("scheduled %d tasks over %d business days, finish %s",
		len(tasks), res.WorkDays(), calendar.Format(res.Finish()))
	return res, nil
}
