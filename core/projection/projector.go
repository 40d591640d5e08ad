package projection

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/crewplan/core/deadline"
	coremetrics "github.com/kilianp07/crewplan/core/metrics"
	"github.com/kilianp07/crewplan/core/model"
	coremon "github.com/kilianp07/crewplan/core/monitoring"
	"github.com/kilianp07/crewplan/core/plan"
	"github.com/kilianp07/crewplan/core/projection/logging"
	"github.com/kilianp07/crewplan/core/scheduler"
	"github.com/kilianp07/crewplan/core/span"
	"github.com/kilianp07/crewplan/infra/logger"
	"github.com/kilianp07/crewplan/internal/eventbus"
)

// ErrNoScenarios is returned when a scenario run names no crew counts.
var ErrNoScenarios = errors.New("no crew counts given")

// Config tunes the projector.
type Config struct {
	Scheduler scheduler.Config `json:"scheduler"`
	// Parallelism bounds concurrent scenario evaluations. Zero or less means
	// one goroutine per scenario.
	Parallelism int `json:"parallelism"`
}

// Projector computes projections and distributes the records.
type Projector struct {
	cfg   Config
	store logging.LogStore
	bus   *eventbus.Bus[model.Projection]
	sink  coremetrics.MetricsSink
	log   logger.Logger
	sched *scheduler.Scheduler

	now   func() time.Time
	newID func() string
}

// New returns a Projector. The store, bus and sink are optional; records are
// only kept or published where they are set.
func New(cfg Config, store logging.LogStore, bus *eventbus.Bus[model.Projection], sink coremetrics.MetricsSink, log logger.Logger) *Projector {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Projector{
		cfg:   cfg,
		store: store,
		bus:   bus,
		sink:  sink,
		log:   log,
		sched: scheduler.New(cfg.Scheduler, log),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Project schedules the plan and records the outcome. Invalid plans return
// an error wrapping plan.ErrInvalid and are not recorded. A stalled schedule
// is recorded with Stalled set and returned together with an error wrapping
// scheduler.ErrStalled.
func (p *Projector) Project(ctx context.Context, pl plan.Plan) (model.Projection, error) {
	if err := ctx.Err(); err != nil {
		return model.Projection{}, err
	}
	began := p.now()
	in, err := pl.Build()
	if err != nil {
		return model.Projection{}, err
	}
	rec := model.Projection{
		ID:        p.newID(),
		Plan:      in.Name,
		Timestamp: began.UTC(),
		BaseCrews: in.BaseCrews,
		Start:     in.Start,
	}
	if in.HasDeadline() {
		d := in.Deadline
		rec.Deadline = &d
	}

	results, err := span.ChainWith(p.sched, in.Start, in.Spans, in.BaseCrews, in.Windows)
	if err != nil {
		if !errors.Is(err, scheduler.ErrStalled) {
			return model.Projection{}, err
		}
		rec.Stalled = true
		rec.Error = err.Error()
		rec.Elapsed = p.now().Sub(began)
		p.log.Warnf("plan %q at %d crews stalled: %v", rec.Plan, rec.BaseCrews, err)
		p.record(ctx, rec)
		return rec, err
	}

	fill(&rec, in, results)
	rec.Elapsed = p.now().Sub(began)
	p.log.Infof("plan %q at %d crews finishes %s", rec.Plan, rec.BaseCrews, rec.Finish.Format(time.DateOnly))
	p.record(ctx, rec)
	return rec, nil
}

// fill copies the chained results into the record.
func fill(rec *model.Projection, in plan.Input, results []span.Result) {
	curves := span.DisplayCurves(results)
	for i, r := range results {
		sum := model.SpanSummary{
			Name:     r.Name,
			Start:    r.Start(),
			Finish:   r.Finish(),
			WorkDays: r.WorkDays(),
			Units:    r.Total(),
		}
		for j, t := range in.Spans[i].Tasks {
			sum.Milestones = append(sum.Milestones, model.Milestone{Task: t.Name, Completion: r.Completion[j]})
		}
		rec.Spans = append(rec.Spans, sum)
		for j, d := range r.Dates {
			rec.Curve = append(rec.Curve, model.CurvePoint{
				Span:       r.Name,
				Date:       d,
				Cumulative: r.Cumulative[j],
				Display:    curves[i][j],
			})
		}
	}
	rec.Finish = span.Finish(results)
	if rec.Deadline != nil {
		v := deadline.Compare(rec.Finish, *rec.Deadline)
		rec.BusinessDaysVariance = v.BusinessDays
		rec.CalendarDaysVariance = v.CalendarDays
	}
}

// record stores and publishes rec. Storage failures are logged and reported
// but never discard the projection.
func (p *Projector) record(ctx context.Context, rec model.Projection) {
	if p.store != nil {
		if err := p.store.Append(ctx, rec); err != nil {
			p.log.Errorf("store projection %s: %v", rec.ID, err)
			coremon.CaptureException(fmt.Errorf("store projection: %w", err), map[string]string{
				"module": "projection",
				"plan":   rec.Plan,
			})
		}
	}
	if p.bus != nil {
		p.bus.Publish(rec)
	}
}

// Scenarios projects the plan once per crew count and returns the records
// in the order of crews. Stalled scenarios are returned with Stalled set;
// any other failure aborts the run.
func (p *Projector) Scenarios(ctx context.Context, pl plan.Plan, crews []int) ([]model.Projection, error) {
	if len(crews) == 0 {
		return nil, ErrNoScenarios
	}
	for _, n := range crews {
		if n < 1 {
			return nil, fmt.Errorf("%w: crew count must be at least 1, got %d", plan.ErrInvalid, n)
		}
	}
	began := p.now()
	out := make([]model.Projection, len(crews))
	g, gctx := errgroup.WithContext(ctx)
	if p.cfg.Parallelism > 0 {
		g.SetLimit(p.cfg.Parallelism)
	}
	for i, n := range crews {
		i, n := i, n
		variant := pl.WithBaseCrews(n)
		g.Go(func() error {
			rec, err := p.Project(gctx, variant)
			if err != nil && !errors.Is(err, scheduler.ErrStalled) {
				return fmt.Errorf("%d crews: %w", n, err)
			}
			out[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stalled := 0
	for _, r := range out {
		if r.Stalled {
			stalled++
		}
	}
	if rec, ok := p.sink.(coremetrics.ScenarioRecorder); ok {
		ev := coremetrics.ScenarioRun{Plan: pl.Name, Scenarios: len(out), Stalled: stalled, Duration: p.now().Sub(began), Time: began.UTC()}
		if err := rec.RecordScenarioRun(ev); err != nil {
			p.log.Errorf("record scenario run: %v", err)
		}
	}
	return out, nil
}

// Best returns the index of the earliest finishing scenario that did not
// stall, preferring fewer crews on ties, or -1 if every scenario stalled.
func Best(recs []model.Projection) int {
	best := -1
	for i, r := range recs {
		if r.Stalled {
			continue
		}
		if best < 0 || r.Finish.Before(recs[best].Finish) ||
			(r.Finish.Equal(recs[best].Finish) && r.BaseCrews < recs[best].BaseCrews) {
			best = i
		}
	}
	return best
}
