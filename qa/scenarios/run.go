package scenarios

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/crewplan/core/calendar"
	coremetrics "github.com/kilianp07/crewplan/core/metrics"
	"github.com/kilianp07/crewplan/core/model"
	"github.com/kilianp07/crewplan/core/projection"
	"github.com/kilianp07/crewplan/core/projection/logging"
	"github.com/kilianp07/crewplan/infra/logger"
	"github.com/kilianp07/crewplan/infra/metrics"
	"github.com/kilianp07/crewplan/infra/mqtt"
	"github.com/kilianp07/crewplan/internal/eventbus"
)

// RunScenario projects the scenario's plan at every expected crew count
// through the full projector stack and checks the outcome of each run.
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	reg := prometheus.NewRegistry()
	prom, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	pub := mqtt.NewMockPublisher()
	sink := coremetrics.NewMultiSink(prom, metrics.NewMQTTSink(pub, "qa"))

	bus := eventbus.New[model.Projection](len(sc.Expected) + 1)
	done := metrics.StartEventCollector(context.Background(), bus, sink, logger.NopLogger{})
	store := logging.NewMemoryStore()
	p := projection.New(projection.Config{Parallelism: 2}, store, bus, sink, logger.NopLogger{})

	recs, err := p.Scenarios(context.Background(), sc.Plan, sc.Crews())
	if err != nil {
		t.Fatalf("scenarios: %v", err)
	}
	bus.Close()
	<-done

	for i, exp := range sc.Expected {
		checkProjection(t, exp, recs[i])
	}

	stored, err := store.Query(context.Background(), logging.LogQuery{Plan: sc.Plan.Name})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(stored) != len(sc.Expected) {
		t.Errorf("expected %d stored projections, got %d", len(sc.Expected), len(stored))
	}
	want := float64(len(sc.Expected))
	if got := counterSum(t, reg, "crewplan_projections_total"); got != want {
		t.Errorf("expected %v projections counted, got %v", want, got)
	}
	if got := counterSum(t, reg, "crewplan_scenarios_total"); got != want {
		t.Errorf("expected %v scenarios counted, got %v", want, got)
	}
	// One projection message per run plus the scenario summary.
	if got := len(pub.Sent()); got != len(sc.Expected)+1 {
		t.Errorf("expected %d mqtt messages, got %d", len(sc.Expected)+1, got)
	}
}

func checkProjection(t *testing.T, exp Expected, rec model.Projection) {
	t.Helper()
	if rec.BaseCrews != exp.Crews {
		t.Fatalf("expected %d crews, got %d", exp.Crews, rec.BaseCrews)
	}
	if rec.Stalled != exp.Stalled {
		t.Fatalf("%d crews: expected stalled=%v, got %v (%s)", exp.Crews, exp.Stalled, rec.Stalled, rec.Error)
	}
	if exp.Stalled {
		return
	}
	if got := calendar.Format(rec.Finish); got != exp.Finish {
		t.Errorf("%d crews: expected finish %s, got %s", exp.Crews, exp.Finish, got)
	}
	if exp.BusinessDaysVariance != nil && rec.BusinessDaysVariance != *exp.BusinessDaysVariance {
		t.Errorf("%d crews: expected business day variance %d, got %d", exp.Crews, *exp.BusinessDaysVariance, rec.BusinessDaysVariance)
	}
	if exp.CalendarDaysVariance != nil && rec.CalendarDaysVariance != *exp.CalendarDaysVariance {
		t.Errorf("%d crews: expected calendar day variance %d, got %d", exp.Crews, *exp.CalendarDaysVariance, rec.CalendarDaysVariance)
	}
	for _, m := range exp.Milestones {
		got, ok := completion(rec, m.Span, m.Task)
		if !ok {
			t.Errorf("%d crews: no milestone %s/%s", exp.Crews, m.Span, m.Task)
			continue
		}
		if got != m.Completion {
			t.Errorf("%d crews: %s/%s expected %s, got %s", exp.Crews, m.Span, m.Task, m.Completion, got)
		}
	}
}

func completion(rec model.Projection, span, task string) (string, bool) {
	for _, s := range rec.Spans {
		if s.Name != span {
			continue
		}
		for _, m := range s.Milestones {
			if m.Task == task {
				return calendar.Format(m.Completion), true
			}
		}
	}
	return "", false
}

func counterSum(t *testing.T, g prometheus.Gatherer, name string) float64 {
	t.Helper()
	families, err := g.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var sum float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
	}
	return sum
}
