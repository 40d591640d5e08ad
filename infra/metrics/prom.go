package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/crewplan/core/metrics"
	"github.com/kilianp07/crewplan/core/model"
)

// PromSink records projections in Prometheus metrics.
type PromSink struct {
	projections *prometheus.CounterVec
	finish      *prometheus.GaugeVec
	variance    *prometheus.GaugeVec
	workDays    *prometheus.GaugeVec
	duration    *prometheus.HistogramVec
	scenarios   *prometheus.CounterVec
}

// NewPromSink registers projection metrics on the default Prometheus registerer.
// The Prometheus endpoint is served separately, see StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by an earlier sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	var err error
	s := &PromSink{}
	if s.projections, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crewplan_projections_total",
		Help: "Total number of projections by outcome",
	}, []string{"plan", "outcome"})); err != nil {
		return nil, err
	}
	if s.finish, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "crewplan_projection_finish_timestamp_seconds",
		Help: "Projected finish date of the latest projection",
	}, []string{"plan"})); err != nil {
		return nil, err
	}
	if s.variance, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "crewplan_deadline_variance_business_days",
		Help: "Business days between finish and deadline, positive when early",
	}, []string{"plan"})); err != nil {
		return nil, err
	}
	if s.workDays, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "crewplan_projection_work_days",
		Help: "Business days worked across all spans",
	}, []string{"plan"})); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crewplan_projection_duration_seconds",
		Help:    "Time spent computing a projection",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	}, []string{"plan"})); err != nil {
		return nil, err
	}
	if s.scenarios, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crewplan_scenarios_total",
		Help: "Crew-count scenarios evaluated",
	}, []string{"plan", "stalled"})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordProjection updates the counters and gauges for the plan.
func (s *PromSink) RecordProjection(p model.Projection) error {
	s.projections.WithLabelValues(p.Plan, p.Outcome()).Inc()
	s.duration.WithLabelValues(p.Plan).Observe(p.Elapsed.Seconds())
	if p.Stalled {
		return nil
	}
	s.finish.WithLabelValues(p.Plan).Set(float64(p.Finish.Unix()))
	s.workDays.WithLabelValues(p.Plan).Set(float64(p.WorkDays()))
	if p.Deadline != nil {
		s.variance.WithLabelValues(p.Plan).Set(float64(p.BusinessDaysVariance))
	}
	return nil
}

// RecordScenarioRun counts evaluated and stalled scenarios.
func (s *PromSink) RecordScenarioRun(ev coremetrics.ScenarioRun) error {
	s.scenarios.WithLabelValues(ev.Plan, "false").Add(float64(ev.Scenarios - ev.Stalled))
	s.scenarios.WithLabelValues(ev.Plan, "true").Add(float64(ev.Stalled))
	return nil
}
