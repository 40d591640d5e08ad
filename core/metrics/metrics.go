package metrics

import (
	"time"

	"github.com/kilianp07/crewplan/core/model"
)

// MetricsSink records projections for observability purposes.
type MetricsSink interface {
	RecordProjection(p model.Projection) error
}

// ScenarioRun summarises a batch of crew-count scenarios for one plan.
type ScenarioRun struct {
	Plan      string
	Scenarios int
	Stalled   int
	Duration  time.Duration
	Time      time.Time
}

// ScenarioRecorder is implemented by sinks able to record scenario batches.
type ScenarioRecorder interface {
	RecordScenarioRun(ev ScenarioRun) error
}

// Closer is implemented by sinks holding connections that must be released.
type Closer interface {
	Close() error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordProjection(model.Projection) error { return nil }
func (NopSink) RecordScenarioRun(ScenarioRun) error     { return nil }

// MultiSink fans projections out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordProjection forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordProjection(p model.Projection) error {
	for _, s := range m.Sinks {
		if err := s.RecordProjection(p); err != nil {
			return err
		}
	}
	return nil
}

// RecordScenarioRun forwards scenario batches when supported by the sink.
func (m *MultiSink) RecordScenarioRun(ev ScenarioRun) error {
	for _, s := range m.Sinks {
		if r, ok := s.(ScenarioRecorder); ok {
			if err := r.RecordScenarioRun(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close releases every sink that holds resources.
func (m *MultiSink) Close() error {
	var first error
	for _, s := range m.Sinks {
		if c, ok := s.(Closer); ok {
			if err := c.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
