package metrics

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kilianp07/crewplan/core/factory"
)

var sinkRegistry = factory.NewRegistry[MetricsSink]()

// RegisterMetricsSink adds a metrics sink factory identified by name.
func RegisterMetricsSink(name string, f factory.Factory[MetricsSink]) error {
	return sinkRegistry.Register(name, f)
}

// SinkTypes lists the registered sink names.
func SinkTypes() []string {
	return sinkRegistry.Types()
}

// NewMetricsSink creates a MetricsSink from the provided configuration.
func NewMetricsSink(cfgs []factory.ModuleConfig) (MetricsSink, error) {
	if len(cfgs) == 0 {
		return NopSink{}, nil
	}
	if len(cfgs) == 1 {
		return create(cfgs[0])
	}
	sinks := make([]MetricsSink, len(cfgs))
	for i, c := range cfgs {
		s, err := create(c)
		if err != nil {
			return nil, err
		}
		sinks[i] = s
	}
	return NewMultiSink(sinks...), nil
}

func create(cfg factory.ModuleConfig) (MetricsSink, error) {
	types := SinkTypes()
	if !slices.Contains(types, cfg.Type) {
		return nil, fmt.Errorf("unknown metrics sink %q (available: %s)", cfg.Type, strings.Join(types, ", "))
	}
	return sinkRegistry.Create(cfg)
}
