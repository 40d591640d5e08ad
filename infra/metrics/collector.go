package metrics

import (
	"context"

	coremetrics "github.com/kilianp07/crewplan/core/metrics"
	"github.com/kilianp07/crewplan/core/model"
	"github.com/kilianp07/crewplan/infra/logger"
	"github.com/kilianp07/crewplan/internal/eventbus"
)

// StartEventCollector subscribes to the projection bus and records every
// projection in sink. The returned channel is closed once the collector has
// drained the bus after Close, or when ctx is canceled.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[model.Projection], sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case p, ok := <-sub:
				if !ok {
					return
				}
				if err := sink.RecordProjection(p); err != nil {
					log.Errorf("record projection %s: %v", p.ID, err)
				}
			}
		}
	}()
	return done
}
