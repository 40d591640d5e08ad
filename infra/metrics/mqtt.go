package metrics

import (
	"encoding/json"
	"fmt"

	coremetrics "github.com/kilianp07/crewplan/core/metrics"
	"github.com/kilianp07/crewplan/core/model"
	coremqtt "github.com/kilianp07/crewplan/core/mqtt"
	"github.com/kilianp07/crewplan/infra/mqtt"
)

// MQTTSink publishes projections as JSON documents, one topic per plan:
//
//	<prefix>/<plan>/projection
//	<prefix>/<plan>/scenarios
type MQTTSink struct {
	pub    coremqtt.Publisher
	prefix string
}

// NewMQTTSink wraps a connected publisher.
func NewMQTTSink(pub coremqtt.Publisher, prefix string) *MQTTSink {
	return &MQTTSink{pub: pub, prefix: prefix}
}

// RecordProjection publishes the full projection record.
func (s *MQTTSink) RecordProjection(p model.Projection) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode projection: %w", err)
	}
	return s.pub.Publish(mqtt.Topic(s.prefix, p.Plan, "projection"), payload)
}

// RecordScenarioRun publishes a scenario batch summary.
func (s *MQTTSink) RecordScenarioRun(ev coremetrics.ScenarioRun) error {
	payload, err := json.Marshal(struct {
		Plan       string  `json:"plan"`
		Scenarios  int     `json:"scenarios"`
		Stalled    int     `json:"stalled"`
		DurationMS float64 `json:"duration_ms"`
		Timestamp  int64   `json:"timestamp"`
	}{ev.Plan, ev.Scenarios, ev.Stalled, round3(ev.Duration.Seconds() * 1000), ev.Time.UnixMilli()})
	if err != nil {
		return err
	}
	return s.pub.Publish(mqtt.Topic(s.prefix, ev.Plan, "scenarios"), payload)
}

// Close disconnects the underlying publisher.
func (s *MQTTSink) Close() error {
	s.pub.Disconnect()
	return nil
}
