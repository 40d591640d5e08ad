package metrics

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/crewplan/core/metrics"
	"github.com/kilianp07/crewplan/core/model"
	"github.com/kilianp07/crewplan/infra/mqtt"
)

func TestMQTTSink_RecordProjection(t *testing.T) {
	pub := mqtt.NewMockPublisher()
	sink := NewMQTTSink(pub, "site")
	p := sampleProjection()
	p.Plan = "Bridge 7-36B"
	require.NoError(t, sink.RecordProjection(p))

	sent := pub.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "site/bridge-7-36b/projection", sent[0].Topic)
	var got model.Projection
	require.NoError(t, json.Unmarshal(sent[0].Payload, &got))
	assert.Equal(t, p.ID, got.ID)
	assert.True(t, got.Finish.Equal(p.Finish))
	assert.Len(t, got.Curve, len(p.Curve))
}

func TestMQTTSink_RecordScenarioRunAndClose(t *testing.T) {
	pub := mqtt.NewMockPublisher()
	sink := NewMQTTSink(pub, "site")
	ev := coremetrics.ScenarioRun{Plan: "bridge", Scenarios: 3, Stalled: 1, Duration: 2 * time.Millisecond, Time: time.Now()}
	require.NoError(t, sink.RecordScenarioRun(ev))
	sent := pub.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "site/bridge/scenarios", sent[0].Topic)
	assert.Contains(t, string(sent[0].Payload), `"stalled":1`)

	require.NoError(t, sink.Close())
	assert.True(t, pub.Disconnected)
}

func TestMQTTSink_PublishError(t *testing.T) {
	pub := mqtt.NewMockPublisher()
	pub.FailTopics["site/bridge/projection"] = true
	sink := NewMQTTSink(pub, "site")
	assert.Error(t, sink.RecordProjection(sampleProjection()))
}
