// Package metrics defines the sinks that observe projections. Sinks such as
// the Prometheus, InfluxDB and MQTT implementations in infra/metrics record
// each projection produced by the projector. The factory helpers build a
// MultiSink automatically when several sinks are configured.
package metrics
