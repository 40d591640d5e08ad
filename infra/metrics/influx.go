package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/crewplan/core/metrics"
	"github.com/kilianp07/crewplan/core/model"
	"github.com/kilianp07/crewplan/infra/logger"
)

// InfluxConfig defines the InfluxDB endpoint used by InfluxSink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes projections and their production curves to InfluxDB.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordProjection writes a projection summary point followed by one point
// per curve entry. Curve points are stamped with their production date.
func (s *InfluxSink) RecordProjection(p model.Projection) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	summary := write.NewPointWithMeasurement("projection").
		AddTag("plan", p.Plan).
		AddTag("outcome", p.Outcome()).
		AddTag("projection_id", p.ID).
		AddField("base_crews", p.BaseCrews).
		AddField("work_days", p.WorkDays()).
		AddField("units", round3(p.Units())).
		AddField("elapsed_ms", round3(p.Elapsed.Seconds()*1000))
	if !p.Stalled {
		summary = summary.AddField("finish", p.Finish.Format(time.DateOnly))
	}
	if p.Deadline != nil && !p.Stalled {
		summary = summary.AddField("business_days_variance", p.BusinessDaysVariance).
			AddField("calendar_days_variance", p.CalendarDaysVariance)
	}
	summary = summary.SetTime(p.Timestamp)
	points := []*write.Point{summary}
	for _, c := range p.Curve {
		points = append(points, write.NewPointWithMeasurement("production_curve").
			AddTag("plan", p.Plan).
			AddTag("span", c.Span).
			AddTag("projection_id", p.ID).
			AddField("cumulative", round3(c.Cumulative)).
			AddField("display", round3(c.Display)).
			SetTime(c.Date))
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// RecordScenarioRun writes a scenario batch summary.
func (s *InfluxSink) RecordScenarioRun(ev coremetrics.ScenarioRun) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("scenario_run").
		AddTag("plan", ev.Plan).
		AddField("scenarios", ev.Scenarios).
		AddField("stalled", ev.Stalled).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the HTTP client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
