package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kilianp07/crewplan/api/projections"
	"github.com/kilianp07/crewplan/config"
	coremetrics "github.com/kilianp07/crewplan/core/metrics"
	"github.com/kilianp07/crewplan/core/model"
	coremon "github.com/kilianp07/crewplan/core/monitoring"
	"github.com/kilianp07/crewplan/core/projection"
	"github.com/kilianp07/crewplan/core/projection/logging"
	"github.com/kilianp07/crewplan/infra/logger"
	"github.com/kilianp07/crewplan/infra/metrics"
	"github.com/kilianp07/crewplan/infra/monitoring"
	"github.com/kilianp07/crewplan/infra/mqtt"
	"github.com/kilianp07/crewplan/internal/eventbus"
)

// busBuffer holds enough projections for a large scenario run between
// collector wake-ups.
const busBuffer = 64

// Service wires the projector to its store, metrics sinks and HTTP API.
type Service struct {
	Projector *projection.Projector
	Store     logging.LogStore

	cfg       *config.Config
	bus       *eventbus.Bus[model.Projection]
	sink      coremetrics.MetricsSink
	collected <-chan struct{}
	log       logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	store, err := logging.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("projection store: %w", err)
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("metrics sinks: %w", err)
	}
	if cfg.MQTT.Broker != "" {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		sink = coremetrics.NewMultiSink(sink, metrics.NewMQTTSink(client, cfg.MQTT.TopicPrefix))
	}

	bus := eventbus.New[model.Projection](busBuffer)
	collected := metrics.StartEventCollector(context.Background(), bus, sink, logger.New("collector"))

	pcfg := projection.Config{Scheduler: cfg.Scheduler, Parallelism: cfg.Scenarios.Parallelism}
	svc := &Service{
		Projector: projection.New(pcfg, store, bus, sink, logger.New("projector")),
		Store:     store,
		cfg:       cfg,
		bus:       bus,
		sink:      sink,
		collected: collected,
		log:       logg,
	}
	logg.Infof("store %s at %s, %d metrics sink(s)", cfg.Store.Backend, cfg.Store.Path, len(cfg.Metrics.Sinks))
	return svc, nil
}

// Handler returns the HTTP API together with the Prometheus endpoint.
func (s *Service) Handler() http.Handler {
	token := s.cfg.API.Token
	mux := http.NewServeMux()
	mux.Handle("/api/projections", projections.NewProjectHandler(s.Projector, token))
	mux.Handle("/api/projections/logs", projections.NewLogHandler(s.Store, token))
	mux.Handle("/api/scenarios", projections.NewScenarioHandler(s.Projector, token))
	mux.Handle("/metrics", metrics.Handler(nil))
	return mux
}

// Run serves the HTTP API and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if port := s.cfg.Metrics.PrometheusPort; port != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, port); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	srv := &http.Server{Addr: s.cfg.API.Address, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
		cancel()
	}()
	s.log.Infof("serving api on %s", s.cfg.API.Address)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close drains pending projections into the sinks and releases resources
// held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	<-s.collected
	var errs []error
	if c, ok := s.sink.(coremetrics.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("metrics sinks: %w", err))
		}
	}
	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("projection store: %w", err))
	}
	coremon.Flush(2 * time.Second)
	return errors.Join(errs...)
}
