// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"mergington-activities/internal/activities"
	"mergington-activities/internal/common/config"
	apperrors "mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/observability"
	"mergington-activities/internal/events"
	"mergington-activities/internal/web"
	"mergington-activities/pkg/registry"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type readinessCheck struct {
	name  string
	check func(ctx context.Context) error
}

// App wires the registry, the event pipeline and the HTTP surface.
type App struct {
	cfg        *config.Config
	logger     logger.Logger
	deps       Dependencies
	registry   *activities.Registry
	service    *activities.Service
	dispatcher *events.Dispatcher
	checks     []readinessCheck
	handler    http.Handler
	server     *http.Server
}

// New builds the application from cfg and already-connected deps. It does
// not start listening.
func New(cfg *config.Config, log logger.Logger, obs *observability.Observability, deps Dependencies) (*App, error) {
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	seed, err := registry.LoadRegistry(cfg.Registry.SeedPath)
	if err != nil {
		return nil, fmt.Errorf("load activity seed: %w", err)
	}

	a := &App{
		cfg:      cfg,
		logger:   log,
		deps:     deps,
		registry: activities.NewRegistry(seed, cfg.Registry.EnforceCapacity),
	}

	var publisher activities.Publisher
	if cfg.Events.Enabled {
		a.dispatcher = events.NewDispatcher(events.Config{
			Workers:     cfg.Events.Workers,
			QueueSize:   cfg.Events.QueueSize,
			SinkTimeout: config.GetDuration(cfg.Events.SinkTimeout),
		}, buildSinks(cfg, deps), log, obs)
		publisher = a.dispatcher
	}

	a.service = activities.NewService(a.registry, publisher, obs, log,
		activities.WithStrictEmail(cfg.Registry.StrictEmail),
	)
	a.checks = buildChecks(deps)

	mux := http.NewServeMux()
	activities.NewHandler(a.service, log).RegisterRoutes(mux)
	web.RegisterRoutes(mux)
	mux.HandleFunc("GET /health", a.health)
	mux.HandleFunc("GET /ready", a.ready)
	mux.Handle("GET /metrics", promhttp.Handler())
	a.handler = accessLog(log, mux)

	a.server = &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      a.handler,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	log.Info("activity registry loaded", map[string]interface{}{
		"activities":      len(seed.Activities),
		"seedVersion":     seed.Version,
		"enforceCapacity": cfg.Registry.EnforceCapacity,
	})
	return a, nil
}

func buildSinks(cfg *config.Config, deps Dependencies) []events.Sink {
	var sinks []events.Sink
	if deps.Postgres != nil {
		sinks = append(sinks, events.NewPostgresSink(deps.Postgres))
	}
	if deps.Redis != nil {
		sinks = append(sinks, events.NewRedisSink(deps.Redis))
	}
	if deps.Elasticsearch != nil {
		sinks = append(sinks, events.NewElasticsearchSink(deps.Elasticsearch))
	}
	if deps.SNS != nil {
		sinks = append(sinks, events.NewSNSSink(deps.SNS))
	}
	if deps.SES != nil {
		sinks = append(sinks, events.NewSESSink(deps.SES))
	}
	if deps.Zeebe != nil {
		sinks = append(sinks, events.NewZeebeSink(deps.Zeebe, cfg.Camunda.ProcessID))
	}
	if deps.NATS != nil {
		sinks = append(sinks, events.NewNATSSink(deps.NATS))
	}
	return sinks
}

func buildChecks(deps Dependencies) []readinessCheck {
	var checks []readinessCheck
	if deps.Postgres != nil {
		checks = append(checks, readinessCheck{"postgres", deps.Postgres.Ping})
	}
	if deps.Redis != nil {
		checks = append(checks, readinessCheck{"redis", deps.Redis.Ping})
	}
	if deps.Elasticsearch != nil {
		checks = append(checks, readinessCheck{"elasticsearch", deps.Elasticsearch.Ping})
	}
	if deps.Zeebe != nil {
		checks = append(checks, readinessCheck{"zeebe", deps.Zeebe.HealthCheck})
	}
	if deps.NATS != nil {
		checks = append(checks, readinessCheck{"nats", deps.NATS.Ping})
	}
	return checks
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Service exposes the activity service.
func (a *App) Service() *activities.Service {
	return a.service
}

// Start launches the event workers.
func (a *App) Start() {
	if a.dispatcher != nil {
		a.dispatcher.Start()
	}
}

// ListenAndServe starts the dispatcher and serves until Shutdown.
func (a *App) ListenAndServe() error {
	a.Start()

	a.logger.Info("HTTP server listening", map[string]interface{}{"address": a.cfg.Server.Address})
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests, drains pending events and closes the
// backend clients.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error

	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if a.dispatcher != nil {
		if err := a.dispatcher.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("event dispatcher: %w", err))
		}
	}
	a.deps.Close(a.logger)

	return errors.Join(errs...)
}

func (a *App) health(w http.ResponseWriter, _ *http.Request) {
	apperrors.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (a *App) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(a.checks))
	for _, c := range a.checks {
		if err := c.check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			results[c.name] = err.Error()
			a.logger.WithError(err).Warn("readiness check failed", map[string]interface{}{"backend": c.name})
			continue
		}
		results[c.name] = "ok"
	}

	body := map[string]interface{}{
		"status": "ready",
		"checks": results,
		"time":   time.Now().Format(time.RFC3339),
	}
	if status != http.StatusOK {
		body["status"] = "not ready"
	}
	apperrors.WriteJSON(w, status, body)
}
