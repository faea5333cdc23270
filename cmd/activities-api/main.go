// cmd/activities-api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"mergington-activities/internal/app"
	"mergington-activities/internal/common/config"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog, err := logger.New(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		zap.NewExample().Fatal("logger init failed", zap.Error(err))
	}
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})
	log.Info("Starting activities API...", map[string]interface{}{"environment": cfg.App.Environment})

	obs := observability.New(cfg.App.Name, observability.Config{
		TracingEnabled: cfg.Observability.Tracing.Enabled,
		JaegerEndpoint: cfg.Observability.Tracing.JaegerEndpoint,
		SampleRatio:    cfg.Observability.Tracing.SampleRatio,
	})
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.Connect(ctx, cfg, log, app.DefaultRetryPolicy)
	if err != nil {
		zapLog.Fatal("backend connection failed", zap.Error(err))
	}

	application, err := app.New(cfg, log, obs, deps)
	if err != nil {
		deps.Close(log)
		zapLog.Fatal("application init failed", zap.Error(err))
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- application.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received, stopping server...", nil)
	case err := <-serveErr:
		if err != nil {
			log.WithError(err).Error("HTTP server stopped unexpectedly", nil)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown incomplete", nil)
	}

	log.Info("Activities API stopped gracefully", nil)
}
