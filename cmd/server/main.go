package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"partnerdesk/internal/editsession"
	sessionhandler "partnerdesk/internal/editsession/handler"
	partnerhandler "partnerdesk/internal/partner/handler"
	"partnerdesk/internal/platform/config"
	"partnerdesk/internal/platform/httpserver"
	"partnerdesk/internal/platform/logger"
	"partnerdesk/internal/platform/metrics"
	"partnerdesk/internal/staffauth"
	subscriberhandler "partnerdesk/internal/subscriber/handler"
	httptransport "partnerdesk/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal service packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry()
	app, err := buildApp(ctx, cfg, log, reg)
	if err != nil {
		return err
	}
	defer app.close()

	sweeper, err := editsession.NewSweeper(app.sessions, cfg.Session.SweepSchedule, log, app.sweeps...)
	if err != nil {
		return err
	}
	sweeper.Start()

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:    log,
		Validator: staffauth.New(cfg.Auth),
		Handlers: []httptransport.Registrar{
			partnerhandler.New(app.partners, app.vat, log,
				partnerhandler.WithRegistryLimit(app.registry.Handler),
			),
			subscriberhandler.New(app.subscribers, log),
			sessionhandler.New(app.sessions, log,
				sessionhandler.WithRegistryLimit(app.registry.Handler),
			),
		},
		Health:  httptransport.NewHealth(app.healthChecks, app.vat.ProviderHealth),
		Metrics: metrics.Handler(reg),
	})

	srv := httpserver.New(cfg.Server, router, log)
	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting partnerdesk",
			"addr", cfg.Server.Addr,
			"environment", cfg.Server.Environment,
			"postgres", app.db != nil,
			"redis", app.redis != nil,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	sweeper.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
