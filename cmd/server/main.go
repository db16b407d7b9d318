package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"enrolld/internal/agegroup"
	agegrouphandler "enrolld/internal/agegroup/handler"
	"enrolld/internal/enrollment"
	enrollmenthandler "enrolld/internal/enrollment/handler"
	"enrolld/internal/enrollment/metrics"
	"enrolld/internal/platform/bootstrap"
	"enrolld/internal/platform/config"
	"enrolld/internal/platform/httpserver"
	"enrolld/internal/platform/logger"
	httptransport "enrolld/internal/transport/http"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New("enrolld-server", cfg.LogLevel, cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := bootstrap.BuildStores(ctx, cfg)
	if err != nil {
		log.Error("store setup failed", "error", err)
		os.Exit(1)
	}
	if stores.DB != nil {
		defer stores.DB.Close()
	}

	q, closeQueue, err := bootstrap.BuildQueue(ctx, cfg, log)
	if err != nil {
		log.Error("queue setup failed", "error", err)
		os.Exit(1)
	}
	defer closeQueue()

	enrollMetrics := metrics.New()

	groups := agegroup.NewService(stores.AgeGroups)
	enrollments := enrollment.NewService(stores.Enrollments, q, log, enrollMetrics)

	healthChecks := map[string]httptransport.HealthChecker{}
	if stores.DB != nil {
		healthChecks["postgres"] = stores.DB.PingContext
	}

	router := httptransport.NewRouter(httptransport.Deps{
		AgeGroups:     agegrouphandler.New(groups, log),
		Enrollments:   enrollmenthandler.New(enrollments, log),
		Logger:        log,
		BasicAuthUser: cfg.BasicAuthUser,
		BasicAuthPass: cfg.BasicAuthPass,
		HealthChecks:  healthChecks,
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("server listening", "addr", cfg.Addr, "queue_driver", cfg.QueueDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
