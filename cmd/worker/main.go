package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"enrolld/internal/agegroup"
	"enrolld/internal/enrollment"
	"enrolld/internal/enrollment/metrics"
	"enrolld/internal/platform/bootstrap"
	"enrolld/internal/platform/config"
	"enrolld/internal/platform/logger"
)

// main runs the enrollment processing side: a pool of competing workers
// draining the queue plus the staleness sweeper that recovers stuck records.
func main() {
	cfg := config.FromEnv()
	log := logger.New("enrolld-worker", cfg.LogLevel, cfg.AppEnv)

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
	sweeper := enrollment.NewSweeper(stores.Enrollments, q, log, enrollMetrics, cfg.SweepInterval, cfg.StaleAfter)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.WorkerCount; i++ {
		worker := enrollment.NewWorker(stores.Enrollments, stores.Users, groups, q, log.With("worker", i), enrollMetrics)
		worker.SetReceiveTimeout(cfg.ReceiveTimeout)
		g.Go(func() error { return worker.Run(gctx) })
	}
	g.Go(func() error { return sweeper.Run(gctx) })

	log.Info("workers started",
		"count", cfg.WorkerCount,
		"queue_driver", cfg.QueueDriver,
		"sweep_interval", cfg.SweepInterval,
		"stale_after", cfg.StaleAfter,
	)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("worker pool stopped", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
