// Package handlers implements the newsd subcommands. Each handler
// loads configuration, opens the store, runs the startup health check,
// and hands a signal-aware context to its service.
package handlers

import (
	"context"
	"os/signal"
	"syscall"

	"newsengine/internal/config"
	"newsengine/internal/health"
	"newsengine/internal/logger"
	"newsengine/internal/metrics"
	"newsengine/internal/persistence"
)

// bootstrap performs the shared startup sequence and invokes run with
// a context cancelled on SIGINT/SIGTERM. The store is closed on return.
func bootstrap(parent context.Context, service string, run func(ctx context.Context, cfg *config.Config, store *persistence.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := persistence.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := health.Check(ctx, store); err != nil {
		return err
	}

	metrics.Serve(cfg.MetricsAddr)
	logger.Info("service starting",
		"service", service, "instance", cfg.ServiceInstance)
	return run(ctx, cfg, store)
}
