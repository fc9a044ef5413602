package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"centime/internal/cli"
	"centime/internal/core"
	"centime/internal/log"
	"centime/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentSweep)
	logger.Info("Starting recurring-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var publisher services.NotificationPublisher
	if client := cli.InitAMQP(logger, cfg); client != nil {
		defer client.Close()
		publisher = client
	}

	alerts := services.NewAlertEngine(repo, publisher)
	transactions := services.NewTransactionService(repo, alerts)
	recurring := services.NewRecurringService(repo, transactions, publisher)
	processor := services.NewRecurringProcessor(repo, recurring)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Recurring processor configured",
		"sweep_interval", cfg.SweepInterval,
		"alert_schedule", cfg.AlertSchedule,
		"sqlite_db", cfg.SQLiteDBPath)

	sweep := func() {
		count, err := processor.ProcessDue(ctx, core.Today())
		if err != nil {
			logger.Error("Sweep failed", log.FieldOperation, log.OpSweep, log.FieldError, err)
			return
		}
		logger.Info("Sweep complete", log.FieldOperation, log.OpSweep, log.FieldCount, count)
	}

	// Alert sweeps run on a cron schedule, once a day by default, so the
	// budget and goal checks land at a predictable hour.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.AlertSchedule, func() {
		logger.Info("Running alert sweep")
		alerts.Sweep(ctx, core.Today())
	}); err != nil {
		logger.Error("Invalid alert schedule", "schedule", cfg.AlertSchedule, log.FieldError, err)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Run a sweep immediately so a worker that was down does not wait
		// a full interval to catch up.
		sweep()

		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				sweep()
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Recurring-worker shutdown complete")
}
