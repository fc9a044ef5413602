package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"centime/internal/amqp"
	"centime/internal/cli"
	"centime/internal/log"
	"centime/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	logger.Info("Starting notify-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the notify worker")
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	amqpClient := cli.InitAMQP(logger, cfg)
	if amqpClient == nil {
		logger.Error("Failed to connect to AMQP broker")
		os.Exit(1)
	}
	defer amqpClient.Close()

	notifyWorker := worker.NewNotifyWorker(repo)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Consuming notification events",
		log.FieldOperation, log.OpConsume, "queue", cfg.AMQPQueue)
	err := amqpClient.ConsumeNotifications(ctx, func(event *amqp.NotificationEvent) error {
		return notifyWorker.Handle(ctx, event)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Consumer stopped with error", log.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Notify-worker shutdown complete")
}
