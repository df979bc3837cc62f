package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go-hrpayroll/internal/config"
	"go-hrpayroll/internal/events"
	"go-hrpayroll/internal/messaging/kafka"
	"go-hrpayroll/internal/messaging/kafka/producer"
	"go-hrpayroll/internal/metrics"
	"go-hrpayroll/internal/shared/connection"

	"go.uber.org/zap"
)

// RunWorker relays outbox rows to Kafka until interrupted.
func RunWorker(cfg *config.Config, logger *zap.Logger) error {
	logger = logger.Named("app.worker")

	deps, cleanup, err := connect(cfg, logger, false)
	if err != nil {
		return err
	}
	defer cleanup()

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.Kafka, cfg.Database.ConnectRetries, logger)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	if err := connection.EnsureTopics(cfg.Kafka.Broker, events.Topics()...); err != nil {
		logger.Warn("ensure topics failed", zap.Error(err))
	}

	outboxRepo := kafka.NewOutboxRepository(deps.sqlDB)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		producer.ProcessOutboxEvents(ctx, outboxRepo, kafkaWriter, logger, producer.Options{
			PollInterval: cfg.Outbox.PollInterval,
			BatchSize:    cfg.Outbox.BatchSize,
			Observer:     metrics.New(),
		})
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()
	<-done

	return nil
}
