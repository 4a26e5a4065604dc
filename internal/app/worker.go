package app

import (
	"context"
	"database/sql"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"go-employee/internal/config"
	"go-employee/internal/messaging/kafka"
	"go-employee/internal/messaging/kafka/producer"
	"go-employee/internal/shared/connection"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const outboxPollInterval = 3 * time.Second

// RunWorker publishes outbox rows to Kafka until SIGINT or SIGTERM.
func RunWorker(cfg config.Config) error {
	if cfg.KafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	gormDB, err := connection.ConnectGORMWithRetry(cfg.DSN, connectRetries)
	if err != nil {
		return err
	}
	defer connection.DisconnectGORM(gormDB)

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := kafka.EnsureOutboxTable(ctx, sqlDB); err != nil {
		return err
	}

	return RunOutboxWorker(ctx, sqlDB, cfg.KafkaBroker, nil)
}

// RunOutboxWorker relays outbox rows to the broker until ctx is cancelled.
// Relay metrics are registered on reg when it is non-nil.
func RunOutboxWorker(ctx context.Context, sqlDB *sql.DB, broker string, reg prometheus.Registerer) error {
	logger := zap.L().Named("app.worker")

	kafkaWriter, err := connection.ConnectKafkaWithRetry(broker, connectRetries)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	opts := []producer.Option{producer.WithPollInterval(outboxPollInterval)}
	if reg != nil {
		opts = append(opts, producer.WithMetrics(producer.NewMetrics(reg)))
	}
	producer.NewWorker(kafka.NewOutboxRepository(sqlDB), kafkaWriter, logger, opts...).Run(ctx)

	logger.Info("worker shutting down")
	return nil
}
