package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"go-employee/internal/bootstrap"
	"go-employee/internal/config"
	"go-employee/internal/events"
	"go-employee/internal/messaging/kafka/consumer"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const lifecycleConsumerGroup = "employee-directory-audit"

// RunConsumer writes an audit line for every employee lifecycle event until
// SIGINT or SIGTERM.
func RunConsumer(cfg config.Config) error {
	logger := zap.L().Named("app.consumer")

	if cfg.KafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{cfg.KafkaBroker},
		Topic:          events.EmployeeLifecycleTopic,
		GroupID:        lifecycleConsumerGroup,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer.NewLifecycleConsumer(reader, AuditLifecycle(bootstrap.NewStdoutAuditLogger()), logger).Run(ctx)

	logger.Info("consumer shutting down")
	return nil
}

// AuditLifecycle records each lifecycle event through audit.
func AuditLifecycle(audit bootstrap.AuditLogger) consumer.LifecycleHandler {
	return func(ctx context.Context, event events.EmployeeLifecycleEvent) error {
		audit.Log(ctx, bootstrap.AuditLog{
			Action:  event.EventType,
			Message: "employee " + event.EmployeeID,
			Meta: map[string]any{
				"employee_id": event.EmployeeID,
				"email":       event.Email,
				"request_id":  event.RequestID,
				"occurred_at": event.OccurredAt,
			},
		})
		return nil
	}
}
