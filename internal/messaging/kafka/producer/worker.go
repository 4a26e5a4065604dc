package producer

import (
	"context"
	"time"

	"go-employee/internal/messaging/kafka"

	"go.uber.org/zap"
)

const (
	DefaultPollInterval = 3 * time.Second
	DefaultBatchSize    = 50
)

// Worker relays due outbox rows to the broker.
type Worker struct {
	repo         kafka.OutboxRepository
	writer       MessageWriter
	log          *zap.Logger
	metrics      *Metrics
	pollInterval time.Duration
	batchSize    int
}

type Option func(*Worker)

func WithMetrics(m *Metrics) Option {
	return func(w *Worker) { w.metrics = m }
}

func WithPollInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

func NewWorker(repo kafka.OutboxRepository, writer MessageWriter, logger *zap.Logger, opts ...Option) *Worker {
	w := &Worker{
		repo:         repo,
		writer:       writer,
		log:          logger.Named("outbox.relay"),
		pollInterval: DefaultPollInterval,
		batchSize:    DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.log.Info("outbox relay started",
		zap.Duration("poll_interval", w.pollInterval),
		zap.Int("batch_size", w.batchSize),
	)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("outbox relay stopped")
			return
		case <-ticker.C:
			if _, err := w.Flush(ctx); err != nil && ctx.Err() == nil {
				w.log.Error("outbox relay poll failed", zap.Error(err))
			}
		}
	}
}

// Flush publishes one batch of due rows and returns how many were sent.
// A row that fails to publish is marked failed and the batch continues.
func (w *Worker) Flush(ctx context.Context) (int, error) {
	due, err := w.repo.ListDue(ctx, w.batchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, event := range due {
		log := w.log.With(
			zap.String("outbox_id", event.ID),
			zap.String("event_type", event.EventType),
			zap.String("employee_id", event.AggregateID),
		)

		if err := w.writer.WriteMessages(ctx, toMessage(event)); err != nil {
			w.metrics.failed(event.EventType)
			log.Warn("publish failed", zap.Int("attempt", event.Attempts+1), zap.Error(err))
			if event.Attempts+1 >= kafka.MaxDeliveryAttempts {
				log.Error("outbox event parked as dead", zap.Int("attempts", event.Attempts+1))
			}
			if err := w.repo.MarkFailed(ctx, event.ID, err.Error()); err != nil {
				log.Error("mark failed", zap.Error(err))
			}
			continue
		}

		if err := w.repo.MarkSent(ctx, event.ID); err != nil {
			log.Error("mark sent", zap.Error(err))
			continue
		}
		w.metrics.published(event.EventType)
		sent++
		log.Debug("published", zap.String("request_id", event.RequestID))
	}

	if w.metrics != nil {
		if counts, err := w.repo.CountByStatus(ctx); err != nil {
			w.log.Warn("count outbox rows", zap.Error(err))
		} else {
			w.metrics.backlog(counts)
		}
	}
	return sent, nil
}
