package consumer

import (
	"context"
	"encoding/json"
	"time"

	"go-employee/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// LifecycleHandler reacts to one decoded employee lifecycle event.
type LifecycleHandler func(ctx context.Context, event events.EmployeeLifecycleEvent) error

// LifecycleConsumer feeds employee lifecycle events to a handler.
type LifecycleConsumer struct {
	reader   MessageReader
	handle   LifecycleHandler
	log      *zap.Logger
	attempts int
	backoff  time.Duration
}

type Option func(*LifecycleConsumer)

// WithRetry sets how many times a failing handler is tried per message and
// the pause between tries.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *LifecycleConsumer) {
		if attempts > 0 {
			c.attempts = attempts
		}
		c.backoff = backoff
	}
}

func NewLifecycleConsumer(reader MessageReader, handle LifecycleHandler, logger *zap.Logger, opts ...Option) *LifecycleConsumer {
	c := &LifecycleConsumer{
		reader:   reader,
		handle:   handle,
		log:      logger.Named("employee_lifecycle.consumer"),
		attempts: 3,
		backoff:  time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run consumes until ctx is cancelled. Messages that do not decode, or carry
// an unknown event type, are committed and skipped. A message whose handler
// still fails after the retries is logged and skipped without a commit of its
// own; the next committed offset moves the group past it, so it is not
// redelivered.
func (c *LifecycleConsumer) Run(ctx context.Context) {
	c.log.Info("consumer started")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.log.Info("consumer stopped")
				return
			}
			c.log.Error("fetch message", zap.Error(err))
			continue
		}

		log := c.log.With(zap.Int("partition", msg.Partition), zap.Int64("offset", msg.Offset))

		var event events.EmployeeLifecycleEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Warn("skipping undecodable message", zap.Error(err))
			c.commit(ctx, log, msg)
			continue
		}
		if !events.IsLifecycleEvent(event.EventType) {
			log.Warn("skipping unknown event type", zap.String("event_type", event.EventType))
			c.commit(ctx, log, msg)
			continue
		}

		log = log.With(zap.String("event_type", event.EventType), zap.String("employee_id", event.EmployeeID))
		if err := c.handleWithRetry(ctx, event); err != nil {
			log.Error("handler failed after retries, skipping message", zap.Error(err))
			continue
		}
		c.commit(ctx, log, msg)
	}
}

func (c *LifecycleConsumer) handleWithRetry(ctx context.Context, event events.EmployeeLifecycleEvent) error {
	var err error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if err = c.handle(ctx, event); err == nil {
			return nil
		}
		if attempt == c.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.backoff):
		}
	}
	return err
}

func (c *LifecycleConsumer) commit(ctx context.Context, log *zap.Logger, msg kafkago.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		log.Error("commit message", zap.Error(err))
	}
}
