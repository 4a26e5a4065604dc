package producer_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go-employee/internal/events"
	"go-employee/internal/messaging/kafka"
	kafkaMock "go-employee/internal/messaging/kafka/mock"
	"go-employee/internal/messaging/kafka/producer"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type fakeWriter struct {
	written []kafkago.Message
	failFor map[string]error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		if err, ok := w.failFor[string(m.Key)]; ok {
			return err
		}
		w.written = append(w.written, m)
	}
	return nil
}

func header(m kafkago.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestWorker_Flush(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes and marks sent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := kafkaMock.NewMockOutboxRepository(ctrl)
		writer := &fakeWriter{}

		repo.EXPECT().ListDue(ctx, producer.DefaultBatchSize).Return([]kafka.OutboxEvent{
			{ID: "o-1", AggregateID: "emp-1", EventType: events.EmployeeCreated, Topic: events.EmployeeLifecycleTopic, Payload: []byte(`{}`), RequestID: "r-1"},
			{ID: "o-2", AggregateID: "emp-2", EventType: events.EmployeeDeleted, Topic: events.EmployeeLifecycleTopic, Payload: []byte(`{}`), Attempts: 2},
		}, nil)
		repo.EXPECT().MarkSent(ctx, "o-1").Return(nil)
		repo.EXPECT().MarkSent(ctx, "o-2").Return(nil)

		sent, err := producer.NewWorker(repo, writer, zap.NewNop()).Flush(ctx)

		require.NoError(t, err)
		assert.Equal(t, 2, sent)
		require.Len(t, writer.written, 2)

		first := writer.written[0]
		assert.Equal(t, "emp-1", string(first.Key))
		assert.Equal(t, events.EmployeeLifecycleTopic, first.Topic)
		assert.Equal(t, "r-1", header(first, "request_id"))
		assert.Equal(t, "1", header(first, "attempt"))

		second := writer.written[1]
		assert.Empty(t, header(second, "request_id"))
		assert.Equal(t, "3", header(second, "attempt"))
		assert.Equal(t, "o-2", header(second, "outbox_id"))
	})

	t.Run("publish failure marks failed and continues", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := kafkaMock.NewMockOutboxRepository(ctrl)
		writer := &fakeWriter{failFor: map[string]error{"emp-1": errors.New("broker down")}}

		repo.EXPECT().ListDue(ctx, 10).Return([]kafka.OutboxEvent{
			{ID: "o-1", AggregateID: "emp-1", EventType: events.EmployeeUpdated, Topic: "t", Payload: []byte(`{}`)},
			{ID: "o-2", AggregateID: "emp-2", EventType: events.EmployeeUpdated, Topic: "t", Payload: []byte(`{}`)},
		}, nil)
		repo.EXPECT().MarkFailed(ctx, "o-1", "broker down").Return(nil)
		repo.EXPECT().MarkSent(ctx, "o-2").Return(nil)

		sent, err := producer.NewWorker(repo, writer, zap.NewNop(), producer.WithBatchSize(10)).Flush(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, sent)
	})

	t.Run("list failure is returned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := kafkaMock.NewMockOutboxRepository(ctrl)

		repo.EXPECT().ListDue(ctx, producer.DefaultBatchSize).Return(nil, errors.New("db down"))

		sent, err := producer.NewWorker(repo, &fakeWriter{}, zap.NewNop()).Flush(ctx)

		assert.EqualError(t, err, "db down")
		assert.Zero(t, sent)
	})
}

func TestWorker_Metrics(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	repo := kafkaMock.NewMockOutboxRepository(ctrl)
	writer := &fakeWriter{failFor: map[string]error{"emp-2": errors.New("broker down")}}

	reg := prometheus.NewRegistry()
	metrics := producer.NewMetrics(reg)

	repo.EXPECT().ListDue(ctx, producer.DefaultBatchSize).Return([]kafka.OutboxEvent{
		{ID: "o-1", AggregateID: "emp-1", EventType: events.EmployeeCreated, Topic: "t", Payload: []byte(`{}`)},
		{ID: "o-2", AggregateID: "emp-2", EventType: events.EmployeeCreated, Topic: "t", Payload: []byte(`{}`)},
	}, nil)
	repo.EXPECT().MarkSent(ctx, "o-1").Return(nil)
	repo.EXPECT().MarkFailed(ctx, "o-2", "broker down").Return(nil)
	repo.EXPECT().CountByStatus(ctx).Return(map[string]int{
		kafka.OutboxStatusSent:   1,
		kafka.OutboxStatusFailed: 1,
	}, nil)

	_, err := producer.NewWorker(repo, writer, zap.NewNop(), producer.WithMetrics(metrics)).Flush(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Published.WithLabelValues(events.EmployeeCreated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Failed.WithLabelValues(events.EmployeeCreated)))

	expected := `
# HELP employee_outbox_events Outbox rows by status after the last poll.
# TYPE employee_outbox_events gauge
employee_outbox_events{status="failed"} 1
employee_outbox_events{status="sent"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "employee_outbox_events"))
}

func TestWorker_RunStopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := kafkaMock.NewMockOutboxRepository(ctrl)
	repo.EXPECT().ListDue(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		producer.NewWorker(repo, &fakeWriter{}, zap.NewNop(), producer.WithPollInterval(time.Millisecond)).Run(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
