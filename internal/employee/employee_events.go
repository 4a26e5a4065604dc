package employee

import (
	"context"
	"encoding/json"
	"time"

	"go-employee/internal/events"
	"go-employee/internal/messaging/kafka"
	"go-employee/internal/shared/contextutil"

	"github.com/google/uuid"
)

func newOutboxEvent(ctx context.Context, eventType string, empl Employee, at time.Time) (kafka.OutboxEvent, error) {
	rid := contextutil.RequestID(ctx)
	payload, err := json.Marshal(events.EmployeeLifecycleEvent{
		EventType:  eventType,
		RequestID:  rid,
		EmployeeID: empl.ID.String(),
		Email:      empl.Email,
		OccurredAt: at.UTC(),
	})
	if err != nil {
		return kafka.OutboxEvent{}, err
	}

	return kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "employee",
		AggregateID:   empl.ID.String(),
		EventType:     eventType,
		Topic:         events.EmployeeLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}, nil
}
