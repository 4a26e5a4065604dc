package events

import "time"

const EmployeeLifecycleTopic = "hr.employee.lifecycle.v1"

const (
	EmployeeCreated = "employee.created"
	EmployeeUpdated = "employee.updated"
	EmployeeDeleted = "employee.deleted"
)

// EmployeeLifecycleEvent is published for every successful write to an
// employee record.
type EmployeeLifecycleEvent struct {
	EventType  string    `json:"event_type"`
	RequestID  string    `json:"request_id,omitempty"`
	EmployeeID string    `json:"employee_id"`
	Email      string    `json:"email,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// IsLifecycleEvent reports whether eventType is one of the employee
// lifecycle event types.
func IsLifecycleEvent(eventType string) bool {
	switch eventType {
	case EmployeeCreated, EmployeeUpdated, EmployeeDeleted:
		return true
	}
	return false
}
