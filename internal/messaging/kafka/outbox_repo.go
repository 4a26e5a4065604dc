package kafka

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Outbox row states. Rows move pending -> sent, or pending -> failed ->
// ... -> dead once MaxDeliveryAttempts is reached.
const (
	OutboxStatusPending = "pending"
	OutboxStatusSent    = "sent"
	OutboxStatusFailed  = "failed"
	OutboxStatusDead    = "dead"
)

// MaxDeliveryAttempts is how many failed publishes a row gets before it is
// parked as dead.
const MaxDeliveryAttempts = 8

// OutboxEvent is one message waiting to be relayed to the broker. It is
// written in the same transaction as the employee change it describes.
type OutboxEvent struct {
	ID            string
	RequestID     string
	AggregateType string
	AggregateID   string
	EventType     string
	Topic         string
	Payload       []byte
	Status        string
	Attempts      int
	NextAttemptAt time.Time
}

//go:generate mockgen -source=outbox_repo.go -destination=mock/outbox_repo_mock.go -package=mock

type OutboxRepository interface {
	WithTx(tx *sql.Tx) OutboxRepository
	Create(ctx context.Context, event OutboxEvent) error
	ListDue(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, reason string) error
	CountByStatus(ctx context.Context) (map[string]int, error)
}

var outboxSchema = []string{
	`CREATE TABLE IF NOT EXISTS employee_outbox (
	id              UUID PRIMARY KEY,
	request_id      TEXT NOT NULL DEFAULT '',
	aggregate_type  TEXT NOT NULL,
	aggregate_id    UUID NOT NULL,
	event_type      TEXT NOT NULL,
	topic           TEXT NOT NULL,
	payload         JSONB NOT NULL,
	status          TEXT NOT NULL,
	attempts        INT NOT NULL DEFAULT 0,
	last_error      TEXT,
	next_attempt_at TIMESTAMPTZ,
	sent_at         TIMESTAMPTZ,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE INDEX IF NOT EXISTS employee_outbox_due_idx ON employee_outbox (status, next_attempt_at)`,
}

// EnsureOutboxTable creates the outbox table and its index if missing.
func EnsureOutboxTable(ctx context.Context, db *sql.DB) error {
	for _, stmt := range outboxSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure outbox schema: %w", err)
		}
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type outboxRepository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewOutboxRepository(db *sql.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

// WithTx returns a repository whose writes join tx.
func (r *outboxRepository) WithTx(tx *sql.Tx) OutboxRepository {
	return &outboxRepository{db: r.db, tx: tx}
}

func (r *outboxRepository) conn() execer {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *outboxRepository) Create(ctx context.Context, event OutboxEvent) error {
	if err := ValidateOutboxEvent(event); err != nil {
		return err
	}

	_, err := r.conn().ExecContext(ctx, `
INSERT INTO employee_outbox
	(id, request_id, aggregate_type, aggregate_id, event_type, topic, payload, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.ID, event.RequestID, event.AggregateType, event.AggregateID,
		event.EventType, event.Topic, event.Payload, event.Status,
	)
	return err
}

// ListDue returns up to limit rows that are pending, or failed with their
// retry time reached, oldest first.
func (r *outboxRepository) ListDue(ctx context.Context, limit int) ([]OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id::text, request_id, aggregate_type, aggregate_id::text, event_type,
	topic, payload, status, attempts, COALESCE(next_attempt_at, created_at)
FROM employee_outbox
WHERE status IN ($1, $2) AND (next_attempt_at IS NULL OR next_attempt_at <= NOW())
ORDER BY created_at
LIMIT $3`,
		OutboxStatusPending, OutboxStatusFailed, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []OutboxEvent
	for rows.Next() {
		var e OutboxEvent
		err := rows.Scan(&e.ID, &e.RequestID, &e.AggregateType, &e.AggregateID, &e.EventType,
			&e.Topic, &e.Payload, &e.Status, &e.Attempts, &e.NextAttemptAt)
		if err != nil {
			return nil, err
		}
		due = append(due, e)
	}
	return due, rows.Err()
}

func (r *outboxRepository) MarkSent(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE employee_outbox
SET status = $2, sent_at = NOW(), last_error = NULL, updated_at = NOW()
WHERE id = $1`,
		id, OutboxStatusSent,
	)
	return err
}

// MarkFailed records a failed publish. The next attempt backs off 15s per
// attempt, capped at 2 minutes; the row goes dead at MaxDeliveryAttempts.
func (r *outboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE employee_outbox
SET status = CASE WHEN attempts + 1 >= $4 THEN $5 ELSE $2 END,
	attempts = attempts + 1,
	last_error = LEFT($3, 500),
	next_attempt_at = NOW() + LEAST(attempts + 1, 8) * INTERVAL '15 seconds',
	updated_at = NOW()
WHERE id = $1`,
		id, OutboxStatusFailed, reason, MaxDeliveryAttempts, OutboxStatusDead,
	)
	return err
}

// CountByStatus reports the number of rows in each status.
func (r *outboxRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM employee_outbox GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func ValidateOutboxEvent(event OutboxEvent) error {
	switch {
	case event.ID == "":
		return errors.New("outbox id is required")
	case event.Topic == "":
		return errors.New("outbox topic is required")
	case len(event.Payload) == 0:
		return errors.New("outbox payload is required")
	}
	if event.Status != OutboxStatusPending {
		return fmt.Errorf("new outbox event must be %s, got %q", OutboxStatusPending, event.Status)
	}
	return nil
}
