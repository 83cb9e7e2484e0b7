// Package journal records every step of a booking attempt in MySQL so that a
// payment which never became a booking can be found and reconciled.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"eventspot/logger"
)

type Status string

const (
	StatusOrderCreated Status = "order_created"
	StatusCancelled    Status = "cancelled"
	StatusFailed       Status = "payment_failed"
	StatusVerified     Status = "verified"
	StatusUnverified   Status = "verify_failed"
	StatusBooked       Status = "booked"
	StatusNotBooked    Status = "booking_failed"
	StatusError        Status = "error"
)

// Attempt is one row of booking_attempts.
type Attempt struct {
	ID        string
	EventID   string
	Tickets   int
	Amount    float64
	OrderID   string
	PaymentID string
	Status    Status
	Message   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	upsertAttempt = `INSERT INTO booking_attempts
		(attempt_id, event_id, tickets, amount, order_id, payment_id, status, message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE order_id = VALUES(order_id), payment_id = VALUES(payment_id),
		status = VALUES(status), message = VALUES(message), updated_at = VALUES(updated_at)`

	selectUnbooked = `SELECT attempt_id, event_id, tickets, amount, order_id, payment_id, status, message, created_at, updated_at
		FROM booking_attempts WHERE payment_id <> '' AND status <> ? ORDER BY created_at`

	createTable = `CREATE TABLE IF NOT EXISTS booking_attempts (
		attempt_id VARCHAR(36) NOT NULL PRIMARY KEY,
		event_id VARCHAR(64) NOT NULL,
		tickets INT NOT NULL,
		amount DECIMAL(12,2) NOT NULL,
		order_id VARCHAR(64) NOT NULL DEFAULT '',
		payment_id VARCHAR(64) NOT NULL DEFAULT '',
		status VARCHAR(32) NOT NULL,
		message VARCHAR(512) NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)`
)

type Journal struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Journal {
	return &Journal{db: db, now: time.Now}
}

// Migrate creates the booking_attempts table when it is missing.
func (j *Journal) Migrate(ctx context.Context) error {
	if _, err := j.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("migrate: unable to create booking_attempts: %w", err)
	}
	return nil
}

// Record writes the latest state of an attempt.
func (j *Journal) Record(ctx context.Context, a Attempt) error {
	now := j.now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	_, err := j.db.ExecContext(ctx, upsertAttempt,
		a.ID, a.EventID, a.Tickets, a.Amount, a.OrderID, a.PaymentID, string(a.Status), a.Message, a.CreatedAt, now)
	if err != nil {
		logger.Errorf(ctx, "journal: unable to record attempt %s: %+v", a.ID, err)
		return fmt.Errorf("record: unable to write attempt %s: %w", a.ID, err)
	}
	return nil
}

// Unbooked lists attempts that were paid at the gateway but never booked.
func (j *Journal) Unbooked(ctx context.Context) ([]Attempt, error) {
	rows, err := j.db.QueryContext(ctx, selectUnbooked, string(StatusBooked))
	if err != nil {
		return nil, fmt.Errorf("unbooked: query failed: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var status string
		if err := rows.Scan(&a.ID, &a.EventID, &a.Tickets, &a.Amount, &a.OrderID, &a.PaymentID, &status, &a.Message, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("unbooked: scan failed: %w", err)
		}
		a.Status = Status(status)
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unbooked: rows failed: %w", err)
	}
	return attempts, nil
}
