package journal

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func newJournal(t *testing.T) (*Journal, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	j := New(db)
	j.now = func() time.Time { return now }
	return j, mock
}

func TestRecord(t *testing.T) {
	j, mock := newJournal(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO booking_attempts")).
		WithArgs("a-1", "e-1", 2, 1000.0, "order_1", "", "order_created", "", now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := j.Record(context.Background(), Attempt{
		ID: "a-1", EventID: "e-1", Tickets: 2, Amount: 1000, OrderID: "order_1", Status: StatusOrderCreated,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecord_KeepsCreatedAt(t *testing.T) {
	j, mock := newJournal(t)
	created := now.Add(-time.Minute)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO booking_attempts")).
		WithArgs("a-1", "e-1", 2, 1000.0, "order_1", "pay_1", "booked", "", created, now).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := j.Record(context.Background(), Attempt{
		ID: "a-1", EventID: "e-1", Tickets: 2, Amount: 1000, OrderID: "order_1", PaymentID: "pay_1",
		Status: StatusBooked, CreatedAt: created,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecord_Error(t *testing.T) {
	j, mock := newJournal(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO booking_attempts")).WillReturnError(errors.New("connection refused"))

	err := j.Record(context.Background(), Attempt{ID: "a-1", Status: StatusError})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "a-1")
}

func TestUnbooked(t *testing.T) {
	j, mock := newJournal(t)

	rows := sqlmock.NewRows([]string{"attempt_id", "event_id", "tickets", "amount", "order_id", "payment_id", "status", "message", "created_at", "updated_at"}).
		AddRow("a-1", "e-1", 2, 1000.0, "order_1", "pay_1", "booking_failed", "Seats sold out", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM booking_attempts WHERE payment_id <> ''")).
		WithArgs("booked").
		WillReturnRows(rows)

	attempts, err := j.Unbooked(context.Background())
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, StatusNotBooked, attempts[0].Status)
	assert.Equal(t, "pay_1", attempts[0].PaymentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate(t *testing.T) {
	j, mock := newJournal(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS booking_attempts")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, j.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
