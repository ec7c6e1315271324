package notify

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var notificationColumns = []string{"id", "recipient_id", "kind", "title", "body", "related_id", "read", "created_at"}

func TestPgStore_Insert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery("INSERT INTO notifications").
		WithArgs(id, "owner-1", "new_booking", "New booking", "body", "appt-1").
		WillReturnRows(pgxmock.NewRows(notificationColumns).
			AddRow(id, "owner-1", KindNewBooking, "New booking", "body", "appt-1", false, now))

	store := NewPgStore(mock)
	n, err := store.Insert(context.Background(), Notification{
		ID:          id,
		RecipientID: "owner-1",
		Kind:        KindNewBooking,
		Title:       "New booking",
		Body:        "body",
		RelatedID:   "appt-1",
	})
	require.NoError(t, err)
	assert.Equal(t, id, n.ID)
	assert.Equal(t, KindNewBooking, n.Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgStore_ListByRecipient(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery("SELECT id, recipient_id, kind").
		WithArgs("c1", true, 20).
		WillReturnRows(pgxmock.NewRows(notificationColumns).
			AddRow(uuid.New(), "c1", KindBookingCreated, "a", "b", "", false, now).
			AddRow(uuid.New(), "c1", KindSystem, "c", "d", "", false, now.Add(-time.Hour)))

	list, err := NewPgStore(mock).ListByRecipient(context.Background(), "c1", true, 20)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, KindSystem, list[1].Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgStore_MarkRead(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectExec("UPDATE notifications").WithArgs(id, "c1").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE notifications").WithArgs(id, "c2").WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	store := NewPgStore(mock)
	assert.NoError(t, store.MarkRead(context.Background(), "c1", id))
	assert.ErrorIs(t, store.MarkRead(context.Background(), "c2", id), ErrNotificationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgStore_EmailFor(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT email FROM users").WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"email"}).AddRow("u1@example.com"))
	mock.ExpectQuery("SELECT email FROM users").WithArgs("ghost").WillReturnError(pgx.ErrNoRows)

	store := NewPgStore(mock)
	email, err := store.EmailFor(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1@example.com", email)

	_, err = store.EmailFor(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrRecipientNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
