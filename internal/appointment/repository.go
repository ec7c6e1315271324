package appointment

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrAppointmentNotFound = errors.New("appointment not found")

// Repository contains all DB interactions needed by the service.
type Repository interface {
	// Create inserts unconditionally. Nothing checks for an existing
	// appointment at the same salon, date and time.
	Create(ctx context.Context, in NewAppointment) (*Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	ListByCustomer(ctx context.Context, customerID string, limit, offset int) ([]Appointment, error)
	// ListBySalon filters on date when it is not empty.
	ListBySalon(ctx context.Context, salonID uuid.UUID, date string, limit, offset int) ([]Appointment, error)

	// UpdateStatus moves id to `to` only if its current status is one of
	// from. ErrAppointmentNotFound means no row matched.
	UpdateStatus(ctx context.Context, id uuid.UUID, to Status, from ...Status) (*Appointment, error)

	// Expiry worker
	ExpirePendingBefore(ctx context.Context, date string) ([]uuid.UUID, error)

	// Event logging
	InsertEvent(ctx context.Context, ev EventLog) error
}
