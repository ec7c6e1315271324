package salon

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/hackgods/salon-booking/internal/schedule"
)

var (
	ErrSalonNotFound   = errors.New("salon not found")
	ErrServiceNotFound = errors.New("service not found")
)

// Repository contains all DB interactions needed by the manager.
type Repository interface {
	GetSalon(ctx context.Context, id uuid.UUID) (*Salon, error)
	CreateSalon(ctx context.Context, s Salon) (*Salon, error)
	UpdateWorkingHours(ctx context.Context, id uuid.UUID, hours schedule.WorkingHours) (*Salon, error)
	SetApproved(ctx context.Context, id uuid.UUID, approved bool) (*Salon, error)

	GetService(ctx context.Context, id uuid.UUID) (*Service, error)
	ListServices(ctx context.Context, salonID uuid.UUID) ([]Service, error)
	CreateService(ctx context.Context, s Service) (*Service, error)
}
