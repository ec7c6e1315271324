package salon

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/salon-booking/internal/schedule"
)

type Salon struct {
	ID           uuid.UUID             `json:"id"`
	OwnerID      string                `json:"owner_id"`
	Name         string                `json:"name"`
	Timezone     string                `json:"timezone"`
	WorkingHours schedule.WorkingHours `json:"working_hours"`
	Approved     bool                  `json:"approved"`
	Deleted      bool                  `json:"-"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// Location is the salon's time zone, UTC when unset or unknown.
func (s *Salon) Location() *time.Location {
	if s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Service is something a salon sells. Durations are always minutes.
type Service struct {
	ID              uuid.UUID `json:"id"`
	SalonID         uuid.UUID `json:"salon_id"`
	Name            string    `json:"name"`
	DurationMinutes int       `json:"duration_minutes"`
	PriceCents      int64     `json:"price_cents"`
	Currency        string    `json:"currency"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewService is the admin input for a service. Exactly one of the duration
// fields is expected; hours are converted to minutes.
type NewService struct {
	Name            string
	DurationMinutes int
	DurationHours   float64
	PriceCents      int64
	Currency        string
}

type Availability struct {
	SalonID         uuid.UUID        `json:"salon_id"`
	ServiceID       uuid.UUID        `json:"service_id"`
	Date            string           `json:"date"`
	Weekday         schedule.Weekday `json:"weekday"`
	Closed          bool             `json:"closed"`
	Open            string           `json:"open,omitempty"`
	Close           string           `json:"close,omitempty"`
	DurationMinutes int              `json:"duration_minutes"`
	Slots           []string         `json:"slots"`
}
