package salon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/salon-booking/internal/metrics"
	"github.com/hackgods/salon-booking/internal/notify"
	"github.com/hackgods/salon-booking/internal/schedule"
	"github.com/hackgods/salon-booking/internal/session"
)

var (
	ErrForbidden         = errors.New("not allowed to manage this salon")
	ErrSalonNotApproved  = errors.New("salon is not accepting bookings")
	ErrServiceNotInSalon = errors.New("service does not belong to salon")
	ErrServiceInactive   = errors.New("service is not active")
	ErrInvalidDate       = errors.New("invalid date")
	ErrDateInPast        = errors.New("date is in the past")
	ErrInvalidService    = errors.New("invalid service")
)

type Notifier interface {
	Notify(ctx context.Context, n notify.Notification) error
}

// Manager holds salon and service operations, including slot availability.
type Manager struct {
	repo     Repository
	notifier Notifier
	metrics  *metrics.BookingMetrics
	log      zerolog.Logger
}

func NewManager(repo Repository, notifier Notifier, m *metrics.BookingMetrics, log zerolog.Logger) *Manager {
	return &Manager{
		repo:     repo,
		notifier: notifier,
		metrics:  m,
		log:      log,
	}
}

func (m *Manager) GetSalon(ctx context.Context, id uuid.UUID) (*Salon, error) {
	s, err := m.repo.GetSalon(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load salon: %w", err)
	}
	return s, nil
}

// OwnerOf returns the user id that administers the salon.
func (m *Manager) OwnerOf(ctx context.Context, salonID uuid.UUID) (string, error) {
	s, err := m.GetSalon(ctx, salonID)
	if err != nil {
		return "", err
	}
	return s.OwnerID, nil
}

func (m *Manager) GetService(ctx context.Context, id uuid.UUID) (*Service, error) {
	s, err := m.repo.GetService(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load service: %w", err)
	}
	return s, nil
}

func (m *Manager) ListServices(ctx context.Context, salonID uuid.UUID) ([]Service, error) {
	if _, err := m.GetSalon(ctx, salonID); err != nil {
		return nil, err
	}
	list, err := m.repo.ListServices(ctx, salonID)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return list, nil
}

// LoadBookable returns the salon and service if a customer may book the
// service there.
func (m *Manager) LoadBookable(ctx context.Context, salonID, serviceID uuid.UUID) (*Salon, *Service, error) {
	s, err := m.GetSalon(ctx, salonID)
	if err != nil {
		return nil, nil, err
	}
	if !s.Approved {
		return nil, nil, ErrSalonNotApproved
	}
	svc, err := m.GetService(ctx, serviceID)
	if err != nil {
		return nil, nil, err
	}
	if svc.SalonID != s.ID {
		return nil, nil, ErrServiceNotInSalon
	}
	if !svc.Active {
		return nil, nil, ErrServiceInactive
	}
	return s, svc, nil
}

// Availability lists the bookable start times for a service on date
// ("YYYY-MM-DD", salon local).
func (m *Manager) Availability(ctx context.Context, salonID, serviceID uuid.UUID, date string, now time.Time) (*Availability, error) {
	s, svc, err := m.LoadBookable(ctx, salonID, serviceID)
	if err != nil {
		m.metrics.ObserveAvailability("error", 0)
		return nil, err
	}
	a, err := ComputeAvailability(s, svc, date, now)
	if err != nil {
		m.metrics.ObserveAvailability("error", 0)
		return nil, err
	}
	if a.Closed {
		m.metrics.ObserveAvailability("closed", 0)
	} else {
		m.metrics.ObserveAvailability("open", len(a.Slots))
	}
	return a, nil
}

// ComputeAvailability resolves the salon's hours for date and generates
// slots in the salon's time zone.
func ComputeAvailability(s *Salon, svc *Service, date string, now time.Time) (*Availability, error) {
	loc := s.Location()
	day, err := schedule.ParseDate(date, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	localNow := now.In(loc)
	today := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, loc)
	if day.Before(today) {
		return nil, ErrDateInPast
	}

	a := &Availability{
		SalonID:         s.ID,
		ServiceID:       svc.ID,
		Date:            day.Format(time.DateOnly),
		Weekday:         schedule.WeekdayOf(day),
		DurationMinutes: svc.DurationMinutes,
		Slots:           []string{},
	}

	window, open := schedule.Resolve(s.WorkingHours, day)
	if !open {
		a.Closed = true
		return a, nil
	}
	a.Open = window.Open
	a.Close = window.Close
	if slots := schedule.GenerateSlots(window, svc.DurationMinutes, day, localNow); slots != nil {
		a.Slots = slots
	}
	return a, nil
}

func (m *Manager) UpdateWorkingHours(ctx context.Context, sess session.Session, salonID uuid.UUID, hours schedule.WorkingHours) (*Salon, error) {
	s, err := m.GetSalon(ctx, salonID)
	if err != nil {
		return nil, err
	}
	if !sess.CanManageSalon(s.OwnerID) {
		return nil, ErrForbidden
	}
	if err := hours.Validate(); err != nil {
		return nil, err
	}

	updated, err := m.repo.UpdateWorkingHours(ctx, salonID, hours)
	if err != nil {
		return nil, fmt.Errorf("update working hours: %w", err)
	}
	m.log.Info().Str("salon_id", salonID.String()).Str("by", sess.UserID).Msg("working hours updated")
	return updated, nil
}

func (m *Manager) CreateService(ctx context.Context, sess session.Session, salonID uuid.UUID, in NewService) (*Service, error) {
	s, err := m.GetSalon(ctx, salonID)
	if err != nil {
		return nil, err
	}
	if !sess.CanManageSalon(s.OwnerID) {
		return nil, ErrForbidden
	}

	duration := in.DurationMinutes
	if duration <= 0 && in.DurationHours > 0 {
		duration = schedule.MinutesFromHours(in.DurationHours)
	}
	name := strings.TrimSpace(in.Name)
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "USD"
	}

	switch {
	case name == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalidService)
	case duration <= 0:
		return nil, fmt.Errorf("%w: duration must be positive", ErrInvalidService)
	case in.PriceCents < 0:
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidService)
	case len(currency) != 3:
		return nil, fmt.Errorf("%w: currency must be an ISO 4217 code", ErrInvalidService)
	}

	created, err := m.repo.CreateService(ctx, Service{
		SalonID:         salonID,
		Name:            name,
		DurationMinutes: duration,
		PriceCents:      in.PriceCents,
		Currency:        currency,
	})
	if err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	return created, nil
}

// Approve opens a salon for bookings. Only super admins may do this.
func (m *Manager) Approve(ctx context.Context, sess session.Session, salonID uuid.UUID) (*Salon, error) {
	if !sess.IsSuperAdmin() {
		return nil, ErrForbidden
	}
	s, err := m.repo.SetApproved(ctx, salonID, true)
	if err != nil {
		return nil, fmt.Errorf("approve salon: %w", err)
	}

	if m.notifier != nil {
		err := m.notifier.Notify(ctx, notify.Notification{
			RecipientID: s.OwnerID,
			Kind:        notify.KindSalonApproved,
			Title:       "Your salon is live",
			Body:        fmt.Sprintf("%s has been approved and can now take bookings.", s.Name),
			RelatedID:   s.ID.String(),
		})
		if err != nil {
			m.log.Warn().Err(err).Str("salon_id", s.ID.String()).Msg("salon approval notification failed")
		}
	}
	return s, nil
}
