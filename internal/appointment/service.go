package appointment

import (
	"context"
	"encoding/json"
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

const (
	EventAppointmentCreated   = "APPOINTMENT_CREATED"
	EventAppointmentConfirmed = "APPOINTMENT_CONFIRMED"
	EventAppointmentCancelled = "APPOINTMENT_CANCELLED"
	EventAppointmentExpired   = "APPOINTMENT_EXPIRED"
)

var (
	ErrInvalidAppointment      = errors.New("invalid appointment")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrForbidden               = errors.New("not allowed to access this appointment")
)

// SalonOwners resolves who administers a salon.
type SalonOwners interface {
	OwnerOf(ctx context.Context, salonID uuid.UUID) (string, error)
}

type Notifier interface {
	Notify(ctx context.Context, n notify.Notification) error
}

type Service struct {
	repo     Repository
	owners   SalonOwners
	notifier Notifier
	metrics  *metrics.BookingMetrics
	log      zerolog.Logger
}

func NewService(repo Repository, owners SalonOwners, notifier Notifier, m *metrics.BookingMetrics, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		owners:   owners,
		notifier: notifier,
		metrics:  m,
		log:      log,
	}
}

// Create writes a new appointment record. It does not look for overlapping
// appointments.
func (s *Service) Create(ctx context.Context, in NewAppointment) (*Appointment, error) {
	if err := normalize(&in); err != nil {
		return nil, err
	}

	appt, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	s.logEvent(ctx, appt.ID, EventAppointmentCreated, map[string]any{
		"salon_id":           appt.SalonID.String(),
		"customer_id":        appt.CustomerID,
		"date":               appt.Date,
		"time":               appt.Time,
		"payment_session_id": appt.PaymentSessionID,
	})
	return appt, nil
}

func normalize(in *NewAppointment) error {
	in.CustomerID = strings.TrimSpace(in.CustomerID)
	switch {
	case in.SalonID == uuid.Nil:
		return fmt.Errorf("%w: missing salon", ErrInvalidAppointment)
	case in.ServiceID == uuid.Nil:
		return fmt.Errorf("%w: missing service", ErrInvalidAppointment)
	case in.CustomerID == "":
		return fmt.Errorf("%w: missing customer", ErrInvalidAppointment)
	case in.DurationMinutes <= 0:
		return fmt.Errorf("%w: duration must be positive", ErrInvalidAppointment)
	}
	if _, err := schedule.ParseDate(in.Date, time.UTC); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAppointment, err)
	}
	if _, err := schedule.ParseClock(in.Time); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAppointment, err)
	}
	if in.Status == "" {
		in.Status = StatusPending
	}
	if in.PaymentStatus == "" {
		in.PaymentStatus = PaymentPending
	}
	if in.Currency == "" {
		in.Currency = "USD"
	}
	if !IsGuestID(in.CustomerID) {
		in.CustomerInfo = nil
	}
	return nil
}

// Get returns the appointment if sess is its customer or manages its salon.
func (s *Service) Get(ctx context.Context, sess session.Session, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	if sess.CanViewCustomer(appt.CustomerID) {
		return appt, nil
	}
	if _, err := s.requireManager(ctx, sess, appt.SalonID); err != nil {
		return nil, err
	}
	return appt, nil
}

// Lookup returns the appointment without an access check. Callers must
// only expose non-personal fields.
func (s *Service) Lookup(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return appt, nil
}

func (s *Service) ListByCustomer(ctx context.Context, sess session.Session, customerID string, limit, offset int) ([]Appointment, error) {
	if !sess.CanViewCustomer(customerID) {
		return nil, ErrForbidden
	}
	limit, offset = clampPage(limit, offset)

	list, err := s.repo.ListByCustomer(ctx, customerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list appointments by customer: %w", err)
	}
	return list, nil
}

func (s *Service) ListBySalon(ctx context.Context, sess session.Session, salonID uuid.UUID, date string, limit, offset int) ([]Appointment, error) {
	if _, err := s.requireManager(ctx, sess, salonID); err != nil {
		return nil, err
	}
	if date != "" {
		if _, err := schedule.ParseDate(date, time.UTC); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidAppointment, err)
		}
	}
	limit, offset = clampPage(limit, offset)

	list, err := s.repo.ListBySalon(ctx, salonID, date, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list appointments by salon: %w", err)
	}
	return list, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20 // default
	}
	if limit > 100 {
		limit = 100 // max
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// Confirm moves a pending appointment to confirmed. Salon managers only.
func (s *Service) Confirm(ctx context.Context, sess session.Session, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if _, err := s.requireManager(ctx, sess, appt.SalonID); err != nil {
		return nil, err
	}
	if appt.Status != StatusPending {
		return nil, ErrInvalidStatusTransition
	}

	updated, err := s.transition(ctx, appt.ID, StatusConfirmed, StatusPending)
	if err != nil {
		return nil, err
	}

	s.logEvent(ctx, updated.ID, EventAppointmentConfirmed, map[string]any{"by": sess.UserID})
	if !updated.Guest() {
		s.notify(ctx, notify.Notification{
			RecipientID: updated.CustomerID,
			Kind:        notify.KindAppointmentConfirmed,
			Title:       "Appointment confirmed",
			Body:        fmt.Sprintf("Your appointment on %s at %s is confirmed.", updated.Date, updated.Time),
			RelatedID:   updated.ID.String(),
		})
	}
	return updated, nil
}

// Cancel is allowed for the customer and for salon managers while the
// appointment is pending or confirmed. The other party is notified.
func (s *Service) Cancel(ctx context.Context, sess session.Session, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	byCustomer := sess.CanViewCustomer(appt.CustomerID) && !sess.IsSuperAdmin()
	var owner string
	if !byCustomer {
		owner, err = s.requireManager(ctx, sess, appt.SalonID)
		if err != nil {
			return nil, err
		}
	}
	if appt.Status != StatusPending && appt.Status != StatusConfirmed {
		return nil, ErrInvalidStatusTransition
	}

	updated, err := s.transition(ctx, appt.ID, StatusCancelled, StatusPending, StatusConfirmed)
	if err != nil {
		return nil, err
	}

	s.logEvent(ctx, updated.ID, EventAppointmentCancelled, map[string]any{
		"by":          sess.UserID,
		"by_customer": byCustomer,
	})

	note := notify.Notification{
		Kind:      notify.KindAppointmentCancelled,
		Title:     "Appointment cancelled",
		Body:      fmt.Sprintf("The appointment on %s at %s was cancelled.", updated.Date, updated.Time),
		RelatedID: updated.ID.String(),
	}
	switch {
	case byCustomer:
		if owner, err = s.owners.OwnerOf(ctx, updated.SalonID); err == nil {
			note.RecipientID = owner
		}
	case !updated.Guest():
		note.RecipientID = updated.CustomerID
	}
	if note.RecipientID != "" {
		s.notify(ctx, note)
	}
	return updated, nil
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to Status, from ...Status) (*Appointment, error) {
	updated, err := s.repo.UpdateStatus(ctx, id, to, from...)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// Status changed between the read and the update.
			return nil, ErrInvalidStatusTransition
		}
		return nil, fmt.Errorf("update appointment status: %w", err)
	}
	return updated, nil
}

// ExpirePastPending marks pending appointments dated before today as
// expired. It is intended to be called by the worker periodically.
func (s *Service) ExpirePastPending(ctx context.Context, today time.Time) (int, error) {
	ids, err := s.repo.ExpirePendingBefore(ctx, today.Format(time.DateOnly))
	if err != nil {
		return 0, fmt.Errorf("expire pending appointments: %w", err)
	}

	for _, id := range ids {
		s.logEvent(ctx, id, EventAppointmentExpired, map[string]any{"reason": "worker"})
	}
	s.metrics.AddExpired(len(ids))
	return len(ids), nil
}

func (s *Service) requireManager(ctx context.Context, sess session.Session, salonID uuid.UUID) (string, error) {
	if !sess.Authenticated() {
		return "", ErrForbidden
	}
	owner, err := s.owners.OwnerOf(ctx, salonID)
	if err != nil {
		return "", fmt.Errorf("load salon owner: %w", err)
	}
	if !sess.CanManageSalon(owner) {
		return "", ErrForbidden
	}
	return owner, nil
}

func (s *Service) notify(ctx context.Context, n notify.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.Warn().Err(err).Str("kind", string(n.Kind)).Str("related_id", n.RelatedID).Msg("notification failed")
	}
}

func (s *Service) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Error().Err(err).Str("event", eventType).Msg("failed to marshal event payload")
		data = nil
	}

	apptID := appointmentID

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     time.Now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		s.log.Error().Err(err).
			Str("event", eventType).
			Str("appointment_id", appointmentID.String()).
			Msg("failed to insert event log")
	}
}
