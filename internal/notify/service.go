package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/salon-booking/internal/metrics"
)

var ErrInvalidNotification = errors.New("invalid notification")

// Service writes in-app notifications and mirrors selected kinds by email.
type Service struct {
	store   Store
	dir     Directory
	email   EmailSender
	metrics *metrics.BookingMetrics
	log     zerolog.Logger
}

// NewService builds the sink. dir and email may be nil, in which case no
// email is attempted.
func NewService(store Store, dir Directory, email EmailSender, m *metrics.BookingMetrics, log zerolog.Logger) *Service {
	return &Service{
		store:   store,
		dir:     dir,
		email:   email,
		metrics: m,
		log:     log,
	}
}

// Notify stores n for its recipient. Email delivery is best effort and its
// failure is only logged.
func (s *Service) Notify(ctx context.Context, n Notification) error {
	if !n.Kind.Valid() {
		return fmt.Errorf("%w: kind %q", ErrInvalidNotification, n.Kind)
	}
	if strings.TrimSpace(n.RecipientID) == "" {
		return fmt.Errorf("%w: missing recipient", ErrInvalidNotification)
	}

	stored, err := s.store.Insert(ctx, n)
	if err != nil {
		s.metrics.ObserveNotification(string(n.Kind), "error")
		return fmt.Errorf("store notification: %w", err)
	}
	s.metrics.ObserveNotification(string(n.Kind), "stored")

	s.mirrorEmail(ctx, *stored)
	return nil
}

func (s *Service) mirrorEmail(ctx context.Context, n Notification) {
	if s.email == nil || s.dir == nil || !n.Kind.EmailWorthy() {
		return
	}
	to, err := s.dir.EmailFor(ctx, n.RecipientID)
	if err != nil || to == "" {
		s.log.Debug().Err(err).Str("recipient_id", n.RecipientID).Msg("no email for recipient")
		return
	}
	if err := s.email.Send(ctx, EmailMessage{To: to, Subject: n.Title, Body: n.Body}); err != nil {
		s.metrics.ObserveNotification(string(n.Kind), "email_error")
		s.log.Warn().Err(err).Str("recipient_id", n.RecipientID).Str("kind", string(n.Kind)).Msg("email notification failed")
		return
	}
	s.metrics.ObserveNotification(string(n.Kind), "emailed")
}

func (s *Service) List(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	list, err := s.store.ListByRecipient(ctx, recipientID, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return list, nil
}

func (s *Service) MarkRead(ctx context.Context, recipientID string, id uuid.UUID) error {
	return s.store.MarkRead(ctx, recipientID, id)
}
