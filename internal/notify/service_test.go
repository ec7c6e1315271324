package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	inserted []Notification
	err      error
}

func (s *stubStore) Insert(_ context.Context, n Notification) (*Notification, error) {
	if s.err != nil {
		return nil, s.err
	}
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	s.inserted = append(s.inserted, n)
	return &n, nil
}

func (s *stubStore) ListByRecipient(_ context.Context, recipientID string, _ bool, limit int) ([]Notification, error) {
	var out []Notification
	for _, n := range s.inserted {
		if n.RecipientID == recipientID && len(out) < limit {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *stubStore) MarkRead(context.Context, string, uuid.UUID) error { return nil }

type stubDirectory map[string]string

func (d stubDirectory) EmailFor(_ context.Context, id string) (string, error) {
	if e, ok := d[id]; ok {
		return e, nil
	}
	return "", ErrRecipientNotFound
}

type stubEmail struct {
	sent []EmailMessage
	err  error
}

func (e *stubEmail) Send(_ context.Context, msg EmailMessage) error {
	e.sent = append(e.sent, msg)
	return e.err
}

func TestService_NotifyStoresAndEmails(t *testing.T) {
	store := &stubStore{}
	email := &stubEmail{}
	svc := NewService(store, stubDirectory{"owner-1": "owner@example.com"}, email, nil, zerolog.Nop())

	err := svc.Notify(context.Background(), Notification{
		RecipientID: "owner-1",
		Kind:        KindNewBooking,
		Title:       "New booking",
		Body:        "Cut & colour on 2024-01-01 at 09:00",
		RelatedID:   "appt-1",
	})
	require.NoError(t, err)

	require.Len(t, store.inserted, 1)
	assert.Equal(t, "appt-1", store.inserted[0].RelatedID)
	require.Len(t, email.sent, 1)
	assert.Equal(t, "owner@example.com", email.sent[0].To)
	assert.Equal(t, "New booking", email.sent[0].Subject)
}

func TestService_EmailFailureIsNotReturned(t *testing.T) {
	store := &stubStore{}
	email := &stubEmail{err: errors.New("sendgrid down")}
	svc := NewService(store, stubDirectory{"c1": "c@example.com"}, email, nil, zerolog.Nop())

	err := svc.Notify(context.Background(), Notification{RecipientID: "c1", Kind: KindBookingCreated, Title: "t", Body: "b"})
	assert.NoError(t, err)
	assert.Len(t, store.inserted, 1)
}

func TestService_SkipsEmailWithoutAddressOrForSystemKind(t *testing.T) {
	store := &stubStore{}
	email := &stubEmail{}
	svc := NewService(store, stubDirectory{"c1": "c@example.com"}, email, nil, zerolog.Nop())
	ctx := context.Background()

	require.NoError(t, svc.Notify(ctx, Notification{RecipientID: "guest_x", Kind: KindBookingCreated, Title: "t"}))
	require.NoError(t, svc.Notify(ctx, Notification{RecipientID: "c1", Kind: KindSystem, Title: "t"}))

	assert.Len(t, store.inserted, 2)
	assert.Empty(t, email.sent)
}

func TestService_NotifyValidation(t *testing.T) {
	svc := NewService(&stubStore{}, nil, nil, nil, zerolog.Nop())
	ctx := context.Background()

	err := svc.Notify(ctx, Notification{RecipientID: "u", Kind: Kind("party")})
	assert.ErrorIs(t, err, ErrInvalidNotification)

	err = svc.Notify(ctx, Notification{RecipientID: " ", Kind: KindSystem})
	assert.ErrorIs(t, err, ErrInvalidNotification)
}

func TestService_NotifyStoreError(t *testing.T) {
	svc := NewService(&stubStore{err: errors.New("db down")}, nil, nil, nil, zerolog.Nop())
	err := svc.Notify(context.Background(), Notification{RecipientID: "u", Kind: KindSystem})
	assert.Error(t, err)
}

func TestService_ListClampsLimit(t *testing.T) {
	store := &stubStore{}
	svc := NewService(store, nil, nil, nil, zerolog.Nop())
	ctx := context.Background()
	for i := 0; i < 60; i++ {
		require.NoError(t, svc.Notify(ctx, Notification{RecipientID: "u", Kind: KindSystem}))
	}

	list, err := svc.List(ctx, "u", false, 1000)
	require.NoError(t, err)
	assert.Len(t, list, 50)
}

func TestKind(t *testing.T) {
	for _, k := range []Kind{KindNewBooking, KindBookingCreated, KindAppointmentConfirmed, KindAppointmentCancelled, KindSalonApproved, KindSystem} {
		parsed, err := ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
		assert.NotEmpty(t, k.Audience())
	}

	_, err := ParseKind("promo")
	assert.Error(t, err)
	assert.Equal(t, AudienceSalonOwner, KindNewBooking.Audience())
	assert.Equal(t, AudienceCustomer, KindBookingCreated.Audience())
	assert.False(t, KindSystem.EmailWorthy())
}
