package booking

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/salon-booking/internal/appointment"
	"github.com/hackgods/salon-booking/internal/metrics"
	"github.com/hackgods/salon-booking/internal/payments"
	"github.com/hackgods/salon-booking/internal/salon"
	"github.com/hackgods/salon-booking/internal/schedule"
	"github.com/hackgods/salon-booking/internal/session"
)

var (
	ErrSlotUnavailable      = errors.New("requested time is not available")
	ErrGuestContactRequired = errors.New("guest bookings need a name and an email or phone")
	ErrPaymentUnavailable   = errors.New("could not start payment")
)

// Catalog loads a salon and service a customer may book.
type Catalog interface {
	LoadBookable(ctx context.Context, salonID, serviceID uuid.UUID) (*salon.Salon, *salon.Service, error)
}

type GuestContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type BookingRequest struct {
	SalonID             uuid.UUID     `json:"salon_id"`
	ServiceID           uuid.UUID     `json:"service_id"`
	StaffID             string        `json:"staff_id"`
	Date                string        `json:"date"`
	Time                string        `json:"time"`
	SpecialInstructions string        `json:"special_instructions"`
	Guest               *GuestContact `json:"guest,omitempty"`
}

type CheckoutResult struct {
	SessionID   string `json:"session_id"`
	PaymentLink string `json:"payment_link"`
}

type CheckoutOptions struct {
	FeeCents      int64
	FeeCurrency   string
	PublicBaseURL string
}

// CheckoutService validates a booking choice, starts the payment and
// stores the draft the callback will finish.
type CheckoutService struct {
	catalog   Catalog
	processor payments.Processor
	drafts    *DraftStore
	opts      CheckoutOptions
	metrics   *metrics.BookingMetrics
	log       zerolog.Logger
	now       func() time.Time
}

func NewCheckoutService(catalog Catalog, processor payments.Processor, drafts *DraftStore, opts CheckoutOptions, m *metrics.BookingMetrics, log zerolog.Logger) *CheckoutService {
	opts.PublicBaseURL = strings.TrimRight(opts.PublicBaseURL, "/")
	return &CheckoutService{
		catalog:   catalog,
		processor: processor,
		drafts:    drafts,
		opts:      opts,
		metrics:   m,
		log:       log,
		now:       time.Now,
	}
}

func (c *CheckoutService) Start(ctx context.Context, sess session.Session, browserID string, req BookingRequest) (*CheckoutResult, error) {
	res, err := c.start(ctx, sess, browserID, req)
	if err != nil {
		c.metrics.ObserveCheckout("rejected")
		return nil, err
	}
	c.metrics.ObserveCheckout("started")
	return res, nil
}

func (c *CheckoutService) start(ctx context.Context, sess session.Session, browserID string, req BookingRequest) (*CheckoutResult, error) {
	if strings.TrimSpace(browserID) == "" {
		return nil, ErrMissingBrowser
	}

	s, svc, err := c.catalog.LoadBookable(ctx, req.SalonID, req.ServiceID)
	if err != nil {
		return nil, err
	}

	avail, err := salon.ComputeAvailability(s, svc, req.Date, c.now())
	if err != nil {
		return nil, err
	}
	if avail.Closed || !schedule.Contains(avail.Slots, req.Time) {
		return nil, ErrSlotUnavailable
	}

	customer, err := resolveCustomer(sess, req.Guest)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.NewString()
	callback := url.Values{"session_id": {sessionID}, "status": {"success"}}
	checkout, err := c.processor.InitiateCheckout(ctx, payments.CheckoutRequest{
		Description: fmt.Sprintf("Booking fee: %s at %s", svc.Name, s.Name),
		AmountCents: c.opts.FeeCents,
		Currency:    c.opts.FeeCurrency,
		Payer: payments.Payer{
			Name:  customer.Name,
			Email: customer.Email,
			Phone: customer.Phone,
		},
		ReferenceID: sessionID,
		RedirectURL: c.opts.PublicBaseURL + "/payments/callback?" + callback.Encode(),
	})
	if err != nil {
		c.log.Error().Err(err).Str("salon_id", s.ID.String()).Msg("payment initiation failed")
		return nil, fmt.Errorf("%w: %v", ErrPaymentUnavailable, err)
	}

	draft := PendingBooking{
		SalonID:             s.ID,
		ServiceID:           svc.ID,
		StaffID:             strings.TrimSpace(req.StaffID),
		Date:                avail.Date,
		Time:                req.Time,
		DurationMinutes:     svc.DurationMinutes,
		TotalAmountCents:    svc.PriceCents,
		Currency:            svc.Currency,
		Customer:            customer,
		SalonOwnerID:        s.OwnerID,
		SpecialInstructions: strings.TrimSpace(req.SpecialInstructions),
		PaymentSessionID:    checkout.SessionID,
		CreatedAt:           c.now().UTC(),
	}
	if err := c.drafts.Store(ctx, browserID, draft); err != nil {
		return nil, fmt.Errorf("store draft: %w", err)
	}

	c.log.Info().
		Str("salon_id", s.ID.String()).
		Str("session_id", checkout.SessionID).
		Str("date", draft.Date).
		Str("time", draft.Time).
		Bool("guest", customer.Guest).
		Msg("checkout started")

	return &CheckoutResult{
		SessionID:   checkout.SessionID,
		PaymentLink: checkout.PaymentLink,
	}, nil
}

func resolveCustomer(sess session.Session, guest *GuestContact) (Customer, error) {
	if sess.Authenticated() {
		return Customer{ID: sess.UserID, Email: sess.Email}, nil
	}
	if guest == nil {
		return Customer{}, ErrGuestContactRequired
	}
	name := strings.TrimSpace(guest.Name)
	email := strings.TrimSpace(guest.Email)
	phone := strings.TrimSpace(guest.Phone)
	if name == "" || (email == "" && phone == "") {
		return Customer{}, ErrGuestContactRequired
	}
	return Customer{
		ID:    appointment.GuestPrefix + uuid.NewString(),
		Guest: true,
		Name:  name,
		Email: email,
		Phone: phone,
	}, nil
}
