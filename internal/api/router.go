package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/salon-booking/internal/appointment"
	"github.com/hackgods/salon-booking/internal/booking"
	"github.com/hackgods/salon-booking/internal/notify"
	"github.com/hackgods/salon-booking/internal/payments"
	"github.com/hackgods/salon-booking/internal/salon"
	"github.com/hackgods/salon-booking/internal/schedule"
	"github.com/hackgods/salon-booking/internal/session"
)

type SalonService interface {
	ListServices(ctx context.Context, salonID uuid.UUID) ([]salon.Service, error)
	Availability(ctx context.Context, salonID, serviceID uuid.UUID, date string, now time.Time) (*salon.Availability, error)
	UpdateWorkingHours(ctx context.Context, sess session.Session, salonID uuid.UUID, hours schedule.WorkingHours) (*salon.Salon, error)
	CreateService(ctx context.Context, sess session.Session, salonID uuid.UUID, in salon.NewService) (*salon.Service, error)
	Approve(ctx context.Context, sess session.Session, salonID uuid.UUID) (*salon.Salon, error)
}

type AppointmentService interface {
	Get(ctx context.Context, sess session.Session, id uuid.UUID) (*appointment.Appointment, error)
	Lookup(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	ListByCustomer(ctx context.Context, sess session.Session, customerID string, limit, offset int) ([]appointment.Appointment, error)
	ListBySalon(ctx context.Context, sess session.Session, salonID uuid.UUID, date string, limit, offset int) ([]appointment.Appointment, error)
	Confirm(ctx context.Context, sess session.Session, id uuid.UUID) (*appointment.Appointment, error)
	Cancel(ctx context.Context, sess session.Session, id uuid.UUID) (*appointment.Appointment, error)
}

type CheckoutService interface {
	Start(ctx context.Context, sess session.Session, browserID string, req booking.BookingRequest) (*booking.CheckoutResult, error)
}

type PaymentReconciler interface {
	Reconcile(ctx context.Context, browserID string, cb booking.Callback) (*appointment.Appointment, error)
}

type DraftStore interface {
	Get(ctx context.Context, browserID string) (*booking.PendingBooking, error)
	Clear(ctx context.Context, browserID string) error
}

type NotificationService interface {
	List(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]notify.Notification, error)
	MarkRead(ctx context.Context, recipientID string, id uuid.UUID) error
}

type RouterConfig struct {
	Salons        SalonService
	Appointments  AppointmentService
	Checkout      CheckoutService
	Reconciler    PaymentReconciler
	Drafts        DraftStore
	Notifications NotificationService

	Postgres Pinger
	Redis    Pinger
	Metrics  http.Handler

	JWTSecret     string
	FakePayments  bool
	SecureCookies bool
	Limiter       *RateLimiter
	Log           zerolog.Logger
	Env           string
	Version       string
	Now           func() time.Time
}

func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Log))

	// Health endpoints
	health := NewHealthHandler(cfg.Postgres, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(SessionMiddleware(cfg.JWTSecret))

		// Salon endpoints
		r.Get("/salons/{salonID}/services", listServicesHandler(cfg.Salons))
		r.Get("/salons/{salonID}/availability", availabilityHandler(cfg.Salons, cfg.Now))
		r.Put("/salons/{salonID}/working-hours", updateWorkingHoursHandler(cfg.Salons))
		r.Post("/salons/{salonID}/services", createServiceHandler(cfg.Salons))
		r.Post("/salons/{salonID}/approve", approveSalonHandler(cfg.Salons))

		// Booking flow, scoped to the browser cookie
		r.Group(func(r chi.Router) {
			r.Use(BrowserIDMiddleware(cfg.SecureCookies))
			r.Use(RateLimit(cfg.Limiter))

			r.Post("/bookings/checkout", checkoutHandler(cfg.Checkout))
			r.Get("/bookings/draft", getDraftHandler(cfg.Drafts))
			r.Delete("/bookings/draft", clearDraftHandler(cfg.Drafts))
			r.Get("/payments/callback", paymentCallbackHandler(cfg.Reconciler))
		})
		if cfg.FakePayments {
			r.Get("/payments/fake/{sessionID}", payments.FakeCheckoutPage())
		}
		r.Get("/bookings/{id}/confirmation", confirmationHandler(cfg.Appointments))

		// Appointment endpoints
		r.Get("/appointments", listAppointmentsHandler(cfg.Appointments))
		r.Get("/appointments/{id}", getAppointmentHandler(cfg.Appointments))
		r.Post("/appointments/{id}/confirm", confirmAppointmentHandler(cfg.Appointments))
		r.Post("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Appointments))

		// Notification inbox
		r.Get("/notifications", listNotificationsHandler(cfg.Notifications))
		r.Post("/notifications/{id}/read", markNotificationReadHandler(cfg.Notifications))
	})

	return r
}
