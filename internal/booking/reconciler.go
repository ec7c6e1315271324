package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hackgods/salon-booking/internal/appointment"
	"github.com/hackgods/salon-booking/internal/metrics"
	"github.com/hackgods/salon-booking/internal/notify"
	redisclient "github.com/hackgods/salon-booking/internal/redis"
)

var (
	ErrPaymentCancelledOrFailed  = errors.New("payment was cancelled or failed")
	ErrAppointmentCreationFailed = errors.New("failed to create booking, contact support")
	ErrReconcileInProgress       = errors.New("payment callback is already being processed")
)

// Callback carries the query parameters the payment page returns with.
type Callback struct {
	SessionID string
	Status    string
}

func (c Callback) negative() bool {
	switch c.Status {
	case "cancelled", "failed":
		return true
	default:
		return false
	}
}

type AppointmentCreator interface {
	Create(ctx context.Context, in appointment.NewAppointment) (*appointment.Appointment, error)
}

type Notifier interface {
	Notify(ctx context.Context, n notify.Notification) error
}

// Reconciler turns a payment return into an appointment. Payment success
// is inferred from the absence of a cancelled/failed status; the session is
// not checked with the processor.
type Reconciler struct {
	drafts   *DraftStore
	creator  AppointmentCreator
	notifier Notifier
	locker   redisclient.Locker
	metrics  *metrics.BookingMetrics
	log      zerolog.Logger
}

// NewReconciler builds a reconciler. locker may be nil, in which case
// concurrent callbacks for one browser are not serialised.
func NewReconciler(drafts *DraftStore, creator AppointmentCreator, notifier Notifier, locker redisclient.Locker, m *metrics.BookingMetrics, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		drafts:   drafts,
		creator:  creator,
		notifier: notifier,
		locker:   locker,
		metrics:  m,
		log:      log,
	}
}

// Reconcile runs once per callback. Each error it returns is terminal:
// ErrNoPendingBooking, ErrPaymentCancelledOrFailed (draft cleared) or
// ErrAppointmentCreationFailed (draft kept). A retry after a creation
// failure creates a new record; nothing deduplicates it.
func (r *Reconciler) Reconcile(ctx context.Context, browserID string, cb Callback) (*appointment.Appointment, error) {
	if r.locker == nil {
		return r.reconcile(ctx, browserID, cb)
	}

	var created *appointment.Appointment
	err := r.locker.WithLock(ctx, "reconcile:"+browserID, func(lockCtx context.Context) error {
		appt, err := r.reconcile(lockCtx, browserID, cb)
		created = appt
		return err
	})
	if errors.Is(err, redisclient.ErrLockNotAcquired) {
		r.metrics.ObserveReconcile("in_progress")
		return nil, ErrReconcileInProgress
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *Reconciler) reconcile(ctx context.Context, browserID string, cb Callback) (*appointment.Appointment, error) {
	draft, err := r.drafts.Get(ctx, browserID)
	if err != nil {
		if errors.Is(err, ErrNoPendingBooking) {
			r.metrics.ObserveReconcile("no_draft")
		}
		return nil, err
	}

	if cb.negative() {
		if err := r.drafts.Clear(ctx, browserID); err != nil {
			r.log.Warn().Err(err).Msg("failed to clear draft after cancelled payment")
		}
		r.metrics.ObserveReconcile("cancelled")
		r.log.Info().Str("session_id", cb.SessionID).Str("status", cb.Status).Msg("payment not completed")
		return nil, ErrPaymentCancelledOrFailed
	}

	sessionID := draft.PaymentSessionID
	if sessionID == "" {
		sessionID = cb.SessionID
	}

	in := appointment.NewAppointment{
		SalonID:             draft.SalonID,
		CustomerID:          draft.Customer.ID,
		ServiceID:           draft.ServiceID,
		StaffID:             draft.StaffID,
		Date:                draft.Date,
		Time:                draft.Time,
		DurationMinutes:     draft.DurationMinutes,
		Status:              appointment.StatusPending,
		TotalAmountCents:    draft.TotalAmountCents,
		Currency:            draft.Currency,
		PaymentStatus:       appointment.PaymentPaid,
		PaymentSessionID:    sessionID,
		SpecialInstructions: draft.SpecialInstructions,
	}
	if draft.Customer.Guest {
		in.CustomerInfo = &appointment.CustomerInfo{
			Name:  draft.Customer.Name,
			Email: draft.Customer.Email,
			Phone: draft.Customer.Phone,
		}
	}

	appt, err := r.creator.Create(ctx, in)
	if err != nil {
		r.metrics.ObserveReconcile("creation_failed")
		r.log.Error().Err(err).Str("session_id", sessionID).Msg("appointment creation failed, draft kept")
		return nil, fmt.Errorf("%w: %v", ErrAppointmentCreationFailed, err)
	}

	r.notifyParties(ctx, draft, appt)

	if err := r.drafts.Clear(ctx, browserID); err != nil {
		r.log.Warn().Err(err).Str("appointment_id", appt.ID.String()).Msg("failed to clear draft after booking")
	}

	r.metrics.ObserveReconcile("created")
	r.log.Info().
		Str("appointment_id", appt.ID.String()).
		Str("salon_id", appt.SalonID.String()).
		Str("session_id", sessionID).
		Msg("booking created from payment callback")
	return appt, nil
}

func (r *Reconciler) notifyParties(ctx context.Context, draft *PendingBooking, appt *appointment.Appointment) {
	if r.notifier == nil {
		return
	}

	who := draft.Customer.Name
	if who == "" {
		who = "A customer"
	}
	notes := []notify.Notification{{
		RecipientID: draft.SalonOwnerID,
		Kind:        notify.KindNewBooking,
		Title:       "New booking",
		Body:        fmt.Sprintf("%s booked %s at %s.", who, appt.Date, appt.Time),
		RelatedID:   appt.ID.String(),
	}}
	if !draft.Customer.Guest {
		notes = append(notes, notify.Notification{
			RecipientID: draft.Customer.ID,
			Kind:        notify.KindBookingCreated,
			Title:       "Booking received",
			Body:        fmt.Sprintf("Your booking for %s at %s is awaiting salon confirmation.", appt.Date, appt.Time),
			RelatedID:   appt.ID.String(),
		})
	}

	for _, n := range notes {
		if err := r.notifier.Notify(ctx, n); err != nil {
			r.log.Warn().Err(err).Str("kind", string(n.Kind)).Str("appointment_id", appt.ID.String()).Msg("booking notification failed")
		}
	}
}
