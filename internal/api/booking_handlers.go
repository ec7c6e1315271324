package api

import (
	"errors"
	"net/http"

	"github.com/hackgods/salon-booking/internal/booking"
	"github.com/hackgods/salon-booking/internal/session"
)

func checkoutHandler(svc CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req booking.BookingRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		res, err := svc.Start(r.Context(), session.FromContext(r.Context()), browserID(r.Context()), req)
		if err != nil {
			handleCheckoutError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

func getDraftHandler(drafts DraftStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draft, err := drafts.Get(r.Context(), browserID(r.Context()))
		if err != nil {
			handleCallbackError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, DraftResponse{Draft: draft})
	}
}

func clearDraftHandler(drafts DraftStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := drafts.Clear(r.Context(), browserID(r.Context())); err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "could not clear draft")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// paymentCallbackHandler is where the payment page sends the browser back.
// On success it redirects to the confirmation view.
func paymentCallbackHandler(rec PaymentReconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		appt, err := rec.Reconcile(r.Context(), browserID(r.Context()), booking.Callback{
			SessionID: q.Get("session_id"),
			Status:    q.Get("status"),
		})
		if err != nil {
			handleCallbackError(w, err)
			return
		}
		http.Redirect(w, r, "/bookings/"+appt.ID.String()+"/confirmation", http.StatusSeeOther)
	}
}

func confirmationHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "id", "invalid_appointment_id")
		if !ok {
			return
		}

		appt, err := svc.Lookup(r.Context(), id)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ConfirmationResponse{
			AppointmentID: appt.ID.String(),
			SalonID:       appt.SalonID.String(),
			ServiceID:     appt.ServiceID.String(),
			Date:          appt.Date,
			Time:          appt.Time,
			Status:        string(appt.Status),
			PaymentStatus: string(appt.PaymentStatus),
		})
	}
}

func handleCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrSlotUnavailable):
		writeError(w, http.StatusConflict, "slot_unavailable", err.Error())
	case errors.Is(err, booking.ErrGuestContactRequired):
		writeError(w, http.StatusBadRequest, "guest_contact_required", err.Error())
	case errors.Is(err, booking.ErrMissingBrowser):
		writeError(w, http.StatusBadRequest, "missing_browser", err.Error())
	case errors.Is(err, booking.ErrPaymentUnavailable):
		writeError(w, http.StatusBadGateway, "payment_unavailable", "could not start payment, try again later")
	default:
		handleSalonError(w, err)
	}
}

func handleCallbackError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrNoPendingBooking):
		writeError(w, http.StatusNotFound, "no_pending_booking", err.Error())
	case errors.Is(err, booking.ErrPaymentCancelledOrFailed):
		writeError(w, http.StatusPaymentRequired, "payment_cancelled_or_failed", err.Error())
	case errors.Is(err, booking.ErrAppointmentCreationFailed):
		writeError(w, http.StatusInternalServerError, "appointment_creation_failed", booking.ErrAppointmentCreationFailed.Error())
	case errors.Is(err, booking.ErrReconcileInProgress):
		writeError(w, http.StatusConflict, "reconcile_in_progress", err.Error())
	case errors.Is(err, booking.ErrMissingBrowser):
		writeError(w, http.StatusBadRequest, "missing_browser", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
