package api

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/hackgods/salon-booking/internal/appointment"
	"github.com/hackgods/salon-booking/internal/session"
)

func getAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "id", "invalid_appointment_id")
		if !ok {
			return
		}

		appt, err := svc.Get(r.Context(), session.FromContext(r.Context()), id)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appt)
	}
}

// listAppointmentsHandler serves either ?customer_id= or ?salon_id=[&date=].
func listAppointmentsHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		sess := session.FromContext(r.Context())
		limit := intQuery(r, "limit", 20)
		offset := intQuery(r, "offset", 0)

		var (
			list []appointment.Appointment
			err  error
		)
		switch {
		case q.Get("customer_id") != "":
			list, err = svc.ListByCustomer(r.Context(), sess, q.Get("customer_id"), limit, offset)
		case q.Get("salon_id") != "":
			salonID, perr := uuid.Parse(q.Get("salon_id"))
			if perr != nil {
				writeError(w, http.StatusBadRequest, "invalid_salon_id", "salon_id must be a valid UUID")
				return
			}
			list, err = svc.ListBySalon(r.Context(), sess, salonID, q.Get("date"), limit, offset)
		default:
			writeError(w, http.StatusBadRequest, "missing_filter", "customer_id or salon_id is required")
			return
		}
		if err != nil {
			handleAppointmentError(w, err)
			return
		}
		if list == nil {
			list = []appointment.Appointment{}
		}

		writeJSON(w, http.StatusOK, AppointmentsResponse{Appointments: list, Limit: limit, Offset: offset})
	}
}

func confirmAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "id", "invalid_appointment_id")
		if !ok {
			return
		}

		appt, err := svc.Confirm(r.Context(), session.FromContext(r.Context()), id)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appt)
	}
}

func cancelAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "id", "invalid_appointment_id")
		if !ok {
			return
		}

		appt, err := svc.Cancel(r.Context(), session.FromContext(r.Context()), id)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appt)
	}
}

func handleAppointmentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, appointment.ErrInvalidStatusTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	case errors.Is(err, appointment.ErrInvalidAppointment):
		writeError(w, http.StatusBadRequest, "invalid_appointment", err.Error())
	case errors.Is(err, appointment.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
