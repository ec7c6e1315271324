package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/salon-booking/internal/salon"
	"github.com/hackgods/salon-booking/internal/schedule"
	"github.com/hackgods/salon-booking/internal/session"
)

func listServicesHandler(svc SalonService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		salonID, ok := uuidParam(w, r, "salonID", "invalid_salon_id")
		if !ok {
			return
		}

		list, err := svc.ListServices(r.Context(), salonID)
		if err != nil {
			handleSalonError(w, err)
			return
		}
		if list == nil {
			list = []salon.Service{}
		}
		writeJSON(w, http.StatusOK, ServicesResponse{Services: list})
	}
}

func availabilityHandler(svc SalonService, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		salonID, ok := uuidParam(w, r, "salonID", "invalid_salon_id")
		if !ok {
			return
		}
		serviceID, err := uuid.Parse(r.URL.Query().Get("service_id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_service_id", "service_id must be a valid UUID")
			return
		}
		date := r.URL.Query().Get("date")
		if date == "" {
			writeError(w, http.StatusBadRequest, "invalid_date", "date is required (YYYY-MM-DD)")
			return
		}

		avail, err := svc.Availability(r.Context(), salonID, serviceID, date, now())
		if err != nil {
			handleSalonError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, avail)
	}
}

func updateWorkingHoursHandler(svc SalonService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		salonID, ok := uuidParam(w, r, "salonID", "invalid_salon_id")
		if !ok {
			return
		}
		var hours schedule.WorkingHours
		if !decodeJSON(w, r, &hours) {
			return
		}

		updated, err := svc.UpdateWorkingHours(r.Context(), session.FromContext(r.Context()), salonID, hours)
		if err != nil {
			handleSalonError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func createServiceHandler(svc SalonService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		salonID, ok := uuidParam(w, r, "salonID", "invalid_salon_id")
		if !ok {
			return
		}
		var req CreateServiceRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		created, err := svc.CreateService(r.Context(), session.FromContext(r.Context()), salonID, salon.NewService{
			Name:            req.Name,
			DurationMinutes: req.DurationMinutes,
			DurationHours:   req.DurationHours,
			PriceCents:      req.PriceCents,
			Currency:        req.Currency,
		})
		if err != nil {
			handleSalonError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func approveSalonHandler(svc SalonService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		salonID, ok := uuidParam(w, r, "salonID", "invalid_salon_id")
		if !ok {
			return
		}

		approved, err := svc.Approve(r.Context(), session.FromContext(r.Context()), salonID)
		if err != nil {
			handleSalonError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, approved)
	}
}

func handleSalonError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, salon.ErrSalonNotFound):
		writeError(w, http.StatusNotFound, "salon_not_found", err.Error())
	case errors.Is(err, salon.ErrServiceNotFound):
		writeError(w, http.StatusNotFound, "service_not_found", err.Error())
	case errors.Is(err, salon.ErrServiceNotInSalon):
		writeError(w, http.StatusNotFound, "service_not_found", err.Error())
	case errors.Is(err, salon.ErrSalonNotApproved):
		writeError(w, http.StatusConflict, "salon_not_approved", err.Error())
	case errors.Is(err, salon.ErrServiceInactive):
		writeError(w, http.StatusConflict, "service_inactive", err.Error())
	case errors.Is(err, salon.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, "invalid_date", err.Error())
	case errors.Is(err, salon.ErrDateInPast):
		writeError(w, http.StatusBadRequest, "date_in_past", err.Error())
	case errors.Is(err, salon.ErrInvalidService):
		writeError(w, http.StatusBadRequest, "invalid_service", err.Error())
	case errors.Is(err, schedule.ErrInvalidWorkingHours):
		writeError(w, http.StatusBadRequest, "invalid_working_hours", err.Error())
	case errors.Is(err, salon.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
