package api

import (
	"github.com/hackgods/salon-booking/internal/appointment"
	"github.com/hackgods/salon-booking/internal/booking"
	"github.com/hackgods/salon-booking/internal/notify"
	"github.com/hackgods/salon-booking/internal/salon"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type CreateServiceRequest struct {
	Name            string  `json:"name"`
	DurationMinutes int     `json:"duration_minutes"`
	DurationHours   float64 `json:"duration_hours"`
	PriceCents      int64   `json:"price_cents"`
	Currency        string  `json:"currency"`
}

type ServicesResponse struct {
	Services []salon.Service `json:"services"`
}

type AppointmentsResponse struct {
	Appointments []appointment.Appointment `json:"appointments"`
	Limit        int                       `json:"limit"`
	Offset       int                       `json:"offset"`
}

type DraftResponse struct {
	Draft *booking.PendingBooking `json:"draft"`
}

// ConfirmationResponse is what the post-payment page shows. It leaves out
// customer contact data since it is readable without a login.
type ConfirmationResponse struct {
	AppointmentID string `json:"appointment_id"`
	SalonID       string `json:"salon_id"`
	ServiceID     string `json:"service_id"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
}

type NotificationsResponse struct {
	Notifications []notify.Notification `json:"notifications"`
}
