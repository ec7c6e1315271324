package appointment

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
	PaymentFailed  PaymentStatus = "failed"
)

// GuestPrefix marks customer ids minted for visitors without an account.
const GuestPrefix = "guest_"

func IsGuestID(customerID string) bool {
	return strings.HasPrefix(customerID, GuestPrefix)
}

// CustomerInfo is the contact data captured for guest bookings.
type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type Appointment struct {
	ID                  uuid.UUID     `json:"id"`
	SalonID             uuid.UUID     `json:"salon_id"`
	CustomerID          string        `json:"customer_id"`
	ServiceID           uuid.UUID     `json:"service_id"`
	StaffID             string        `json:"staff_id,omitempty"`
	Date                string        `json:"date"`
	Time                string        `json:"time"`
	DurationMinutes     int           `json:"duration_minutes"`
	Status              Status        `json:"status"`
	TotalAmountCents    int64         `json:"total_amount_cents"`
	Currency            string        `json:"currency"`
	PaymentStatus       PaymentStatus `json:"payment_status"`
	PaymentSessionID    string        `json:"payment_session_id,omitempty"`
	SpecialInstructions string        `json:"special_instructions,omitempty"`
	CustomerInfo        *CustomerInfo `json:"customer_info,omitempty"`
	Deleted             bool          `json:"-"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

func (a *Appointment) Guest() bool {
	return IsGuestID(a.CustomerID)
}

// NewAppointment is the input for Create. Date is YYYY-MM-DD and Time HH:MM,
// both in the salon's local time.
type NewAppointment struct {
	SalonID             uuid.UUID
	CustomerID          string
	ServiceID           uuid.UUID
	StaffID             string
	Date                string
	Time                string
	DurationMinutes     int
	Status              Status
	TotalAmountCents    int64
	Currency            string
	PaymentStatus       PaymentStatus
	PaymentSessionID    string
	SpecialInstructions string
	CustomerInfo        *CustomerInfo
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}
