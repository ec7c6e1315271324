package notify

import "fmt"

type Kind string

const (
	KindNewBooking           Kind = "new_booking"
	KindBookingCreated       Kind = "booking_created"
	KindAppointmentConfirmed Kind = "appointment_confirmed"
	KindAppointmentCancelled Kind = "appointment_cancelled"
	KindSalonApproved        Kind = "salon_approved"
	KindSystem               Kind = "system"
)

// Audience says who a notification kind is addressed to.
type Audience string

const (
	AudienceSalonOwner Audience = "salon_owner"
	AudienceCustomer   Audience = "customer"
	AudienceAnyone     Audience = "anyone"
)

func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown notification kind %q", s)
	}
	return k, nil
}

func (k Kind) Valid() bool {
	return k.Audience() != ""
}

// Audience returns "" for kinds outside the closed set.
func (k Kind) Audience() Audience {
	switch k {
	case KindNewBooking, KindSalonApproved:
		return AudienceSalonOwner
	case KindBookingCreated, KindAppointmentConfirmed, KindAppointmentCancelled:
		return AudienceCustomer
	case KindSystem:
		return AudienceAnyone
	default:
		return ""
	}
}

// EmailWorthy reports whether the kind is mirrored to email when an address
// is known.
func (k Kind) EmailWorthy() bool {
	switch k {
	case KindNewBooking, KindBookingCreated, KindAppointmentConfirmed, KindAppointmentCancelled, KindSalonApproved:
		return true
	case KindSystem:
		return false
	default:
		return false
	}
}
