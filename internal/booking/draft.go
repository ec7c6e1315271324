package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoPendingBooking = errors.New("no pending booking found")
	ErrMissingBrowser   = errors.New("missing browser id")
)

type Customer struct {
	ID    string `json:"id"`
	Guest bool   `json:"guest"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// PendingBooking is the intent held across the redirect to the payment
// page. TotalAmountCents is the service price; the checkout fee is separate.
type PendingBooking struct {
	SalonID             uuid.UUID `json:"salon_id"`
	ServiceID           uuid.UUID `json:"service_id"`
	StaffID             string    `json:"staff_id,omitempty"`
	Date                string    `json:"date"`
	Time                string    `json:"time"`
	DurationMinutes     int       `json:"duration_minutes"`
	TotalAmountCents    int64     `json:"total_amount_cents"`
	Currency            string    `json:"currency"`
	Customer            Customer  `json:"customer"`
	SalonOwnerID        string    `json:"salon_owner_id"`
	SpecialInstructions string    `json:"special_instructions,omitempty"`
	PaymentSessionID    string    `json:"payment_session_id,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// Scratch is durable key-value storage that survives the browser leaving
// for the payment processor and coming back.
type Scratch interface {
	SetItem(ctx context.Context, key, value string) error
	GetItem(ctx context.Context, key string) (string, bool, error)
	RemoveItem(ctx context.Context, key string) error
}

const draftKeyPrefix = "booking:draft:"

// DraftStore keeps at most one PendingBooking per browser under a fixed
// key. A new Store replaces any draft that was never cleared.
type DraftStore struct {
	scratch Scratch
}

func NewDraftStore(scratch Scratch) *DraftStore {
	return &DraftStore{scratch: scratch}
}

func draftKey(browserID string) (string, error) {
	browserID = strings.TrimSpace(browserID)
	if browserID == "" {
		return "", ErrMissingBrowser
	}
	return draftKeyPrefix + browserID, nil
}

func (d *DraftStore) Store(ctx context.Context, browserID string, draft PendingBooking) error {
	key, err := draftKey(browserID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	return d.scratch.SetItem(ctx, key, string(data))
}

// Get does not remove the draft.
func (d *DraftStore) Get(ctx context.Context, browserID string) (*PendingBooking, error) {
	key, err := draftKey(browserID)
	if err != nil {
		return nil, err
	}
	raw, ok, err := d.scratch.GetItem(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoPendingBooking
	}

	var draft PendingBooking
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		// An unreadable draft can never be booked; drop it so the browser
		// starts over instead of failing every callback until it expires.
		if rmErr := d.scratch.RemoveItem(ctx, key); rmErr != nil {
			return nil, fmt.Errorf("remove undecodable draft: %w", rmErr)
		}
		return nil, fmt.Errorf("%w: stored draft was unreadable: %v", ErrNoPendingBooking, err)
	}
	return &draft, nil
}

// Clear is idempotent.
func (d *DraftStore) Clear(ctx context.Context, browserID string) error {
	key, err := draftKey(browserID)
	if err != nil {
		return err
	}
	return d.scratch.RemoveItem(ctx, key)
}
