package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidCheckout = errors.New("invalid checkout request")

// Payer is who the hosted checkout page is prefilled for.
type Payer struct {
	Name  string
	Email string
	Phone string
}

type CheckoutRequest struct {
	Description string
	AmountCents int64
	Currency    string
	Payer       Payer
	// ReferenceID becomes the session id echoed back on the callback.
	ReferenceID string
	// RedirectURL is where the processor sends the browser when the
	// customer leaves the hosted page.
	RedirectURL string
}

type CheckoutSession struct {
	SessionID   string
	PaymentLink string
	ProviderRef string
}

// Processor starts a hosted checkout and returns the link to send the
// customer to.
type Processor interface {
	InitiateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
}

func (r CheckoutRequest) validate() error {
	switch {
	case r.AmountCents <= 0:
		return fmt.Errorf("%w: amount must be positive", ErrInvalidCheckout)
	case len(r.Currency) != 3:
		return fmt.Errorf("%w: currency %q", ErrInvalidCheckout, r.Currency)
	case strings.TrimSpace(r.ReferenceID) == "":
		return fmt.Errorf("%w: missing reference id", ErrInvalidCheckout)
	case strings.TrimSpace(r.RedirectURL) == "":
		return fmt.Errorf("%w: missing redirect url", ErrInvalidCheckout)
	}
	return nil
}
