package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const squareVersion = "2024-07-17"

// SquareProcessor creates Square payment links.
type SquareProcessor struct {
	accessToken string
	locationID  string
	baseURL     string
	httpClient  *http.Client
}

func NewSquareProcessor(accessToken, locationID, baseURL string) *SquareProcessor {
	if baseURL == "" {
		baseURL = "https://connect.squareupsandbox.com"
	}
	return &SquareProcessor{
		accessToken: accessToken,
		locationID:  locationID,
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *SquareProcessor) InitiateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Description)
	if name == "" {
		name = "Booking fee"
	}

	prePopulated := map[string]any{}
	if req.Payer.Email != "" {
		prePopulated["buyer_email"] = req.Payer.Email
	}
	if req.Payer.Phone != "" {
		prePopulated["buyer_phone_number"] = req.Payer.Phone
	}

	body := map[string]any{
		"idempotency_key": req.ReferenceID,
		"quick_pay": map[string]any{
			"name":        name,
			"location_id": s.locationID,
			"price_money": map[string]any{
				"amount":   req.AmountCents,
				"currency": strings.ToUpper(req.Currency),
			},
		},
		"checkout_options": map[string]any{
			"redirect_url":             req.RedirectURL,
			"ask_for_shipping_address": false,
		},
		"payment_note": req.ReferenceID,
	}
	if len(prePopulated) > 0 {
		body["pre_populated_data"] = prePopulated
	}

	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("payments: square payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v2/online-checkout/payment-links", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("payments: square request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.accessToken)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Square-Version", squareVersion)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("payments: square http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("payments: square api status %d: %s", resp.StatusCode, string(msg))
	}

	var parsed struct {
		PaymentLink struct {
			ID      string `json:"id"`
			URL     string `json:"url"`
			OrderID string `json:"order_id"`
		} `json:"payment_link"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("payments: square decode: %w", err)
	}
	if parsed.PaymentLink.URL == "" {
		return nil, fmt.Errorf("payments: square response missing url")
	}

	return &CheckoutSession{
		SessionID:   req.ReferenceID,
		PaymentLink: parsed.PaymentLink.URL,
		ProviderRef: parsed.PaymentLink.ID,
	}, nil
}
