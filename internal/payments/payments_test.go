package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() CheckoutRequest {
	return CheckoutRequest{
		Description: "Booking fee",
		AmountCents: 500,
		Currency:    "USD",
		Payer:       Payer{Name: "Ann", Email: "ann@example.com"},
		ReferenceID: "ref-123",
		RedirectURL: "http://localhost:8080/payments/callback?session_id=ref-123&status=success",
	}
}

func TestSquareProcessor_InitiateCheckout(t *testing.T) {
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/online-checkout/payment-links", r.URL.Path)
		assert.Equal(t, "Bearer token-abc", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("Square-Version"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"payment_link":{"id":"pl_1","url":"https://square.link/u/abc","order_id":"ord_1"}}`)
	}))
	defer srv.Close()

	p := NewSquareProcessor("token-abc", "LOC1", srv.URL)
	sess, err := p.InitiateCheckout(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, "ref-123", sess.SessionID)
	assert.Equal(t, "https://square.link/u/abc", sess.PaymentLink)
	assert.Equal(t, "pl_1", sess.ProviderRef)

	assert.Equal(t, "ref-123", gotBody["idempotency_key"])
	quickPay := gotBody["quick_pay"].(map[string]any)
	assert.Equal(t, "LOC1", quickPay["location_id"])
	price := quickPay["price_money"].(map[string]any)
	assert.Equal(t, float64(500), price["amount"])
	opts := gotBody["checkout_options"].(map[string]any)
	assert.Contains(t, opts["redirect_url"], "status=success")
	prefill := gotBody["pre_populated_data"].(map[string]any)
	assert.Equal(t, "ann@example.com", prefill["buyer_email"])
}

func TestSquareProcessor_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"errors":[{"code":"UNAUTHORIZED"}]}`)
	}))
	defer srv.Close()

	_, err := NewSquareProcessor("bad", "LOC1", srv.URL).InitiateCheckout(context.Background(), validRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestSquareProcessor_MissingURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"payment_link":{"id":"pl_1"}}`)
	}))
	defer srv.Close()

	_, err := NewSquareProcessor("t", "LOC1", srv.URL).InitiateCheckout(context.Background(), validRequest())
	assert.Error(t, err)
}

func TestCheckoutRequest_Validate(t *testing.T) {
	mutations := map[string]func(*CheckoutRequest){
		"zero amount":  func(r *CheckoutRequest) { r.AmountCents = 0 },
		"bad currency": func(r *CheckoutRequest) { r.Currency = "" },
		"no reference": func(r *CheckoutRequest) { r.ReferenceID = " " },
		"no redirect":  func(r *CheckoutRequest) { r.RedirectURL = "" },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			req := validRequest()
			mutate(&req)
			_, err := NewFakeProcessor("http://localhost:8080").InitiateCheckout(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidCheckout)
		})
	}
}

func TestFakeProcessor_Link(t *testing.T) {
	sess, err := NewFakeProcessor("http://localhost:8080/").InitiateCheckout(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "ref-123", sess.SessionID)

	u, err := url.Parse(sess.PaymentLink)
	require.NoError(t, err)
	assert.Equal(t, "/payments/fake/ref-123", u.Path)
	assert.Equal(t, validRequest().RedirectURL, u.Query().Get("redirect"))

	_, err = NewFakeProcessor("not a url").InitiateCheckout(context.Background(), validRequest())
	assert.Error(t, err)
}

func fakeRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/payments/fake/{sessionID}", FakeCheckoutPage())
	return r
}

func TestFakeCheckoutPage_RedirectsWithOutcome(t *testing.T) {
	redirect := url.QueryEscape("http://evil.example/payments/callback?session_id=other&status=success")
	req := httptest.NewRequest(http.MethodGet, "/payments/fake/ref-123?outcome=cancelled&redirect="+redirect, nil)
	rec := httptest.NewRecorder()

	fakeRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Empty(t, loc.Host)
	assert.Equal(t, "/payments/callback", loc.Path)
	assert.Equal(t, "ref-123", loc.Query().Get("session_id"))
	assert.Equal(t, "cancelled", loc.Query().Get("status"))
}

func TestFakeCheckoutPage_RendersChoices(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/payments/fake/ref-123", nil)
	rec := httptest.NewRecorder()

	fakeRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, o := range fakeOutcomes {
		assert.Contains(t, body, ">"+o+"<")
	}
}
