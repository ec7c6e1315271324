package payments

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

// FakeProcessor is a dev checkout provider. Its payment link points at
// FakeCheckoutPage on this server. Never enable it in production.
type FakeProcessor struct {
	publicBaseURL string
}

func NewFakeProcessor(publicBaseURL string) *FakeProcessor {
	return &FakeProcessor{publicBaseURL: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/")}
}

func (p *FakeProcessor) InitiateCheckout(_ context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if !isValidBaseURL(p.publicBaseURL) {
		return nil, fmt.Errorf("payments: fake checkout PUBLIC_BASE_URL must be an absolute http(s) URL")
	}

	link := fmt.Sprintf("%s/payments/fake/%s?redirect=%s",
		p.publicBaseURL, url.PathEscape(req.ReferenceID), url.QueryEscape(req.RedirectURL))
	return &CheckoutSession{
		SessionID:   req.ReferenceID,
		PaymentLink: link,
		ProviderRef: "fake:" + req.ReferenceID,
	}, nil
}

var fakeOutcomes = []string{"success", "cancelled", "failed"}

// FakeCheckoutPage renders three outcome links. With ?outcome= set it
// redirects to the callback the way a real processor would.
func FakeCheckoutPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionID")
		if sessionID == "" {
			http.Error(w, "missing session", http.StatusBadRequest)
			return
		}

		redirect := localPath(r.URL.Query().Get("redirect"))

		outcome := r.URL.Query().Get("outcome")
		if outcome != "" {
			target, err := callbackURL(redirect, sessionID, outcome)
			if err != nil {
				http.Error(w, "bad redirect", http.StatusBadRequest)
				return
			}
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<!doctype html>\n<html><body><h1>Test checkout</h1><p>Session %s</p><ul>\n", html.EscapeString(sessionID))
		for _, o := range fakeOutcomes {
			q := url.Values{"outcome": {o}, "redirect": {redirect}}
			fmt.Fprintf(w, "<li><a href=\"?%s\">%s</a></li>\n", html.EscapeString(q.Encode()), o)
		}
		fmt.Fprint(w, "</ul></body></html>\n")
	}
}

// localPath drops scheme and host so the page only redirects within this
// server.
func localPath(redirect string) string {
	u, err := url.Parse(redirect)
	if err != nil || u.Path == "" || !strings.HasPrefix(u.Path, "/") {
		return "/payments/callback"
	}
	local := url.URL{Path: u.Path, RawQuery: u.RawQuery}
	return local.String()
}

// callbackURL sets session_id and status on redirect, replacing any values
// already present.
func callbackURL(redirect, sessionID, status string) (string, error) {
	u, err := url.Parse(redirect)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("session_id", sessionID)
	q.Set("status", status)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func isValidBaseURL(value string) bool {
	parsed, err := url.Parse(value)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return false
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return true
	default:
		return false
	}
}
