package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ytza/ytza/internal/config"
)

const defaultAPIBase = "https://api.stripe.com/v1"

var (
	ErrMissingSecretKey = errors.New("stripe_secret_key_missing")
	ErrSessionNotFound  = errors.New("stripe_session_not_found")
)

// APIError is a non-2xx response from the Stripe API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stripe: HTTP %d: %s", e.StatusCode, e.Message)
}

type CheckoutParams struct {
	PlanName     string
	PriceCents   int64
	Credits      int
	UserID       string
	UserEmail    string
	Subscription bool
	SuccessURL   string
	CancelURL    string
}

type CheckoutSession struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	PaymentStatus string `json:"payment_status"`
	CustomerEmail string `json:"customer_email"`
	AmountTotal   int64  `json:"amount_total"`
	CustomerDetails struct {
		Email string `json:"email"`
	} `json:"customer_details"`
	Metadata map[string]string `json:"metadata"`
}

// Paid reports whether the session completed payment.
func (s CheckoutSession) Paid() bool {
	return s.PaymentStatus == "paid"
}

// Email returns the payer email, preferring the collected customer details.
func (s CheckoutSession) Email() string {
	if s.CustomerDetails.Email != "" {
		return s.CustomerDetails.Email
	}
	return s.CustomerEmail
}

// Client talks to the Stripe REST API with form-encoded requests.
type Client struct {
	http      *http.Client
	apiBase   string
	secretKey string
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		http:      &http.Client{Timeout: 30 * time.Second},
		apiBase:   defaultAPIBase,
		secretKey: cfg.StripeSecretKey,
	}
}

// SetAPIBaseForTest points the client at a stub server.
func SetAPIBaseForTest(c *Client, base string) {
	c.apiBase = base
}

func (c *Client) Enabled() bool {
	return strings.TrimSpace(c.secretKey) != ""
}

// CreateCheckoutSession opens a hosted checkout for a credit plan. The user
// ID and plan ride along in metadata so the webhook can credit the right
// account.
func (c *Client) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	if !c.Enabled() {
		return nil, ErrMissingSecretKey
	}

	form := url.Values{}
	form.Set("mode", "payment")
	if params.Subscription {
		// Subscription mode requires a recurring price; plans bill monthly.
		form.Set("mode", "subscription")
		form.Set("line_items[0][price_data][recurring][interval]", "month")
	}
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	form.Set("customer_email", params.UserEmail)
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", "usd")
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(params.PriceCents, 10))
	form.Set("line_items[0][price_data][product_data][name]", params.PlanName)
	form.Set("metadata[user_id]", params.UserID)
	form.Set("metadata[plan_name]", params.PlanName)
	form.Set("metadata[credits]", strconv.Itoa(params.Credits))

	var session CheckoutSession
	if err := c.do(ctx, http.MethodPost, "/checkout/sessions", form, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetCheckoutSession fetches a session for post-payment verification.
func (c *Client) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	if !c.Enabled() {
		return nil, ErrMissingSecretKey
	}

	var session CheckoutSession
	err := c.do(ctx, http.MethodGet, "/checkout/sessions/"+url.PathEscape(sessionID), nil, &session)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiBase+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var parsed struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(respBody, &parsed); err == nil {
			apiErr.Message = parsed.Error.Message
		}
		return apiErr
	}

	return json.Unmarshal(respBody, out)
}
