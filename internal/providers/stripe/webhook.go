package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrInvalidSignature = errors.New("invalid_webhook_signature")
	ErrInvalidPayload   = errors.New("invalid_webhook_payload")
	ErrEventIgnored     = errors.New("webhook_event_ignored")
)

// WebhookEvent is a checkout completion extracted from a Stripe event.
type WebhookEvent struct {
	EventID       string
	Type          string
	SessionID     string
	UserID        string
	PlanName      string
	Credits       int
	AmountTotal   int64
	CustomerEmail string
}

// WebhookVerifier checks Stripe-Signature headers against the endpoint
// secret and parses the events this service acts on.
type WebhookVerifier struct {
	secret string
}

func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: secret}
}

// Verify validates the v1 HMAC-SHA256 signature over "timestamp.payload".
func (v *WebhookVerifier) Verify(payload []byte, headers http.Header) error {
	sigHeader := strings.TrimSpace(headers.Get("Stripe-Signature"))
	if sigHeader == "" {
		return ErrInvalidSignature
	}

	timestamp, signatures, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return ErrInvalidSignature
	}

	signedPayload := fmt.Sprintf("%s.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(v.secret))
	_, _ = mac.Write([]byte(signedPayload))
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, signature := range signatures {
		if hmac.Equal([]byte(signature), []byte(expected)) {
			return nil
		}
	}
	return ErrInvalidSignature
}

// Parse extracts a checkout.session.completed event. Other event types
// return ErrEventIgnored so the handler can acknowledge them without work.
func (v *WebhookVerifier) Parse(payload []byte) (*WebhookEvent, error) {
	var event struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			Object json.RawMessage `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, ErrInvalidPayload
	}
	if strings.TrimSpace(event.ID) == "" {
		return nil, ErrInvalidPayload
	}

	if event.Type != "checkout.session.completed" {
		return nil, ErrEventIgnored
	}

	var session CheckoutSession
	if err := json.Unmarshal(event.Data.Object, &session); err != nil {
		return nil, ErrInvalidPayload
	}
	if strings.TrimSpace(session.ID) == "" {
		return nil, ErrInvalidPayload
	}

	credits := 0
	if raw, ok := session.Metadata["credits"]; ok {
		_, _ = fmt.Sscanf(raw, "%d", &credits)
	}

	return &WebhookEvent{
		EventID:       event.ID,
		Type:          event.Type,
		SessionID:     session.ID,
		UserID:        session.Metadata["user_id"],
		PlanName:      session.Metadata["plan_name"],
		Credits:       credits,
		AmountTotal:   session.AmountTotal,
		CustomerEmail: session.Email(),
	}, nil
}

func parseSignatureHeader(header string) (string, []string, error) {
	parts := strings.Split(header, ",")
	var timestamp string
	signatures := []string{}
	for _, part := range parts {
		piece := strings.TrimSpace(part)
		if piece == "" {
			continue
		}
		keyValue := strings.SplitN(piece, "=", 2)
		if len(keyValue) != 2 {
			continue
		}
		key := strings.TrimSpace(keyValue[0])
		value := strings.TrimSpace(keyValue[1])
		if key == "t" {
			timestamp = value
		}
		if key == "v1" {
			signatures = append(signatures, value)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return "", nil, errors.New("invalid_signature")
	}
	return timestamp, signatures, nil
}
