package domain

import (
	"context"
	"errors"
)

type RecordRequest struct {
	UserID             string
	AmountCents        int64
	CreditsAdded       int
	PurchaseType       string
	PaymentMethodLast4 string
	StripeSessionID    string
}

type Service interface {
	// Record appends a purchase. Recording the same Stripe session twice
	// returns ErrDuplicateSession.
	Record(ctx context.Context, req RecordRequest) (*Purchase, error)
	ListByUser(ctx context.Context, userID string) ([]Purchase, error)
	// FindBySession reports whether a checkout session was already credited.
	FindBySession(ctx context.Context, sessionID string) (*Purchase, error)
}

var (
	ErrDuplicateSession = errors.New("duplicate_stripe_session")
	ErrInvalidPurchase  = errors.New("invalid_purchase")
)
