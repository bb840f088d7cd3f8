package domain

import (
	"context"
	"errors"
)

type SelectPlanRequest struct {
	UserID   string
	PlanName string
}

type SelectPlanResponse struct {
	PlanName string `json:"planName"`
	Balance  int    `json:"balance"`
}

type Service interface {
	// Balance returns the current balance; users without a row have 0.
	Balance(ctx context.Context, userID string) (int, error)
	// Tier returns the user's subscription tier.
	Tier(ctx context.Context, userID string) (string, error)
	// Debit atomically removes one credit, failing with
	// ErrInsufficientCredits when the balance is already 0.
	Debit(ctx context.Context, userID string) error
	// Refund compensates a debit after a downstream failure.
	Refund(ctx context.Context, userID string) error
	// Grant adds credits and optionally upgrades the tier.
	Grant(ctx context.Context, userID string, credits int, tier string) error
	// SelectPlan activates a zero-cost plan; paid plans go through checkout.
	SelectPlan(ctx context.Context, req SelectPlanRequest) (SelectPlanResponse, error)
}

var (
	ErrInsufficientCredits = errors.New("insufficient_credits")
	ErrUnknownPlan         = errors.New("unknown_plan")
	ErrPaidPlan            = errors.New("paid_plan_requires_checkout")
	ErrInvalidUser         = errors.New("invalid_user")
)
