package domain

import "time"

const (
	TypePlanSelection = "plan_selection"
	TypeSubscription  = "subscription"
	TypeOneTime       = "one_time"
)

// Purchase is an append-only record of a completed credit purchase.
type Purchase struct {
	ID                 int64     `gorm:"primaryKey" json:"id,string"`
	UserID             string    `gorm:"index" json:"userId"`
	AmountCents        int64     `json:"amountCents"`
	CreditsAdded       int       `json:"creditsAdded"`
	PurchaseType       string    `json:"purchaseType"`
	PaymentMethodLast4 string    `json:"paymentMethodLast4,omitempty"`
	StripeSessionID    string    `gorm:"uniqueIndex" json:"-"`
	CreatedAt          time.Time `json:"createdAt"`
}

func (Purchase) TableName() string {
	return "purchases"
}
