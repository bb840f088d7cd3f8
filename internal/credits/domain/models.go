package domain

import "time"

const (
	TierFree        = "free"
	TierPro         = "pro"
	TierProLifetime = "pro_lifetime"
)

// UserCredits is the per-user credit ledger row. Balance never goes negative:
// debits are conditional updates, not read-modify-write.
type UserCredits struct {
	UserID           string    `gorm:"primaryKey" json:"user_id"`
	Balance          int       `gorm:"not null;default:0" json:"balance"`
	SubscriptionTier string    `gorm:"not null;default:free" json:"subscription_tier"`
	CreatedAt        time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (UserCredits) TableName() string {
	return "user_credits"
}
