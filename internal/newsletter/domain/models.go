package domain

import "time"

// Subscriber mirrors a newsletter signup locally so subscriptions survive
// delivery-provider outages and can be retried.
type Subscriber struct {
	ID        int64      `gorm:"primaryKey" json:"id,string"`
	Email     string     `gorm:"uniqueIndex" json:"email"`
	Source    string     `json:"source,omitempty"`
	SyncedAt  *time.Time `json:"syncedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (Subscriber) TableName() string {
	return "newsletter_subscribers"
}
