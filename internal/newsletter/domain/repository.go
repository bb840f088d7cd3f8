package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindByEmail(ctx context.Context, db *gorm.DB, email string) (*Subscriber, error)
	// FindUnsynced lists subscribers not yet pushed to the delivery provider,
	// oldest first.
	FindUnsynced(ctx context.Context, db *gorm.DB, limit int) ([]Subscriber, error)
	Insert(ctx context.Context, db *gorm.DB, row *Subscriber) error
	MarkSynced(ctx context.Context, db *gorm.DB, id int64) error
}
