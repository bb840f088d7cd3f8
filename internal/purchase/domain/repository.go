package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, row *Purchase) error
	FindByUser(ctx context.Context, db *gorm.DB, userID string) ([]Purchase, error)
	FindBySession(ctx context.Context, db *gorm.DB, sessionID string) (*Purchase, error)
}
