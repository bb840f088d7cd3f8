package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindByStyle(ctx context.Context, db *gorm.DB, userID, styleID string) (*Project, error)
	FindByUser(ctx context.Context, db *gorm.DB, userID string) ([]Project, error)
	Insert(ctx context.Context, db *gorm.DB, row *Project) error
	Update(ctx context.Context, db *gorm.DB, row *Project) error
}
