package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Find(ctx context.Context, db *gorm.DB, userID string) (*UserCredits, error)
	Insert(ctx context.Context, db *gorm.DB, row *UserCredits) error
	// DebitOne decrements the balance by one only when at least one credit
	// remains; reports whether a row was updated.
	DebitOne(ctx context.Context, db *gorm.DB, userID string) (bool, error)
	// CreditN adds credits back (or grants new ones) to an existing row.
	CreditN(ctx context.Context, db *gorm.DB, userID string, n int) (bool, error)
	SetTier(ctx context.Context, db *gorm.DB, userID, tier string) error
}
