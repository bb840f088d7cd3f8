package repository

import (
	"context"
	"time"

	"github.com/ytza/ytza/internal/credits/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, userID string) (*domain.UserCredits, error) {
	var row domain.UserCredits
	err := db.WithContext(ctx).Raw(
		`SELECT user_id, balance, subscription_tier, created_at, updated_at
		 FROM user_credits WHERE user_id = ?`,
		userID,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.UserID == "" {
		return nil, nil
	}
	return &row, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, row *domain.UserCredits) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO user_credits (user_id, balance, subscription_tier, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		row.UserID,
		row.Balance,
		row.SubscriptionTier,
		row.CreatedAt,
		row.UpdatedAt,
	).Error
}

func (r *repo) DebitOne(ctx context.Context, db *gorm.DB, userID string) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE user_credits SET balance = balance - 1, updated_at = ?
		 WHERE user_id = ? AND balance >= 1`,
		time.Now().UTC(),
		userID,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) CreditN(ctx context.Context, db *gorm.DB, userID string, n int) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE user_credits SET balance = balance + ?, updated_at = ?
		 WHERE user_id = ?`,
		n,
		time.Now().UTC(),
		userID,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) SetTier(ctx context.Context, db *gorm.DB, userID, tier string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE user_credits SET subscription_tier = ?, updated_at = ?
		 WHERE user_id = ?`,
		tier,
		time.Now().UTC(),
		userID,
	).Error
}
