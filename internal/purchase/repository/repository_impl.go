package repository

import (
	"context"

	"github.com/ytza/ytza/internal/purchase/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, row *domain.Purchase) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO purchases (id, user_id, amount_cents, credits_added, purchase_type,
		                        payment_method_last4, stripe_session_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID,
		row.UserID,
		row.AmountCents,
		row.CreditsAdded,
		row.PurchaseType,
		row.PaymentMethodLast4,
		row.StripeSessionID,
		row.CreatedAt,
	).Error
}

func (r *repo) FindByUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.Purchase, error) {
	var rows []domain.Purchase
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, amount_cents, credits_added, purchase_type,
		        payment_method_last4, stripe_session_id, created_at
		 FROM purchases WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) FindBySession(ctx context.Context, db *gorm.DB, sessionID string) (*domain.Purchase, error) {
	var row domain.Purchase
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, amount_cents, credits_added, purchase_type,
		        payment_method_last4, stripe_session_id, created_at
		 FROM purchases WHERE stripe_session_id = ?`,
		sessionID,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}
