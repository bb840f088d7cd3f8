package repository

import (
	"context"
	"time"

	"github.com/ytza/ytza/internal/newsletter/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Subscriber, error) {
	var row domain.Subscriber
	err := db.WithContext(ctx).Raw(
		`SELECT id, email, source, synced_at, created_at
		 FROM newsletter_subscribers WHERE email = ?`,
		email,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *repo) FindUnsynced(ctx context.Context, db *gorm.DB, limit int) ([]domain.Subscriber, error) {
	var rows []domain.Subscriber
	err := db.WithContext(ctx).Raw(
		`SELECT id, email, source, synced_at, created_at
		 FROM newsletter_subscribers
		 WHERE synced_at IS NULL
		 ORDER BY created_at ASC
		 LIMIT ?`,
		limit,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, row *domain.Subscriber) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO newsletter_subscribers (id, email, source, synced_at, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		row.ID,
		row.Email,
		row.Source,
		row.SyncedAt,
		row.CreatedAt,
	).Error
}

func (r *repo) MarkSynced(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE newsletter_subscribers SET synced_at = ? WHERE id = ?`,
		time.Now().UTC(),
		id,
	).Error
}
