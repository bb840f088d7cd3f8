package repository

import (
	"context"

	"github.com/ytza/ytza/internal/project/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByStyle(ctx context.Context, db *gorm.DB, userID, styleID string) (*domain.Project, error) {
	var row domain.Project
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, selected_style_id, thumbnail_storage_path,
		        generated_yt_title, generated_yt_description, generated_yt_tags,
		        created_at, updated_at
		 FROM projects WHERE user_id = ? AND selected_style_id = ?`,
		userID, styleID,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *repo) FindByUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.Project, error) {
	var rows []domain.Project
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, selected_style_id, thumbnail_storage_path,
		        generated_yt_title, generated_yt_description, generated_yt_tags,
		        created_at, updated_at
		 FROM projects WHERE user_id = ? ORDER BY updated_at DESC`,
		userID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, row *domain.Project) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO projects (id, user_id, selected_style_id, thumbnail_storage_path,
		                       generated_yt_title, generated_yt_description, generated_yt_tags,
		                       created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID,
		row.UserID,
		row.SelectedStyleID,
		row.ThumbnailStoragePath,
		row.GeneratedYtTitle,
		row.GeneratedYtDescription,
		row.GeneratedYtTags,
		row.CreatedAt,
		row.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, row *domain.Project) error {
	return db.WithContext(ctx).Exec(
		`UPDATE projects
		 SET thumbnail_storage_path = ?, generated_yt_title = ?,
		     generated_yt_description = ?, generated_yt_tags = ?, updated_at = ?
		 WHERE id = ?`,
		row.ThumbnailStoragePath,
		row.GeneratedYtTitle,
		row.GeneratedYtDescription,
		row.GeneratedYtTags,
		row.UpdatedAt,
		row.ID,
	).Error
}
