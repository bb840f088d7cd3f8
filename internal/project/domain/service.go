package domain

import (
	"context"
	"errors"
)

type SaveRequest struct {
	UserID                 string
	SelectedStyleID        string
	ThumbnailStoragePath   string
	GeneratedYtTitle       string
	GeneratedYtDescription string
	GeneratedYtTags        []string
}

// ContentUpdate carries sparse metadata edits. Nil fields are left untouched
// so concurrent title and description updates do not clobber each other.
type ContentUpdate struct {
	Title       *string
	Description *string
	Tags        []string
}

type Service interface {
	// Save upserts the project for a (user, style) pair.
	Save(ctx context.Context, req SaveRequest) (*Project, error)
	// UpdateThumbnail stores the path of a freshly generated thumbnail.
	UpdateThumbnail(ctx context.Context, userID, styleID, storagePath string) (*Project, error)
	// UpdateContent applies only the fields present in the update.
	UpdateContent(ctx context.Context, userID, styleID string, update ContentUpdate) (*Project, error)
	GetByStyle(ctx context.Context, userID, styleID string) (*Project, error)
	List(ctx context.Context, userID string) ([]Project, error)
}

var (
	ErrNotFound     = errors.New("project_not_found")
	ErrInvalidInput = errors.New("invalid_project_input")
)
