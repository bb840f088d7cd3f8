package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ytza/ytza/internal/project/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("project.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Save(ctx context.Context, req domain.SaveRequest) (*domain.Project, error) {
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.SelectedStyleID) == "" {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	existing, err := s.repo.FindByStyle(ctx, s.db, req.UserID, req.SelectedStyleID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		row := &domain.Project{
			ID:                     s.genID.Generate().Int64(),
			UserID:                 req.UserID,
			SelectedStyleID:        req.SelectedStyleID,
			ThumbnailStoragePath:   req.ThumbnailStoragePath,
			GeneratedYtTitle:       req.GeneratedYtTitle,
			GeneratedYtDescription: req.GeneratedYtDescription,
			GeneratedYtTags:        domain.JoinTags(req.GeneratedYtTags),
			CreatedAt:              now,
			UpdatedAt:              now,
		}
		if err := s.repo.Insert(ctx, s.db, row); err != nil {
			return nil, err
		}
		return row, nil
	}

	if req.ThumbnailStoragePath != "" {
		existing.ThumbnailStoragePath = req.ThumbnailStoragePath
	}
	if req.GeneratedYtTitle != "" {
		existing.GeneratedYtTitle = req.GeneratedYtTitle
	}
	if req.GeneratedYtDescription != "" {
		existing.GeneratedYtDescription = req.GeneratedYtDescription
	}
	if len(req.GeneratedYtTags) > 0 {
		existing.GeneratedYtTags = domain.JoinTags(req.GeneratedYtTags)
	}
	existing.UpdatedAt = now

	if err := s.repo.Update(ctx, s.db, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Service) UpdateThumbnail(ctx context.Context, userID, styleID, storagePath string) (*domain.Project, error) {
	if strings.TrimSpace(storagePath) == "" {
		return nil, domain.ErrInvalidInput
	}

	existing, err := s.repo.FindByStyle(ctx, s.db, userID, styleID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}

	existing.ThumbnailStoragePath = storagePath
	existing.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Service) UpdateContent(ctx context.Context, userID, styleID string, update domain.ContentUpdate) (*domain.Project, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(styleID) == "" {
		return nil, domain.ErrInvalidInput
	}

	existing, err := s.repo.FindByStyle(ctx, s.db, userID, styleID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}

	if update.Title != nil {
		existing.GeneratedYtTitle = *update.Title
	}
	if update.Description != nil {
		existing.GeneratedYtDescription = *update.Description
	}
	if update.Tags != nil {
		existing.GeneratedYtTags = domain.JoinTags(update.Tags)
	}
	existing.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, s.db, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Service) GetByStyle(ctx context.Context, userID, styleID string) (*domain.Project, error) {
	row, err := s.repo.FindByStyle(ctx, s.db, userID, styleID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, domain.ErrNotFound
	}
	return row, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]domain.Project, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.repo.FindByUser(ctx, s.db, userID)
}
