package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ytza/ytza/internal/purchase/domain"
	"github.com/ytza/ytza/pkg/db"
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
		log:   p.Log.Named("purchase.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, req domain.RecordRequest) (*domain.Purchase, error) {
	if strings.TrimSpace(req.UserID) == "" || req.CreditsAdded <= 0 {
		return nil, domain.ErrInvalidPurchase
	}

	row := &domain.Purchase{
		ID:                 s.genID.Generate().Int64(),
		UserID:             req.UserID,
		AmountCents:        req.AmountCents,
		CreditsAdded:       req.CreditsAdded,
		PurchaseType:       req.PurchaseType,
		PaymentMethodLast4: req.PaymentMethodLast4,
		StripeSessionID:    req.StripeSessionID,
		CreatedAt:          time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, row); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateSession
		}
		return nil, err
	}

	s.log.Info("purchase recorded",
		zap.String("user_id", req.UserID),
		zap.Int64("amount_cents", req.AmountCents),
		zap.Int("credits_added", req.CreditsAdded),
		zap.String("purchase_type", req.PurchaseType),
	)
	return row, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]domain.Purchase, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrInvalidPurchase
	}
	return s.repo.FindByUser(ctx, s.db, userID)
}

func (s *Service) FindBySession(ctx context.Context, sessionID string) (*domain.Purchase, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, domain.ErrInvalidPurchase
	}
	return s.repo.FindBySession(ctx, s.db, sessionID)
}
