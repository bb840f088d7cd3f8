package service

import (
	"context"
	"strings"
	"time"

	"github.com/ytza/ytza/internal/config"
	"github.com/ytza/ytza/internal/credits/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Plans *config.PlansConfigHolder
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	plans *config.PlansConfigHolder
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("credits.service"),
		plans: p.Plans,
		repo:  p.Repo,
	}
}

func (s *Service) Balance(ctx context.Context, userID string) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, domain.ErrInvalidUser
	}
	row, err := s.repo.Find(ctx, s.db, userID)
	if err != nil {
		return 0, err
	}
	if row == nil {
		return 0, nil
	}
	return row.Balance, nil
}

func (s *Service) Tier(ctx context.Context, userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", domain.ErrInvalidUser
	}
	row, err := s.repo.Find(ctx, s.db, userID)
	if err != nil {
		return "", err
	}
	if row == nil {
		return domain.TierFree, nil
	}
	return row.SubscriptionTier, nil
}

func (s *Service) Debit(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return domain.ErrInvalidUser
	}
	updated, err := s.repo.DebitOne(ctx, s.db, userID)
	if err != nil {
		return err
	}
	if !updated {
		return domain.ErrInsufficientCredits
	}
	return nil
}

func (s *Service) Refund(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return domain.ErrInvalidUser
	}
	updated, err := s.repo.CreditN(ctx, s.db, userID, 1)
	if err != nil {
		return err
	}
	if !updated {
		// Refund for a user without a ledger row means the debit never
		// happened; log it rather than failing the caller's error path.
		s.log.Warn("refund without ledger row", zap.String("user_id", userID))
	}
	return nil
}

func (s *Service) Grant(ctx context.Context, userID string, credits int, tier string) error {
	if strings.TrimSpace(userID) == "" {
		return domain.ErrInvalidUser
	}

	updated, err := s.repo.CreditN(ctx, s.db, userID, credits)
	if err != nil {
		return err
	}
	if !updated {
		now := time.Now().UTC()
		row := &domain.UserCredits{
			UserID:           userID,
			Balance:          credits,
			SubscriptionTier: normalizeTier(tier),
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		return s.repo.Insert(ctx, s.db, row)
	}

	if tier != "" {
		return s.repo.SetTier(ctx, s.db, userID, normalizeTier(tier))
	}
	return nil
}

func (s *Service) SelectPlan(ctx context.Context, req domain.SelectPlanRequest) (domain.SelectPlanResponse, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return domain.SelectPlanResponse{}, domain.ErrInvalidUser
	}

	plan, ok := s.plans.Lookup(req.PlanName)
	if !ok {
		return domain.SelectPlanResponse{}, domain.ErrUnknownPlan
	}
	if plan.PriceCents > 0 {
		return domain.SelectPlanResponse{}, domain.ErrPaidPlan
	}

	row, err := s.repo.Find(ctx, s.db, req.UserID)
	if err != nil {
		return domain.SelectPlanResponse{}, err
	}
	if row != nil {
		// Re-selecting is idempotent: no second starter grant.
		return domain.SelectPlanResponse{PlanName: plan.Name, Balance: row.Balance}, nil
	}

	now := time.Now().UTC()
	row = &domain.UserCredits{
		UserID:           req.UserID,
		Balance:          plan.Credits,
		SubscriptionTier: normalizeTier(plan.Tier),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Insert(ctx, s.db, row); err != nil {
		return domain.SelectPlanResponse{}, err
	}

	s.log.Info("plan selected",
		zap.String("user_id", req.UserID),
		zap.String("plan", plan.Name),
		zap.Int("starting_balance", plan.Credits),
	)

	return domain.SelectPlanResponse{PlanName: plan.Name, Balance: row.Balance}, nil
}

func normalizeTier(tier string) string {
	switch strings.TrimSpace(strings.ToLower(tier)) {
	case domain.TierPro:
		return domain.TierPro
	case domain.TierProLifetime:
		return domain.TierProLifetime
	default:
		return domain.TierFree
	}
}
