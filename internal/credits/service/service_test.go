package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ytza/ytza/internal/config"
	"github.com/ytza/ytza/internal/credits/domain"
	"github.com/ytza/ytza/internal/credits/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.UserCredits{}))

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Plans: config.NewStaticPlansHolder(config.DefaultPlansConfig()),
		Repo:  repository.Provide(),
	})
	return svc, db
}

func TestSelectFreePlanGrantsStarterCredits(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.SelectPlan(ctx, domain.SelectPlanRequest{UserID: "user-1", PlanName: "free"})
	require.NoError(t, err)
	assert.Equal(t, "free", resp.PlanName)
	assert.Equal(t, 5, resp.Balance)

	balance, err := svc.Balance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 5, balance)
}

func TestSelectPlanIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SelectPlan(ctx, domain.SelectPlanRequest{UserID: "user-1", PlanName: "free"})
	require.NoError(t, err)
	require.NoError(t, svc.Debit(ctx, "user-1"))

	resp, err := svc.SelectPlan(ctx, domain.SelectPlanRequest{UserID: "user-1", PlanName: "free"})
	require.NoError(t, err)
	assert.Equal(t, 4, resp.Balance, "re-selecting must not grant a second starter balance")
}

func TestSelectPaidPlanRequiresCheckout(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SelectPlan(context.Background(), domain.SelectPlanRequest{UserID: "user-1", PlanName: "pro"})
	assert.ErrorIs(t, err, domain.ErrPaidPlan)
}

func TestSelectUnknownPlan(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SelectPlan(context.Background(), domain.SelectPlanRequest{UserID: "user-1", PlanName: "platinum"})
	assert.ErrorIs(t, err, domain.ErrUnknownPlan)
}

func TestDebitStopsAtZero(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Grant(ctx, "user-1", 2, domain.TierFree))

	require.NoError(t, svc.Debit(ctx, "user-1"))
	require.NoError(t, svc.Debit(ctx, "user-1"))
	assert.ErrorIs(t, svc.Debit(ctx, "user-1"), domain.ErrInsufficientCredits)

	balance, err := svc.Balance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, balance, "balance never goes negative")
}

func TestDebitUnknownUser(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.Debit(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrInsufficientCredits)
}

func TestRefundRestoresDebitedCredit(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Grant(ctx, "user-1", 1, domain.TierFree))
	require.NoError(t, svc.Debit(ctx, "user-1"))
	require.NoError(t, svc.Refund(ctx, "user-1"))

	balance, err := svc.Balance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, balance)
}

func TestGrantUpgradesTier(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Grant(ctx, "user-1", 5, domain.TierFree))
	require.NoError(t, svc.Grant(ctx, "user-1", 50, domain.TierPro))

	balance, err := svc.Balance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 55, balance)

	tier, err := svc.Tier(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.TierPro, tier)
}

func TestBalanceForMissingRow(t *testing.T) {
	svc, _ := newTestService(t)

	balance, err := svc.Balance(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, 0, balance)

	tier, err := svc.Tier(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, domain.TierFree, tier)
}
