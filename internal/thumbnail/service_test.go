package thumbnail

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ytza/ytza/internal/config"
	creditsdomain "github.com/ytza/ytza/internal/credits/domain"
	creditsrepo "github.com/ytza/ytza/internal/credits/repository"
	creditsservice "github.com/ytza/ytza/internal/credits/service"
	"github.com/ytza/ytza/internal/providers/openaiimg"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeImages struct {
	b64   string
	err   error
	calls int
}

func (f *fakeImages) GenerateImage(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.b64, f.err
}

func newTestService(t *testing.T, images *fakeImages, startingCredits int) (*Service, creditsdomain.Service) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&creditsdomain.UserCredits{}))

	credits := creditsservice.New(creditsservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		Plans: config.NewStaticPlansHolder(config.DefaultPlansConfig()),
		Repo:  creditsrepo.Provide(),
	})
	if startingCredits > 0 {
		require.NoError(t, credits.Grant(context.Background(), "user-1", startingCredits, creditsdomain.TierFree))
	}

	svc := New(Params{
		Log:     zap.NewNop(),
		Credits: credits,
		Images:  images,
	})
	return svc, credits
}

func TestGenerateDebitsAndReturnsDataURL(t *testing.T) {
	images := &fakeImages{b64: "aGVsbG8="}
	svc, credits := newTestService(t, images, 3)
	ctx := context.Background()

	url, err := svc.Generate(ctx, "user-1", "a chef cooking pasta, 16:9")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,aGVsbG8=", url)

	balance, err := credits.Balance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, balance, "exactly one credit debited")
}

func TestGenerateInsufficientCreditsSkipsProvider(t *testing.T) {
	images := &fakeImages{b64: "aGVsbG8="}
	svc, credits := newTestService(t, images, 0)
	ctx := context.Background()

	_, err := svc.Generate(ctx, "user-1", "prompt")
	assert.ErrorIs(t, err, creditsdomain.ErrInsufficientCredits)
	assert.Zero(t, images.calls, "provider must not be called without a credit")

	balance, err := credits.Balance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
}

func TestGenerateContentPolicyRefundsCredit(t *testing.T) {
	images := &fakeImages{err: openaiimg.ErrContentPolicy}
	svc, credits := newTestService(t, images, 3)
	ctx := context.Background()

	_, err := svc.Generate(ctx, "user-1", "prompt")
	var genErr *Error
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, CodeContentPolicy, genErr.Code)
	assert.True(t, genErr.CreditRefunded)

	balance, err := credits.Balance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, balance, "balance restored to pre-call value")
}

func TestGenerateProviderErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "api error", err: &openaiimg.APIError{StatusCode: 500, Message: "boom"}, wantCode: CodeOpenAIAPI},
		{name: "empty result", err: openaiimg.ErrNoImage, wantCode: CodeGenerationFail},
		{name: "unknown", err: context.DeadlineExceeded, wantCode: CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, credits := newTestService(t, &fakeImages{err: tt.err}, 2)

			_, err := svc.Generate(context.Background(), "user-1", "prompt")
			var genErr *Error
			require.ErrorAs(t, err, &genErr)
			assert.Equal(t, tt.wantCode, genErr.Code)
			assert.True(t, genErr.CreditRefunded)

			balance, err := credits.Balance(context.Background(), "user-1")
			require.NoError(t, err)
			assert.Equal(t, 2, balance)
		})
	}
}

func TestGenerateEmptyPrompt(t *testing.T) {
	svc, _ := newTestService(t, &fakeImages{}, 1)

	_, err := svc.Generate(context.Background(), "user-1", "   ")
	assert.ErrorIs(t, err, ErrEmptyPrompt)
}
