package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ytza/ytza/internal/project/domain"
	"github.com/ytza/ytza/internal/project/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Project{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
}

func TestSaveCreatesProject(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	row, err := svc.Save(ctx, domain.SaveRequest{
		UserID:                 "user-1",
		SelectedStyleID:        "beast",
		GeneratedYtTitle:       "I Tried This For 30 Days",
		GeneratedYtDescription: "What happened will surprise you.",
		GeneratedYtTags:        []string{"challenge", "30 days"},
	})
	require.NoError(t, err)
	assert.NotZero(t, row.ID)
	assert.Equal(t, "challenge,30 days", row.GeneratedYtTags)
	assert.Equal(t, []string{"challenge", "30 days"}, row.Tags())
}

func TestSaveUpsertsPerUserAndStyle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.Save(ctx, domain.SaveRequest{
		UserID:           "user-1",
		SelectedStyleID:  "beast",
		GeneratedYtTitle: "Original Title",
	})
	require.NoError(t, err)

	second, err := svc.Save(ctx, domain.SaveRequest{
		UserID:           "user-1",
		SelectedStyleID:  "beast",
		GeneratedYtTitle: "Updated Title",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "same user and style must reuse the row")
	assert.Equal(t, "Updated Title", second.GeneratedYtTitle)

	other, err := svc.Save(ctx, domain.SaveRequest{
		UserID:          "user-1",
		SelectedStyleID: "minimalist",
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID, "different style gets its own row")
}

func TestUpdateContentIsSparse(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, domain.SaveRequest{
		UserID:                 "user-1",
		SelectedStyleID:        "beast",
		GeneratedYtTitle:       "Keep Me",
		GeneratedYtDescription: "Replace Me",
		GeneratedYtTags:        []string{"keep"},
	})
	require.NoError(t, err)

	desc := "Replaced"
	row, err := svc.UpdateContent(ctx, "user-1", "beast", domain.ContentUpdate{Description: &desc})
	require.NoError(t, err)

	assert.Equal(t, "Keep Me", row.GeneratedYtTitle, "absent fields stay untouched")
	assert.Equal(t, "Replaced", row.GeneratedYtDescription)
	assert.Equal(t, []string{"keep"}, row.Tags())
}

func TestUpdateContentMissingProject(t *testing.T) {
	svc := newTestService(t)

	title := "New"
	_, err := svc.UpdateContent(context.Background(), "user-1", "beast", domain.ContentUpdate{Title: &title})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateThumbnailReplacesExistingImage(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, domain.SaveRequest{
		UserID:               "user-1",
		SelectedStyleID:      "cinematic",
		ThumbnailStoragePath: "thumbnails/user-1/old.png",
		GeneratedYtTitle:     "Keep Me",
	})
	require.NoError(t, err)

	row, err := svc.UpdateThumbnail(ctx, "user-1", "cinematic", "thumbnails/user-1/new.png")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, row.ID)
	assert.Equal(t, "thumbnails/user-1/new.png", row.ThumbnailStoragePath)
	assert.Equal(t, "Keep Me", row.GeneratedYtTitle, "metadata untouched")
}

func TestUpdateThumbnailMissingProject(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.UpdateThumbnail(context.Background(), "user-1", "cinematic", "thumbnails/user-1/cinematic.png")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListOrdersByRecency(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Save(ctx, domain.SaveRequest{UserID: "user-1", SelectedStyleID: "beast"})
	require.NoError(t, err)
	_, err = svc.Save(ctx, domain.SaveRequest{UserID: "user-1", SelectedStyleID: "minimalist"})
	require.NoError(t, err)
	_, err = svc.Save(ctx, domain.SaveRequest{UserID: "user-2", SelectedStyleID: "beast"})
	require.NoError(t, err)

	rows, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, "user-1", row.UserID)
	}
}
