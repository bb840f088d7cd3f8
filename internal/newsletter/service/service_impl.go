package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ytza/ytza/internal/newsletter/domain"
	"github.com/ytza/ytza/internal/providers/beehiiv"
	"github.com/ytza/ytza/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Beehiiv *beehiiv.Client
}

type service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	beehiiv *beehiiv.Client
}

func New(p Params) domain.Service {
	return &service{
		db:      p.DB,
		log:     p.Log.Named("newsletter"),
		genID:   p.GenID,
		repo:    p.Repo,
		beehiiv: p.Beehiiv,
	}
}

// Subscribe stores the signup locally first, then forwards to Beehiiv. A
// provider failure leaves the row unsynced for a later retry instead of
// failing the request.
func (s *service) Subscribe(ctx context.Context, req domain.SubscribeRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.ErrInvalidEmail
	}

	existing, err := s.repo.FindByEmail(ctx, s.db, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	row := &domain.Subscriber{
		ID:        s.genID.Generate().Int64(),
		Email:     email,
		Source:    req.Source,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, s.db, row); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil
		}
		return err
	}

	if !s.beehiiv.Enabled() {
		return nil
	}
	if err := s.beehiiv.Subscribe(ctx, email, req.Source); err != nil {
		s.log.Warn("newsletter provider sync failed",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil
	}
	if err := s.repo.MarkSynced(ctx, s.db, row.ID); err != nil {
		s.log.Warn("subscriber sync flag not persisted", zap.Error(err))
	}
	return nil
}
