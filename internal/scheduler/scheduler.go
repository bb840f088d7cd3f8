package scheduler

import (
	"context"
	"time"

	"github.com/ytza/ytza/internal/newsletter/domain"
	"github.com/ytza/ytza/internal/providers/beehiiv"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Config controls the resync interval and batch size.
type Config struct {
	RunInterval time.Duration
	BatchSize   int
}

func DefaultConfig() Config {
	return Config{
		RunInterval: 5 * time.Minute,
		BatchSize:   50,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	return c
}

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Config  Config
	Repo    domain.Repository
	Beehiiv *beehiiv.Client
}

// Scheduler periodically pushes newsletter subscribers that failed their
// initial delivery-provider sync. Signups are stored locally first, so a
// provider outage only delays the welcome email instead of losing the signup.
type Scheduler struct {
	db      *gorm.DB
	log     *zap.Logger
	cfg     Config
	repo    domain.Repository
	beehiiv *beehiiv.Client
}

func New(p Params) *Scheduler {
	return &Scheduler{
		db:      p.DB,
		log:     p.Log.Named("scheduler"),
		cfg:     p.Config.withDefaults(),
		repo:    p.Repo,
		beehiiv: p.Beehiiv,
	}
}

// RunForever ticks until the context is cancelled.
func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.log.Warn("newsletter resync pass failed", zap.Error(err))
			}
		}
	}
}

// RunOnce syncs one batch of unsynced subscribers. Per-row failures are
// logged and left for the next pass.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if !s.beehiiv.Enabled() {
		return nil
	}

	rows, err := s.repo.FindUnsynced(ctx, s.db, s.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, row := range rows {
		if err := s.beehiiv.Subscribe(ctx, row.Email, row.Source); err != nil {
			s.log.Warn("subscriber resync failed",
				zap.String("email", row.Email),
				zap.Error(err),
			)
			continue
		}
		if err := s.repo.MarkSynced(ctx, s.db, row.ID); err != nil {
			return err
		}
	}
	return nil
}
