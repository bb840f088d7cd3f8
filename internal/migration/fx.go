package migration

import (
	"github.com/ytza/ytza/internal/config"
	creditsdomain "github.com/ytza/ytza/internal/credits/domain"
	newsletterdomain "github.com/ytza/ytza/internal/newsletter/domain"
	projectdomain "github.com/ytza/ytza/internal/project/domain"
	purchasedomain "github.com/ytza/ytza/internal/purchase/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// golang-migrate carries the canonical schema for postgres; sqlite
		// (tests, dev) relies on AutoMigrate instead.
		if cfg.DBType != "postgres" {
			return conn.AutoMigrate(
				&creditsdomain.UserCredits{},
				&projectdomain.Project{},
				&purchasedomain.Purchase{},
				&newsletterdomain.Subscriber{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
