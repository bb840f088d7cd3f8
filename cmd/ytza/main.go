package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/ytza/ytza/internal/billing"
	"github.com/ytza/ytza/internal/clock"
	"github.com/ytza/ytza/internal/config"
	"github.com/ytza/ytza/internal/content"
	"github.com/ytza/ytza/internal/credits"
	"github.com/ytza/ytza/internal/generation"
	"github.com/ytza/ytza/internal/migration"
	"github.com/ytza/ytza/internal/newsletter"
	"github.com/ytza/ytza/internal/observability"
	"github.com/ytza/ytza/internal/project"
	"github.com/ytza/ytza/internal/prompt"
	"github.com/ytza/ytza/internal/providers"
	"github.com/ytza/ytza/internal/purchase"
	"github.com/ytza/ytza/internal/ratelimit"
	"github.com/ytza/ytza/internal/scheduler"
	"github.com/ytza/ytza/internal/server"
	"github.com/ytza/ytza/internal/thumbnail"
	"github.com/ytza/ytza/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		ratelimit.Module,

		// Upstream providers
		providers.Module,

		// Functional domains
		credits.Module,
		project.Module,
		purchase.Module,
		newsletter.Module,
		prompt.Module,
		content.Module,
		thumbnail.Module,
		billing.Module,
		generation.Module,
		scheduler.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
