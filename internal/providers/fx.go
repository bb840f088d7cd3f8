package providers

import (
	"github.com/ytza/ytza/internal/config"
	"github.com/ytza/ytza/internal/providers/beehiiv"
	"github.com/ytza/ytza/internal/providers/gemini"
	"github.com/ytza/ytza/internal/providers/openaiimg"
	"github.com/ytza/ytza/internal/providers/stripe"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	fx.Provide(gemini.New),
	fx.Provide(openaiimg.New),
	fx.Provide(func(c *openaiimg.Client) openaiimg.ImageGenerator { return c }),
	fx.Provide(stripe.NewClient),
	fx.Provide(func(cfg config.Config) *stripe.WebhookVerifier {
		return stripe.NewWebhookVerifier(cfg.StripeWebhookSecret)
	}),
	fx.Provide(beehiiv.NewClient),
)
