package content

import (
	"github.com/ytza/ytza/internal/providers/gemini"
	"go.uber.org/fx"
)

var Module = fx.Module("content",
	fx.Provide(func(c *gemini.Client) TextGenerator { return c }),
	fx.Provide(NewService),
)
