package prompt

import (
	"github.com/ytza/ytza/internal/providers/gemini"
	"go.uber.org/fx"
)

var Module = fx.Module("prompt",
	fx.Provide(func(c *gemini.Client) TextGenerator { return c }),
	fx.Provide(NewBuilder),
)
