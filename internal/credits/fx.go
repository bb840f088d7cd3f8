package credits

import (
	"github.com/ytza/ytza/internal/credits/repository"
	"github.com/ytza/ytza/internal/credits/service"
	"go.uber.org/fx"
)

var Module = fx.Module("credits.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
