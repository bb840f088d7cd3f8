package newsletter

import (
	"github.com/ytza/ytza/internal/newsletter/repository"
	"github.com/ytza/ytza/internal/newsletter/service"
	"go.uber.org/fx"
)

var Module = fx.Module("newsletter.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
