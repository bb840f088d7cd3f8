package purchase

import (
	"github.com/ytza/ytza/internal/purchase/repository"
	"github.com/ytza/ytza/internal/purchase/service"
	"go.uber.org/fx"
)

var Module = fx.Module("purchase.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
