package project

import (
	"github.com/ytza/ytza/internal/project/repository"
	"github.com/ytza/ytza/internal/project/service"
	"go.uber.org/fx"
)

var Module = fx.Module("project.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
