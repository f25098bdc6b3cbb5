package cloud

import (
	"github.com/ratewatchlabs/ratewatch/internal/cloud/repository"
	"github.com/ratewatchlabs/ratewatch/internal/cloud/service"
	"go.uber.org/fx"
)

var Module = fx.Module("cloud.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
