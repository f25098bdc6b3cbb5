package resource

import (
	"github.com/ratewatchlabs/ratewatch/internal/resource/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("resource.repository",
	fx.Provide(repository.Provide),
)
