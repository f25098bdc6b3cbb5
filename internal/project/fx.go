package project

import (
	"github.com/ratewatchlabs/ratewatch/internal/project/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("project.repository",
	fx.Provide(repository.Provide),
)
