package keystone

import (
	clouddomain "github.com/ratewatchlabs/ratewatch/internal/cloud/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("keystone.service",
	fx.Provide(
		fx.Annotate(NewService, fx.As(new(clouddomain.TokenSource))),
	),
)
