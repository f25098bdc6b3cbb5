package cloudkitty

import "go.uber.org/fx"

var Module = fx.Module("cloudkitty.service",
	fx.Provide(NewService),
)
