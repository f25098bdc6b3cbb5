package account

import (
	"github.com/ratewatchlabs/ratewatch/internal/account/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("account.repository",
	fx.Provide(repository.Provide),
)
