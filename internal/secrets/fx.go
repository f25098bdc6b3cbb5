package secrets

import (
	"github.com/ratewatchlabs/ratewatch/internal/config"
	"go.uber.org/fx"
)

func NewFromConfig(cfg config.Config) (*Box, error) {
	return NewBox(cfg.SecretsKey)
}

// Module provides the secrets boundary used by repositories.
var Module = fx.Module("secrets",
	fx.Provide(NewFromConfig),
)
