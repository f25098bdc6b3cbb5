package migration

import (
	"github.com/ratewatchlabs/ratewatch/internal/config"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Module applies embedded migrations on startup. Only postgres schemas are
// managed here; test suites migrate their sqlite databases directly.
var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			return nil
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		return RunMigrations(sqlDB)
	}),
)
