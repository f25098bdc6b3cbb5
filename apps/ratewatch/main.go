package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/ratewatchlabs/ratewatch/internal/account"
	"github.com/ratewatchlabs/ratewatch/internal/clock"
	"github.com/ratewatchlabs/ratewatch/internal/cloud"
	"github.com/ratewatchlabs/ratewatch/internal/cloudkitty"
	"github.com/ratewatchlabs/ratewatch/internal/collector"
	"github.com/ratewatchlabs/ratewatch/internal/config"
	"github.com/ratewatchlabs/ratewatch/internal/dispatch"
	"github.com/ratewatchlabs/ratewatch/internal/keystone"
	"github.com/ratewatchlabs/ratewatch/internal/logger"
	"github.com/ratewatchlabs/ratewatch/internal/migration"
	"github.com/ratewatchlabs/ratewatch/internal/observability/metrics"
	"github.com/ratewatchlabs/ratewatch/internal/rating"
	"github.com/ratewatchlabs/ratewatch/internal/secrets"
	"github.com/ratewatchlabs/ratewatch/internal/server"
	"github.com/ratewatchlabs/ratewatch/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		secrets.Module,
		metrics.Module,
		migration.Module,

		// Domain services
		account.Module,
		cloud.Module,
		keystone.Module,
		cloudkitty.Module,
		rating.Module,
		dispatch.Module,
		collector.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
