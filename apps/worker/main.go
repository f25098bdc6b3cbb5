package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/ratewatchlabs/ratewatch/internal/clock"
	"github.com/ratewatchlabs/ratewatch/internal/config"
	"github.com/ratewatchlabs/ratewatch/internal/dispatch"
	"github.com/ratewatchlabs/ratewatch/internal/logger"
	"github.com/ratewatchlabs/ratewatch/internal/observability/metrics"
	"github.com/ratewatchlabs/ratewatch/internal/project"
	"github.com/ratewatchlabs/ratewatch/internal/rating"
	"github.com/ratewatchlabs/ratewatch/internal/reconcile"
	"github.com/ratewatchlabs/ratewatch/internal/resource"
	"github.com/ratewatchlabs/ratewatch/internal/secrets"
	"github.com/ratewatchlabs/ratewatch/internal/worker"
	"github.com/ratewatchlabs/ratewatch/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		secrets.Module,
		metrics.Module,

		project.Module,
		resource.Module,
		rating.Module,
		reconcile.Module,
		dispatch.Module,

		worker.Module,
		fx.Invoke(worker.StartWorker),
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
