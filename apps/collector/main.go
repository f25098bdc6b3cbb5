package main

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ratewatchlabs/ratewatch/internal/account"
	"github.com/ratewatchlabs/ratewatch/internal/clock"
	"github.com/ratewatchlabs/ratewatch/internal/cloud"
	"github.com/ratewatchlabs/ratewatch/internal/cloudkitty"
	"github.com/ratewatchlabs/ratewatch/internal/collector"
	"github.com/ratewatchlabs/ratewatch/internal/config"
	"github.com/ratewatchlabs/ratewatch/internal/dispatch"
	"github.com/ratewatchlabs/ratewatch/internal/keystone"
	"github.com/ratewatchlabs/ratewatch/internal/lock"
	"github.com/ratewatchlabs/ratewatch/internal/logger"
	"github.com/ratewatchlabs/ratewatch/internal/observability/metrics"
	"github.com/ratewatchlabs/ratewatch/internal/secrets"
	"github.com/ratewatchlabs/ratewatch/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const collectorLockKey = "ratewatch:collector:lock"

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		secrets.Module,
		metrics.Module,

		account.Module,
		cloud.Module,
		keystone.Module,
		cloudkitty.Module,
		dispatch.Module,
		lock.Module,
		collector.Module,

		fx.Invoke(RunBatch),
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

type BatchParam struct {
	fx.In

	Lc         fx.Lifecycle
	Shutdowner fx.Shutdowner
	Log        *zap.Logger
	Cfg        config.Config
	Locker     *lock.Locker
	Collector  collector.Service
}

// RunBatch performs one gather run over every account and exits. The redis
// lock keeps overlapping cron invocations from double-fetching.
func RunBatch(p BatchParam) {
	log := p.Log.Named("collector.batch")

	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() { _ = p.Shutdowner.Shutdown() }()

				runCtx, cancel := context.WithTimeout(context.Background(), p.Cfg.CollectorLockTTL)
				defer cancel()

				token, acquired, err := p.Locker.TryLock(runCtx, collectorLockKey, p.Cfg.CollectorLockTTL)
				if err != nil {
					log.Error("lock acquisition failed", zap.Error(err))
					return
				}
				if !acquired {
					log.Warn("another collector run holds the lock, skipping")
					return
				}
				defer func() { _ = p.Locker.Release(runCtx, collectorLockKey, token) }()

				started := time.Now()
				results, err := p.Collector.GatherAll(runCtx, time.Time{}, time.Time{})
				if err != nil {
					log.Error("batch run failed", zap.Error(err))
					return
				}

				failures := 0
				for _, r := range results {
					if r.Error != "" {
						failures++
					}
				}
				log.Info("batch run finished",
					zap.Int("accounts", len(results)),
					zap.Int("failures", failures),
					zap.Duration("elapsed", time.Since(started)),
				)
			}()
			return nil
		},
	})
}
