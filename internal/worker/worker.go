// Package worker drains the reconcile queue. Any number of workers may run
// in parallel; at-least-once delivery is safe because reconciliation is
// idempotent.
package worker

import (
	"context"
	"time"

	"github.com/ratewatchlabs/ratewatch/internal/dispatch"
	"github.com/ratewatchlabs/ratewatch/internal/reconcile"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const dequeueTimeout = 5 * time.Second

type Worker struct {
	log *zap.Logger

	queue     dispatch.WorkQueue
	reconcile reconcile.Service
}

type WorkerParam struct {
	fx.In

	Log       *zap.Logger
	Queue     dispatch.WorkQueue
	Reconcile reconcile.Service
}

func NewWorker(p WorkerParam) *Worker {
	return &Worker{
		log: p.Log.Named("worker"),

		queue:     p.Queue,
		reconcile: p.Reconcile,
	}
}

// RunForever pulls work items until the context is cancelled.
func (w *Worker) RunForever(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		item, err := w.queue.Dequeue(ctx, dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.log.Error("dequeue failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if item == nil {
			continue
		}

		w.process(ctx, item)
	}
}

func (w *Worker) process(ctx context.Context, item *dispatch.WorkItem) {
	err := w.reconcile.Reconcile(ctx, item.CloudID, item.Dataframes)
	if err == nil {
		w.log.Info("chunk reconciled",
			zap.String("cloud_id", item.CloudID.String()),
			zap.Int("dataframes", len(item.Dataframes)),
		)
		return
	}

	w.log.Error("chunk reconcile failed, requeueing",
		zap.String("cloud_id", item.CloudID.String()),
		zap.Error(err),
	)

	// Failed chunks go back on the queue; redelivery is harmless since
	// already-stored windows dedup on the next pass.
	if requeueErr := w.queue.Enqueue(ctx, *item); requeueErr != nil {
		w.log.Error("requeue failed, chunk dropped",
			zap.String("cloud_id", item.CloudID.String()),
			zap.Error(requeueErr),
		)
	}
}

func StartWorker(lc fx.Lifecycle, w *Worker) {
	runCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go w.RunForever(runCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			return nil
		},
	})
}

var Module = fx.Module("worker",
	fx.Provide(NewWorker),
)
