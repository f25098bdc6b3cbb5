package dispatch

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/ratewatchlabs/ratewatch/internal/cloudkitty"
	"github.com/ratewatchlabs/ratewatch/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Dispatcher interface {
	// Dispatch enqueues the dataframes in fixed-size chunks, preserving
	// their order within and across chunks.
	Dispatch(ctx context.Context, cloudID snowflake.ID, dataframes []cloudkitty.Dataframe) (chunks int, err error)
}

type DispatcherParam struct {
	fx.In

	Log    *zap.Logger
	Config config.Config
	Queue  WorkQueue
}

type dispatcher struct {
	log *zap.Logger

	chunkSize int
	queue     WorkQueue
}

func NewDispatcher(p DispatcherParam) Dispatcher {
	chunkSize := p.Config.DataframesPerChunk
	if chunkSize <= 0 {
		chunkSize = 100
	}
	return &dispatcher{
		log: p.Log.Named("dispatch"),

		chunkSize: chunkSize,
		queue:     p.Queue,
	}
}

func (d *dispatcher) Dispatch(ctx context.Context, cloudID snowflake.ID, dataframes []cloudkitty.Dataframe) (int, error) {
	chunks := 0
	for start := 0; start < len(dataframes); start += d.chunkSize {
		end := start + d.chunkSize
		if end > len(dataframes) {
			end = len(dataframes)
		}

		if err := d.queue.Enqueue(ctx, WorkItem{
			CloudID:    cloudID,
			Dataframes: dataframes[start:end],
		}); err != nil {
			return chunks, err
		}
		chunks++
	}

	d.log.Info("dispatched dataframes",
		zap.String("cloud_id", cloudID.String()),
		zap.Int("dataframes", len(dataframes)),
		zap.Int("chunks", chunks),
	)
	return chunks, nil
}
