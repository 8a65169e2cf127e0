package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"WeddingSite/internal/models"
)

// Runner is one reminder dispatch pass.
type Runner interface {
	Run(ctx context.Context) models.Summary
}

// StartScheduler runs r immediately and then on every tick of interval
// until ctx is cancelled. Ticks that arrive while a run is in progress are
// dropped.
func StartScheduler(
	ctx context.Context,
	wg *sync.WaitGroup,
	interval time.Duration,
	r Runner,
	logger *zap.Logger,
) {
	wg.Add(1)

	go func() {
		defer wg.Done()

		logger.Info("reminder scheduler started", zap.Duration("interval", interval))

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		runOnce(ctx, r, logger)

		for {
			select {

			case <-ctx.Done():
				logger.Info("reminder scheduler shutting down")
				return

			case <-ticker.C:
				runOnce(ctx, r, logger)
			}
		}
	}()
}

func runOnce(ctx context.Context, r Runner, logger *zap.Logger) {
	sum := r.Run(ctx)
	if !sum.OK {
		logger.Error("scheduled reminder run failed",
			zap.String("error", sum.Error),
			zap.Int("processed", sum.Processed),
		)
		return
	}

	logger.Info("scheduled reminder run finished",
		zap.Int("processed", sum.Processed),
		zap.Int("sent", sum.Sent),
		zap.Int("failed", sum.Failed),
	)
}
