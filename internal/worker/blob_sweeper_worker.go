package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/enosefelix/job-finder-sub000/internal/service"
)

// Sweeper runs one reconciliation pass.
type Sweeper interface {
	Sweep(ctx context.Context) (service.SweepResult, error)
}

// StartBlobSweeper runs sweeper every interval until ctx is cancelled. The
// returned channel closes once the loop has exited.
func StartBlobSweeper(ctx context.Context, sweeper Sweeper, interval time.Duration, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if sweeper == nil || interval <= 0 {
		close(done)
		return done
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		logger.Info("blob sweeper started", zap.Duration("interval", interval))
		for {
			select {
			case <-ctx.Done():
				logger.Info("blob sweeper stopped")
				return
			case <-ticker.C:
				if _, err := sweeper.Sweep(ctx); err != nil && ctx.Err() == nil {
					logger.Error("blob sweep failed", zap.Error(err))
				}
			}
		}
	}()
	return done
}
