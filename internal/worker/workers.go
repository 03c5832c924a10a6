package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// HandlerRegistrar subscribes event handlers to the dispatcher.
type HandlerRegistrar interface {
	RegisterHandlers()
}

// Workers lists the background jobs of the API process.
type Workers struct {
	Notifications HandlerRegistrar
	Sweeper       Sweeper
	SweepInterval time.Duration
	Logger        *zap.Logger
}

// Start subscribes the notification handlers and launches the blob sweeper.
// The returned channel closes once the sweeper has stopped after ctx ends.
func Start(ctx context.Context, w Workers) <-chan struct{} {
	logger := w.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if w.Notifications != nil {
		w.Notifications.RegisterHandlers()
		logger.Info("notification handlers registered")
	}
	if w.Sweeper == nil {
		logger.Warn("blob sweeper disabled")
	}
	return StartBlobSweeper(ctx, w.Sweeper, w.SweepInterval, logger)
}
