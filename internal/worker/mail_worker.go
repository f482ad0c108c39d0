package worker

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Runner is a long-lived loop bound to ctx, such as the mail queue consumer.
type Runner interface {
	Run(ctx context.Context) error
}

// StartMailWorker runs the consumer in the background. The returned channel
// closes once it has stopped.
func StartMailWorker(ctx context.Context, consumer Runner, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.Info("mail worker started")
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("mail worker stopped", zap.Error(err))
			return
		}
		logger.Info("mail worker stopped")
	}()
	return done
}
