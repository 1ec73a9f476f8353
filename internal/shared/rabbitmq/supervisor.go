package rabbitmq

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Supervise runs a worker's connect-and-consume function in an unbounded
// retry loop. Any returned error is treated as a connection-level failure:
// log, wait a fixed interval, run again from scratch. A nil return means the
// run ended deliberately (context cancelled) and the loop stops.
//
// This is connection resilience only. Messages lost mid-processing are not
// replayed here or anywhere else.
func Supervise(ctx context.Context, log *zap.Logger, retryInterval time.Duration, run func(ctx context.Context) error) {
	for {
		if ctx.Err() != nil {
			return
		}

		err := run(ctx)
		if err == nil {
			return
		}

		log.Error("consumer run failed, reconnecting",
			zap.Duration("retry_in", retryInterval),
			zap.Error(err))

		if !sleepWithContext(ctx, retryInterval) {
			return
		}
	}
}

// sleepWithContext sleeps for d or returns false early if ctx is done.
func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
