package pusher

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Task is a supervised periodic activity. After a successful Step it waits
// Interval, after a failed one Retry. A failing or panicking Step never ends
// the loop; only ctx cancellation does.
type Task struct {
	Name     string
	Interval time.Duration
	Retry    time.Duration
	Step     func(ctx context.Context) error

	// wait blocks for d or until ctx is done; replaced in tests.
	wait func(ctx context.Context, d time.Duration) error
}

// Run executes Step immediately and then on schedule until ctx is cancelled.
func (t *Task) Run(ctx context.Context, logger *zap.Logger) error {
	log := logger.With(zap.String("task", t.Name))
	wait := t.wait
	if wait == nil {
		wait = sleep
	}

	log.Info("task started", zap.Duration("interval", t.Interval), zap.Duration("retry", t.Retry))
	for {
		next := t.Interval
		if err := t.runOnce(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Warn("task iteration failed", zap.Error(err), zap.Duration("retry_in", t.Retry))
			next = t.Retry
		}

		if err := wait(ctx, next); err != nil {
			break
		}
	}
	log.Info("task stopped")
	return ctx.Err()
}

func (t *Task) runOnce(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return t.Step(ctx)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
