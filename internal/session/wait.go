package session

import (
	"context"
	"time"
)

// WaitStrategy decides how the driver pauses between protocol phases, for
// example after the handshake or while a slow backend settles. Tests swap in
// a no-op strategy so suites run at full speed.
type WaitStrategy interface {
	Wait(ctx context.Context, d time.Duration) error
}

// FixedDelay sleeps for the requested duration, honoring cancellation.
type FixedDelay struct{}

func (FixedDelay) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NoDelay skips every pause. Used by tests and by the mock server target,
// where there is no backend latency to ride out.
type NoDelay struct{}

func (NoDelay) Wait(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}
