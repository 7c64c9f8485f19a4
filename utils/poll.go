package utils

import (
	"context"
	"time"
)

// WaitUntil polls cond at the given interval until it reports true, the
// timeout elapses, or ctx is cancelled. It returns true only when cond was
// satisfied. Errors from cond are treated as "not yet": the dashboard UI is
// animated and event-opaque, so transient failures are expected while polling.
func WaitUntil(ctx context.Context, timeout, interval time.Duration, cond func(context.Context) (bool, error)) bool {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if ok, err := cond(ctx); err == nil && ok {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}

// Pause blocks for d or until ctx is cancelled, whichever comes first. Used
// for the short fixed pauses the UI needs after animations and re-renders.
func Pause(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
