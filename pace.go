package handoff

import (
	"context"
	"time"
)

// pace waits for d or until ctx is done. A non-positive d returns immediately.
func pace(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
