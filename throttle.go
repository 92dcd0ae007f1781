package directory

import (
	"context"
	"time"
)

// Pause waits for 'd' or until 'ctx' is done, whichever comes first. It returns the context's error
// if the wait was cut short.
func Pause(ctx context.Context, d time.Duration) error {

	if d <= 0 {
		return ctx.Err()
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
