package battle

import (
	"context"
	"time"
)

// Pacer suspends the runner between attacks. Implementations must return early with
// ctx.Err() once ctx is cancelled so a viewer leaving the page stops the sequence.
type Pacer interface {
	Pause(ctx context.Context, d time.Duration) error
}

// PacerFunc adapts a function to Pacer.
type PacerFunc func(ctx context.Context, d time.Duration) error

func (f PacerFunc) Pause(ctx context.Context, d time.Duration) error { return f(ctx, d) }

// TimerPacer waits on a real timer.
type TimerPacer struct{}

func (TimerPacer) Pause(ctx context.Context, d time.Duration) error {
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
