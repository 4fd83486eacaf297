package utils

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrTimedOut = errors.New("operation timed out")

// WithTimeout runs f with a deadline and stops waiting once the deadline
// passes, even if f ignores its context.
func WithTimeout(ctx context.Context, timeout time.Duration, op string, f func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- f(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%s: %w after %s", op, ErrTimedOut, timeout)
		}
		return ctx.Err()
	}
}
