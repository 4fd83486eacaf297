package utils_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Webelocity/serverless-flightcraft-hpd-integration/internal/utils"
)

func TestWithTimeout(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the result of f", func(t *testing.T) {
		expected := errors.New("boom")
		err := utils.WithTimeout(ctx, time.Second, "close", func(_ context.Context) error {
			return expected
		})
		assert.ErrorIs(t, err, expected)
	})

	t.Run("stops waiting for a stuck f", func(t *testing.T) {
		block := make(chan struct{})
		defer close(block)

		err := utils.WithTimeout(ctx, 10*time.Millisecond, "close", func(_ context.Context) error {
			<-block
			return nil
		})
		assert.ErrorIs(t, err, utils.ErrTimedOut)
		assert.ErrorContains(t, err, "close")
	})

	t.Run("parent cancellation", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := utils.WithTimeout(cancelled, time.Second, "close", func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
