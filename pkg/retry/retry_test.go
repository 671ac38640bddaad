package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts int) Config {
	return Config{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	t.Parallel()

	calls := 0
	err := Do(context.Background(), fastConfig(3), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ReturnsLastErrorWhenExhausted(t *testing.T) {
	t.Parallel()

	calls := 0
	wantErr := errors.New("still down")
	err := Do(context.Background(), fastConfig(2), func() error {
		calls++
		return wantErr
	})

	require.ErrorIs(t, err, wantErr)
	assert.Equal(t, 2, calls)
}

func TestDo_StopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, fastConfig(3), func() error {
		calls++
		return errors.New("never retried")
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, calls)
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	t.Parallel()

	calls := 0
	wantErr := errors.New("bad request")
	err := Do(context.Background(), fastConfig(5), func() error {
		calls++
		return Permanent(wantErr)
	})

	require.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, calls, "a permanent failure must not consume further attempts")
}

func TestDo_ZeroConfigGetsDefaults(t *testing.T) {
	t.Parallel()

	err := Do(context.Background(), Config{MaxAttempts: 1}, func() error { return nil })
	require.NoError(t, err)
}

func TestAddJitter(t *testing.T) {
	t.Parallel()

	base := 100 * time.Millisecond
	assert.Equal(t, base, addJitter(base, 0))

	for i := 0; i < 50; i++ {
		d := addJitter(base, 0.1)
		assert.GreaterOrEqual(t, d, 90*time.Millisecond)
		assert.LessOrEqual(t, d, 110*time.Millisecond)
	}
}
