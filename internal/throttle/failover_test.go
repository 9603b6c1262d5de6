package throttle

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockThrottle struct {
	mock.Mock
}

func (m *mockThrottle) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func TestFailoverThrottle(t *testing.T) {
	primary := new(mockThrottle)
	fallback := new(mockThrottle)
	logger := zerolog.New(io.Discard)
	f := NewFailoverThrottle(primary, fallback, &logger)

	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return now }
	ctx := context.Background()

	t.Run("PrimarySuccess", func(t *testing.T) {
		primary.On("Allow", ctx, "k", 5, time.Minute).Return(true, nil).Once()

		allowed, err := f.Allow(ctx, "k", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.False(t, f.Degraded())
	})

	t.Run("PrimaryFailureFallsBack", func(t *testing.T) {
		primary.On("Allow", ctx, "k", 5, time.Minute).Return(false, errors.New("redis down")).Once()
		fallback.On("Allow", ctx, "k", 5, time.Minute).Return(true, nil).Once()

		allowed, err := f.Allow(ctx, "k", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.True(t, f.Degraded())
	})

	t.Run("StaysOnFallbackWithinInterval", func(t *testing.T) {
		now = now.Add(30 * time.Second)
		fallback.On("Allow", ctx, "k", 5, time.Minute).Return(false, nil).Once()

		allowed, err := f.Allow(ctx, "k", 5, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("RecoversAfterInterval", func(t *testing.T) {
		now = now.Add(time.Minute)
		primary.On("Allow", ctx, "k", 5, time.Minute).Return(true, nil).Once()

		allowed, err := f.Allow(ctx, "k", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.False(t, f.Degraded())
	})

	primary.AssertExpectations(t)
	fallback.AssertExpectations(t)
}
