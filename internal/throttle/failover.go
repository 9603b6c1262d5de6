package throttle

import (
	"context"
	"sync/atomic"
	"time"

	"staybook/internal/domain"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverThrottle prefers the primary (Redis) and switches to the fallback
// on the first error. The primary is retried once per recoveryInterval.
type FailoverThrottle struct {
	primary   domain.Throttle
	fallback  domain.Throttle
	logger    *zerolog.Logger
	isDown    atomic.Bool
	downSince atomic.Int64
	now       func() time.Time
}

func NewFailoverThrottle(primary, fallback domain.Throttle, logger *zerolog.Logger) *FailoverThrottle {
	return &FailoverThrottle{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

func (f *FailoverThrottle) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if f.isDown.Load() && f.now().Sub(time.Unix(0, f.downSince.Load())) < recoveryInterval {
		return f.fallback.Allow(ctx, key, limit, window)
	}

	allowed, err := f.primary.Allow(ctx, key, limit, window)
	if err == nil {
		if f.isDown.Swap(false) {
			f.logger.Info().Msg("Primary throttle recovered")
		}
		return allowed, nil
	}

	if !f.isDown.Swap(true) {
		f.logger.Error().Err(err).Msg("Primary throttle failed, falling back to memory")
	}
	f.downSince.Store(f.now().UnixNano())

	return f.fallback.Allow(ctx, key, limit, window)
}

// Degraded reports whether calls are currently served by the fallback.
func (f *FailoverThrottle) Degraded() bool {
	return f.isDown.Load()
}
