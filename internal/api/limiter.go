package api

import (
	"net"
	"net/http"
	"sync"
	"time"

	"staybook/internal/config"
	"staybook/internal/domain"

	"golang.org/x/time/rate"
)

const msgTooManyRequests = "Too many requests, please try again later"

// rateLimiter keeps one token bucket per client, keyed by API key or IP.
type rateLimiter struct {
	limiters sync.Map
	cfg      config.APIRateLimitConfig
}

func newRateLimiter(cfg config.APIRateLimitConfig) *rateLimiter {
	return &rateLimiter{cfg: cfg}
}

func (l *rateLimiter) getLimiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		if lim, ok := v.(*rate.Limiter); ok {
			return lim
		}
	}

	burst := l.cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(l.cfg.RPS), burst)
	actual, loaded := l.limiters.LoadOrStore(key, lim)
	if loaded {
		if actualLim, ok := actual.(*rate.Limiter); ok {
			return actualLim
		}
	}
	return lim
}

func (l *rateLimiter) Wrap(apiKeyHeader string, next http.Handler) http.Handler {
	if l.cfg.RPS <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.getLimiter(clientKey(r, apiKeyHeader)).Allow() {
			writeFailure(w, http.StatusTooManyRequests, msgTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request, apiKeyHeader string) string {
	if apiKey := r.Header.Get(apiKeyHeader); apiKey != "" {
		return "key:" + apiKey
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return "ip:" + host
	}
	return "unknown"
}

// throttleReviews caps review submissions per user. Store failures let the
// request through; the uniqueness guarantee never depends on the throttle.
func (s *HTTPServer) throttleReviews(next http.HandlerFunc) http.HandlerFunc {
	limit := s.reviewsCfg.SubmitLimit
	window := time.Duration(s.reviewsCfg.SubmitWindowSeconds) * time.Second
	if s.throttle == nil || limit <= 0 || window <= 0 {
		return next
	}

	return func(w http.ResponseWriter, r *http.Request) {
		caller := identityFrom(r.Context())
		if !caller.Authenticated() {
			next(w, r)
			return
		}

		allowed, err := s.throttle.Allow(r.Context(), "reviews:"+caller.UserID, limit, window)
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", caller.UserID).Msg("Review throttle unavailable")
			next(w, r)
			return
		}
		if !allowed {
			s.writeError(w, r, domain.RateLimitError{Msg: "Too many reviews submitted, please try again later"})
			return
		}
		next(w, r)
	}
}
