package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"staybook/internal/config"
	"staybook/internal/domain"
	"staybook/internal/logging"

	"github.com/rs/zerolog"
)

// Services groups the application services the HTTP layer dispatches to.
type Services struct {
	Reviews  domain.ReviewService
	Stats    domain.StatsService
	Users    domain.UserService
	Bookings domain.BookingService
	Rooms    domain.RoomService
}

// ReadyFunc reports whether dependencies needed to serve traffic are up.
type ReadyFunc func(ctx context.Context) error

// HTTPServer exposes the JSON REST API.
type HTTPServer struct {
	cfg        config.APIConfig
	reviewsCfg config.ReviewsConfig
	services   Services
	tokens     *TokenAuth
	keys       *APIKeyAuth
	limiter    *rateLimiter
	throttle   domain.Throttle
	ready      ReadyFunc
	logger     *zerolog.Logger
	server     *http.Server
}

func NewHTTPServer(cfg *config.Config, services Services, throttle domain.Throttle, ready ReadyFunc, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:        cfg.API,
		reviewsCfg: cfg.Reviews,
		services:   services,
		tokens:     NewTokenAuth(cfg.Auth),
		keys:       NewAPIKeyAuth(cfg.API.APIKeys),
		limiter:    newRateLimiter(cfg.API.RateLimit),
		throttle:   throttle,
		ready:      ready,
		logger:     logging.Component(logger, "http"),
	}

	mux := http.NewServeMux()
	srv.routes(mux)

	var handler http.Handler = srv.accessLog(mux)
	handler = srv.authenticate(handler)
	handler = srv.limiter.Wrap(cfg.API.APIKeys.HeaderAPIKey, handler)
	handler = cors(cfg.API.CORS.AllowedOrigins, handler)
	handler = requestIDMiddleware(handler)
	handler = srv.recoverer(handler)

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

func (s *HTTPServer) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("POST /api/reviews", s.throttleReviews(s.handleSubmitReview))
	mux.HandleFunc("GET /api/reviews/room/{roomId}", s.handleRoomReviews)
	mux.HandleFunc("GET /api/reviews/recent", s.handleRecentReviews)
	mux.HandleFunc("GET /api/reviews/can-review/{bookingId}", s.handleCanReview)
	mux.HandleFunc("GET /api/reviews/hotel/{hotelId}/stats", s.handleHotelStats)
	mux.HandleFunc("POST /api/reviews/hotels/stats", s.handleBulkHotelStats)
	mux.HandleFunc("GET /api/stats", s.handleSiteStats)

	mux.HandleFunc("GET /api/user", s.handleUserData)
	mux.HandleFunc("POST /api/user/store-recent-search", s.handleRecentCities)
	mux.HandleFunc("GET /api/hotels/cities", s.handleHotelCities)
	mux.HandleFunc("GET /api/rooms", s.handleRooms)
	mux.HandleFunc("GET /api/rooms/owner", s.handleOwnerRooms)
	mux.HandleFunc("POST /api/rooms/toggle-availability", s.handleToggleAvailability)

	mux.HandleFunc("POST /api/bookings/check-availability", s.handleCheckAvailability)
	mux.HandleFunc("POST /api/bookings/book", s.handleCreateBooking)
	mux.HandleFunc("GET /api/bookings/user", s.handleUserBookings)
	mux.HandleFunc("POST /api/payments/confirm", s.keys.Require(permPayments, s.handleConfirmPayment))

	mux.HandleFunc("GET /api/owner/reviews/export", s.handleExportReviews)
}

// Handler returns the fully wrapped handler, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Addr() string {
	return s.server.Addr
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return errors.New("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, map[string]any{"status": "ok"})
}

func (s *HTTPServer) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("readiness check failed")
			writeFailure(w, http.StatusServiceUnavailable, "not ready")
			return
		}
	}
	writeSuccess(w, map[string]any{"status": "ready"})
}
