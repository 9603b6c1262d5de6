package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"staybook/internal/config"
	"staybook/internal/database"
	"staybook/internal/models"
	"staybook/internal/service"
	"staybook/internal/throttle"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "test-secret"
	testIssuer   = "https://id.staybook.test"
	testAudience = "staybook-api"
)

type testEnv struct {
	db      *database.DB
	server  *HTTPServer
	handler http.Handler
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{JWTSecret: testSecret, Issuer: testIssuer, Audience: testAudience},
		API: config.APIConfig{
			APIKeys: config.APIKeysConfig{
				HeaderAPIKey: "x-api-key",
				HeaderExtra:  "x-api-extra",
				Keys: []config.APIClientKey{
					{Key: "gw-key", Extra: "gw-extra", Name: "gateway", Permissions: []string{permPayments}},
					{Key: "ro-key", Extra: "ro-extra", Name: "reporting", Permissions: []string{"read:reviews"}},
				},
			},
			CORS: config.CORSConfig{AllowedOrigins: []string{"https://app.staybook.test"}},
		},
		Reviews: config.ReviewsConfig{
			RecentDefaultLimit:  6,
			RecentMaxLimit:      50,
			MaxBulkIDs:          10,
			SubmitLimit:         2,
			SubmitWindowSeconds: 60,
		},
	}
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()
	logger := zerolog.New(io.Discard)

	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}

	services := Services{
		Reviews:  service.NewReviewService(db, nil, cfg.Reviews, &logger),
		Stats:    service.NewStatsService(db),
		Users:    service.NewUserService(db, &logger),
		Bookings: service.NewBookingService(db, nil, 365, &logger),
		Rooms:    service.NewRoomService(db),
	}
	srv := NewHTTPServer(cfg, services, throttle.NewMemoryThrottle(), db.Ready, &logger)

	return &testEnv{db: db, server: srv, handler: srv.Handler()}
}

// seed creates a guest, an owner with one hotel and room, a confirmed paid
// booking and a pending booking, both belonging to the guest.
func (e *testEnv) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, e.db.UpsertUser(ctx, &models.User{ID: "guest", Username: "Guest", Email: "guest@example.com"}))
	require.NoError(t, e.db.UpsertUser(ctx, &models.User{ID: "owner", Username: "Owner", Email: "owner@example.com"}))
	require.NoError(t, e.db.CreateHotel(ctx, &models.Hotel{ID: "H1", Name: "Sea View", City: "Nice", OwnerID: "owner"}))
	require.NoError(t, e.db.CreateRoom(ctx, &models.Room{ID: "R1", HotelID: "H1", RoomType: "Double Bed", PricePerNight: 100, IsAvailable: true}))

	in := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, e.db.CreateBooking(ctx, &models.Booking{
		ID: "B1", UserID: "guest", RoomID: "R1", HotelID: "H1",
		CheckInDate: in, CheckOutDate: in.AddDate(0, 0, 2), Guests: 1, TotalPrice: 200,
		Status: models.StatusConfirmed, PaymentMethod: "Stripe", IsPaid: true,
	}))
	require.NoError(t, e.db.CreateBooking(ctx, &models.Booking{
		ID: "B2", UserID: "guest", RoomID: "R1", HotelID: "H1",
		CheckInDate: in.AddDate(0, 1, 0), CheckOutDate: in.AddDate(0, 1, 3), Guests: 1, TotalPrice: 300,
		Status: models.StatusPending, PaymentMethod: "Pay At Hotel",
	}))
}

func signToken(t *testing.T, sub string, mutate ...func(*identityClaims)) string {
	t.Helper()
	claims := identityClaims{
		Username: sub,
		Email:    sub + "@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    testIssuer,
			Audience:  jwt.ClaimStrings{testAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	for _, m := range mutate {
		m(&claims)
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

type request struct {
	method  string
	path    string
	token   string
	body    any
	headers map[string]string
}

func (e *testEnv) do(t *testing.T, req request) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	switch b := req.body.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}

	r := httptest.NewRequest(req.method, req.path, body)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		r.Header.Set("Authorization", "Bearer "+req.token)
	}
	for k, v := range req.headers {
		r.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, r)
	return rec
}

func decodeMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
