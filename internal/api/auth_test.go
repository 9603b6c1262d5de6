package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"staybook/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenAuth_Verify(t *testing.T) {
	auth := NewTokenAuth(config.AuthConfig{JWTSecret: testSecret, Issuer: testIssuer, Audience: testAudience})

	t.Run("Valid", func(t *testing.T) {
		raw := signToken(t, "user_1", func(c *identityClaims) {
			c.Username = "Ann"
			c.Picture = "https://img/ann.png"
		})
		id, err := auth.Verify(raw)
		require.NoError(t, err)
		assert.Equal(t, "user_1", id.UserID)
		assert.Equal(t, "Ann", id.Username)
		assert.Equal(t, "user_1@example.com", id.Email)
		assert.Equal(t, "https://img/ann.png", id.Image)
	})

	rejected := map[string]string{
		"Expired": signToken(t, "user_1", func(c *identityClaims) {
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		}),
		"NoExpiry": signToken(t, "user_1", func(c *identityClaims) {
			c.ExpiresAt = nil
		}),
		"WrongIssuer": signToken(t, "user_1", func(c *identityClaims) {
			c.Issuer = "https://elsewhere"
		}),
		"WrongAudience": signToken(t, "user_1", func(c *identityClaims) {
			c.Audience = jwt.ClaimStrings{"other-api"}
		}),
		"NoSubject": signToken(t, "", func(c *identityClaims) {
			c.Subject = ""
		}),
		"Garbage": "abc.def.ghi",
	}
	for name, raw := range rejected {
		t.Run(name, func(t *testing.T) {
			_, err := auth.Verify(raw)
			assert.Error(t, err)
		})
	}

	t.Run("WrongSecret", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
			Subject:   "user_1",
			Issuer:    testIssuer,
			Audience:  jwt.ClaimStrings{testAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString([]byte("other-secret"))
		require.NoError(t, err)
		_, err = auth.Verify(raw)
		assert.Error(t, err)
	})

	t.Run("WrongAlgorithm", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
			Subject:   "user_1",
			Issuer:    testIssuer,
			Audience:  jwt.ClaimStrings{testAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = auth.Verify(raw)
		assert.Error(t, err)
	})
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer  abc ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			r.Header.Set("Authorization", tt.header)
		}
		got, err := bearerToken(r)
		if tt.ok {
			require.NoError(t, err, tt.header)
			assert.Equal(t, tt.want, got)
		} else {
			assert.Error(t, err, tt.header)
		}
	}
}

func TestAPIKeyAuth(t *testing.T) {
	auth := NewAPIKeyAuth(config.APIKeysConfig{
		HeaderAPIKey: "x-api-key",
		HeaderExtra:  "x-api-extra",
		Keys: []config.APIClientKey{
			{Key: "scoped", Extra: "s-extra", Permissions: []string{permPayments}},
			{Key: "narrow", Extra: "n-extra", Permissions: []string{"read:reviews"}},
			{Key: "open", Extra: "o-extra"},
		},
	})

	called := 0
	h := auth.Require(permPayments, func(w http.ResponseWriter, _ *http.Request) {
		called++
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name   string
		key    string
		extra  string
		status int
	}{
		{"Scoped", "scoped", "s-extra", http.StatusOK},
		{"AllowAll", "open", "o-extra", http.StatusOK},
		{"MissingPermission", "narrow", "n-extra", http.StatusForbidden},
		{"BadExtra", "scoped", "nope", http.StatusUnauthorized},
		{"UnknownKey", "ghost", "s-extra", http.StatusUnauthorized},
		{"MissingHeaders", "", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/payments/confirm", nil)
			if tt.key != "" {
				r.Header.Set("x-api-key", tt.key)
				r.Header.Set("x-api-extra", tt.extra)
			}
			rec := httptest.NewRecorder()
			h(rec, r)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
	assert.Equal(t, 2, called)
}
