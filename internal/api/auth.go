package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"staybook/internal/config"
	"staybook/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

type ctxKey int

const (
	identityKey ctxKey = iota
	requestIDKey
)

var (
	errMissingToken     = errors.New("missing bearer token")
	errMissingSubject   = errors.New("token has no subject")
	errPermissionDenied = errors.New("permission denied")
)

// identityClaims is the token shape issued by the identity provider.
type identityClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Picture  string `json:"picture"`
	jwt.RegisteredClaims
}

// TokenAuth verifies HS256 bearer tokens and turns them into an Identity.
type TokenAuth struct {
	secret []byte
	opts   []jwt.ParserOption
}

func NewTokenAuth(cfg config.AuthConfig) *TokenAuth {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	return &TokenAuth{secret: []byte(cfg.JWTSecret), opts: opts}
}

func (a *TokenAuth) Verify(raw string) (domain.Identity, error) {
	var claims identityClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, a.opts...)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("invalid token: %w", err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return domain.Identity{}, errMissingSubject
	}

	return domain.Identity{
		UserID:   claims.Subject,
		Username: claims.Username,
		Email:    claims.Email,
		Image:    claims.Picture,
	}, nil
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errMissingToken
	}
	return strings.TrimSpace(token), nil
}

// authenticate attaches the caller identity when a valid token is present.
// It never rejects: services decide whether an identity is required.
func (s *HTTPServer) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := bearerToken(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		identity, err := s.tokens.Verify(raw)
		if err != nil {
			s.logger.Debug().Err(err).Str("request_id", requestIDFrom(r.Context())).Msg("Rejected bearer token")
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, identity)))
	})
}

func identityFrom(ctx context.Context) domain.Identity {
	id, _ := ctx.Value(identityKey).(domain.Identity)
	return id
}

// APIKeyAuth guards machine-to-machine endpoints. A client presents its key
// and the paired extra secret; both are compared in constant time.
type APIKeyAuth struct {
	cfg     config.APIKeysConfig
	clients map[string]config.APIClientKey
}

func NewAPIKeyAuth(cfg config.APIKeysConfig) *APIKeyAuth {
	m := make(map[string]config.APIClientKey, len(cfg.Keys))
	for _, k := range cfg.Keys {
		m[k.Key] = k
	}
	return &APIKeyAuth{cfg: cfg, clients: m}
}

// Require wraps next so that only clients holding permission get through.
func (a *APIKeyAuth) Require(permission string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := a.check(r, permission); err != nil {
			statusCode := http.StatusUnauthorized
			if errors.Is(err, errPermissionDenied) {
				statusCode = http.StatusForbidden
			}
			writeFailure(w, statusCode, err.Error())
			return
		}
		next(w, r)
	}
}

func (a *APIKeyAuth) check(r *http.Request, permission string) error {
	apiKey := strings.TrimSpace(r.Header.Get(a.cfg.HeaderAPIKey))
	extra := strings.TrimSpace(r.Header.Get(a.cfg.HeaderExtra))
	if apiKey == "" || extra == "" {
		return errors.New("missing api key headers")
	}

	client, ok := a.clients[apiKey]
	if !ok {
		return errors.New("invalid api key")
	}
	if subtle.ConstantTimeCompare([]byte(client.Extra), []byte(extra)) != 1 {
		return errors.New("invalid extra header")
	}

	// an empty permission list allows everything
	if len(client.Permissions) == 0 {
		return nil
	}
	for _, p := range client.Permissions {
		if strings.TrimSpace(p) == permission {
			return nil
		}
	}
	return errPermissionDenied
}
