package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.uber.org/zap"

	"github.com/linesmerrill/rider-safety-api/models"
)

type identityKey struct{}

const expiresAtKey = "exp"

// ErrTokenExpired is returned for a cached token whose exp has passed
var ErrTokenExpired = errors.New("token has expired")

// ErrAuthNotConfigured is returned for every token when no signing secret is set
var ErrAuthNotConfigured = errors.New("token verification not configured")

// Authenticator verifies identity-provider tokens. Verified tokens are cached
// by go-guardian so repeated requests skip the signature check.
type Authenticator struct {
	authenticator auth.Authenticator
	secret        []byte
}

// NewAuthenticator sets up the go-guardian bearer strategy for HS256 tokens
// signed with secret
func NewAuthenticator(ctx context.Context, secret string, cacheTTL time.Duration) *Authenticator {
	a := &Authenticator{secret: []byte(secret)}
	cache := store.NewFIFO(ctx, cacheTTL)
	a.authenticator = auth.New()
	a.authenticator.EnableStrategy(bearer.CachedStrategyKey, bearer.New(a.verifyToken, cache))
	return a
}

// Middleware rejects requests without a valid bearer token and stores the
// caller identity in the request context
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info, err := a.authenticator.Authenticate(r)
		if err == nil && expired(info, time.Now()) {
			err = ErrTokenExpired
		}
		if err != nil {
			zap.S().Infow("unauthorized", "url", r.URL.String(), "error", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(models.ErrorResponse{
				Success: false,
				Error:   "unauthorized",
				Code:    "UNAUTHORIZED",
			})
			return
		}
		id := models.Identity{UserID: info.ID(), Roles: info.Groups()}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func (a *Authenticator) verifyToken(_ context.Context, _ *http.Request, token string) (auth.Info, error) {
	if len(a.secret) == 0 {
		return nil, ErrAuthNotConfigured
	}
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	var exts map[string][]string
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		exts = map[string][]string{expiresAtKey: {strconv.FormatInt(exp.Unix(), 10)}}
	}
	return auth.NewDefaultUser(sub, sub, rolesClaim(claims), exts), nil
}

// expired re-checks the token exp on every request, cache hits included
func expired(info auth.Info, now time.Time) bool {
	v := info.Extensions()[expiresAtKey]
	if len(v) == 0 {
		return false
	}
	exp, err := strconv.ParseInt(v[0], 10, 64)
	if err != nil {
		return true
	}
	return !now.Before(time.Unix(exp, 0))
}

func rolesClaim(claims jwt.MapClaims) []string {
	raw, ok := claims["roles"].([]interface{})
	if !ok {
		return nil
	}
	roles := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			roles = append(roles, s)
		}
	}
	return roles
}

// WithIdentity returns ctx carrying id
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the caller set by the auth middleware
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(models.Identity)
	return id, ok && id.UserID != ""
}
