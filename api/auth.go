/*
auth.go - Admin token issue and verification

PURPOSE:
  Gates every /api/admin route except login and verify. The board has a
  single shared admin password; logging in exchanges it for an HS256 JWT
  carrying role "admin".

FLOW:
  POST /api/admin/login   {"password": "..."} -> {"token", "expires_in"}
  Authorization: Bearer <token> on admin routes
    missing/malformed/expired/bad signature -> 401
    valid token without role "admin"        -> 403

PASSWORD:
  The configured password is bcrypt-hashed once at startup and only the
  hash is kept in memory.

SEE ALSO:
  - server.go: Route groups using RequireAdmin
  - config/config.go: JWT_SECRET, ADMIN_PASSWORD, TOKEN_TTL
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const roleAdmin = "admin"

var (
	// ErrInvalidPassword is returned by Login for a wrong password.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrForbidden is returned by Verify for a valid token without the
	// admin role.
	ErrForbidden = errors.New("insufficient permissions")
)

// AdminClaims is the JWT payload for admin tokens.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Auth issues and verifies admin tokens.
type Auth struct {
	secret       []byte
	passwordHash []byte
	ttl          time.Duration
	now          func() time.Time
}

// NewAuth hashes password and returns an Auth signing with secret.
func NewAuth(secret, password string, ttl time.Duration) (*Auth, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}
	return &Auth{
		secret:       []byte(secret),
		passwordHash: hash,
		ttl:          ttl,
		now:          time.Now,
	}, nil
}

// Login checks password and returns a signed token and its lifetime.
func (a *Auth) Login(password string) (string, time.Duration, error) {
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil {
		return "", 0, ErrInvalidPassword
	}
	token, err := a.Issue(roleAdmin)
	if err != nil {
		return "", 0, err
	}
	return token, a.ttl, nil
}

// Issue signs a token for role.
func (a *Auth) Issue(role string) (string, error) {
	now := a.now()
	claims := AdminClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a token. It returns ErrForbidden when the token is valid
// but lacks the admin role.
func (a *Auth) Verify(tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.Role != roleAdmin {
		return nil, ErrForbidden
	}
	return claims, nil
}

type contextKey string

const claimsKey contextKey = "admin_claims"

// RequireAdmin rejects requests without a valid admin bearer token.
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			writeError(w, http.StatusUnauthorized, "No token provided", nil)
			return
		}

		claims, err := a.Verify(tokenString)
		if errors.Is(err, ErrForbidden) {
			writeError(w, http.StatusForbidden, "Insufficient permissions", nil)
			return
		}
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token", err)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// actorFrom names the admin behind a request for AwardedBy. Tokens are not
// tied to a person, so this is the role.
func actorFrom(ctx context.Context) string {
	if claims, ok := ctx.Value(claimsKey).(*AdminClaims); ok && claims.Role != "" {
		return claims.Role
	}
	return roleAdmin
}
