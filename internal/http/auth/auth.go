// Package auth verifies bearer tokens and carries the caller's identity in
// the request context.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/backoffice/internal/api"
	"github.com/MrJamesThe3rd/backoffice/internal/http/render"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrNoTenant     = errors.New("token has no tenant")
)

type claims struct {
	TenantID uuid.UUID `json:"tenant_id"`
	jwt.RegisteredClaims
}

type ctxKey struct{}

func NewContext(ctx context.Context, id api.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (api.Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(api.Identity)
	return id, ok
}

// Verifier checks HS256 tokens signed with a shared secret.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Issue signs a token for subject in tenant, valid for ttl.
func (v *Verifier) Issue(subject string, tenantID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		TenantID: tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

// Verify parses a raw token and returns the identity it carries.
func (v *Verifier) Verify(raw string) (api.Identity, error) {
	var c claims

	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return api.Identity{}, err
	}

	if c.TenantID == uuid.Nil {
		return api.Identity{}, ErrNoTenant
	}

	return api.Identity{Subject: c.Subject, TenantID: c.TenantID}, nil
}

// Middleware rejects requests without a valid bearer token with 401.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearer(r)
		if !ok {
			unauthorized(w, ErrMissingToken)
			return
		}

		id, err := v.Verify(raw)
		if err != nil {
			unauthorized(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), id)))
	})
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")

	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}

	return strings.TrimSpace(token), true
}

func unauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	render.Detail(w, http.StatusUnauthorized, "could not validate credentials: "+err.Error())
}

// Me echoes the identity of the caller.
func Me(w http.ResponseWriter, r *http.Request) {
	id, ok := Require(w, r)
	if !ok {
		return
	}

	render.JSON(w, http.StatusOK, id)
}

// Require returns the caller's identity or writes 401 and reports false.
func Require(w http.ResponseWriter, r *http.Request) (api.Identity, bool) {
	id, ok := FromContext(r.Context())
	if !ok {
		unauthorized(w, ErrMissingToken)
	}

	return id, ok
}
