// Package auth issues and verifies the bearer tokens that carry the viewer's
// identity and role.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cgfarias/mobifacil-front-sub000/internal/domain"
)

// ErrUnauthenticated is returned when a token is missing, malformed, expired
// or signed with the wrong key. Handlers should map this to HTTP 401.
var ErrUnauthenticated = errors.New("unauthenticated")

// Claims is the token payload. The subject is the user id.
type Claims struct {
	Role domain.Role `json:"role"`
	Name string      `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Signer issues and verifies HS256 tokens with a shared secret.
type Signer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewSigner returns a Signer. A ttl of zero issues tokens without expiry.
func NewSigner(secret string, ttl time.Duration) *Signer {
	return &Signer{key: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for v.
func (s *Signer) Issue(v domain.Viewer) (string, error) {
	now := s.now()
	claims := Claims{
		Role: v.Role,
		Name: v.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  strconv.FormatInt(v.ID, 10),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("auth.Signer.Issue: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of token and returns its viewer.
func (s *Signer) Verify(token string) (domain.Viewer, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return domain.Viewer{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	return claims.viewer()
}

// DecodeUnverified reads the viewer out of token without checking its
// signature. Clients use it to learn who they are; servers must use Verify.
func DecodeUnverified(token string) (domain.Viewer, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return domain.Viewer{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	return claims.viewer()
}

func (c Claims) viewer() (domain.Viewer, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return domain.Viewer{}, fmt.Errorf("%w: bad subject %q", ErrUnauthenticated, c.Subject)
	}
	switch c.Role {
	case domain.RoleRequester, domain.RoleAdmin:
	default:
		return domain.Viewer{}, fmt.Errorf("%w: unknown role %q", ErrUnauthenticated, c.Role)
	}
	return domain.Viewer{ID: id, Name: c.Name, Role: c.Role}, nil
}

type ctxKey struct{}

// WithViewer returns a copy of ctx carrying v.
func WithViewer(ctx context.Context, v domain.Viewer) context.Context {
	return context.WithValue(ctx, ctxKey{}, v)
}

// ViewerFromContext returns the viewer stored by WithViewer.
func ViewerFromContext(ctx context.Context) (domain.Viewer, bool) {
	v, ok := ctx.Value(ctxKey{}).(domain.Viewer)
	return v, ok
}
