package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/taskboard/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Store looks up persisted sessions by token hash. It returns an error
// wrapping apperr.ErrNotFound when no row exists.
type Store interface {
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error)
}

// UserStore loads the account behind a token. It returns an error wrapping
// apperr.ErrNotFound when the user no longer exists.
type UserStore interface {
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type Resolver struct {
	secret       []byte
	store        Store
	require      bool
	users        UserStore
	allowPending bool
	now          func() time.Time
}

type Option func(*Resolver)

// WithStore enables persisted-session corroboration. When required is true
// a token without a session row is rejected.
func WithStore(store Store, required bool) Option {
	return func(r *Resolver) {
		r.store = store
		r.require = required
	}
}

// WithUsers makes the stored account authoritative: the caller's role and
// email come from the users table, not from the token. Deleted accounts are
// rejected, and so are pending ones unless allowPending is set.
func WithUsers(users UserStore, allowPending bool) Option {
	return func(r *Resolver) {
		r.users = users
		r.allowPending = allowPending
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

func NewResolver(secret string, opts ...Option) *Resolver {
	r := &Resolver{secret: []byte(secret), now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// KeyFunc accepts HMAC-signed tokens only.
func (r *Resolver) KeyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
	}
	return r.secret, nil
}

// Parse verifies a raw token without touching the session store.
func (r *Resolver) Parse(raw string) (*Claims, error) {
	if raw == "" {
		return nil, apperr.Unauthenticated("missing credential")
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, r.KeyFunc,
		jwt.WithTimeFunc(r.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.Unauthenticated("token expired")
		}
		return nil, apperr.Unauthenticated("invalid token")
	}
	return claims, nil
}

// Resolve verifies raw and corroborates it against the session store.
func (r *Resolver) Resolve(ctx context.Context, raw string) (Identity, error) {
	claims, err := r.Parse(raw)
	if err != nil {
		return Identity{}, err
	}
	return r.Identify(ctx, raw, claims)
}

// Identify finishes resolution for a token whose signature has already been
// verified and whose claims are known.
func (r *Resolver) Identify(ctx context.Context, raw string, claims *Claims) (Identity, error) {
	id, err := claims.identity()
	if err != nil {
		return Identity{}, apperr.Unauthenticated("invalid token claims")
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(r.now()) {
		return Identity{}, apperr.Unauthenticated("token expired")
	}
	if err := r.corroborate(ctx, raw, id); err != nil {
		return Identity{}, err
	}
	return r.account(ctx, id)
}

func (r *Resolver) corroborate(ctx context.Context, raw string, id Identity) error {
	if r.store == nil {
		return nil
	}
	sess, err := r.store.GetByTokenHash(ctx, HashToken(raw))
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		if r.require {
			return apperr.Unauthenticated("session not found")
		}
		return nil
	case err != nil:
		return fmt.Errorf("load session: %w", err)
	}

	if sess.UserID != id.UserID {
		return apperr.Unauthenticated("session does not belong to token subject")
	}
	if sess.Expired(r.now()) {
		return apperr.Unauthenticated("session expired")
	}
	return nil
}

// account refreshes id from the users table when one is configured.
func (r *Resolver) account(ctx context.Context, id Identity) (Identity, error) {
	if r.users == nil {
		return id, nil
	}
	user, err := r.users.Get(ctx, id.UserID)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return Identity{}, apperr.Unauthenticated("account no longer exists")
	case err != nil:
		return Identity{}, fmt.Errorf("load user: %w", err)
	}
	if user.Status != models.StatusApproved && !r.allowPending {
		return Identity{}, apperr.Forbidden("account is pending approval")
	}
	id.Email = user.Email
	id.Role = user.Role
	return id, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// Credential picks the bearer token when present, else the cookie value.
func Credential(authorization, cookie string) string {
	if tok := BearerToken(authorization); tok != "" {
		return tok
	}
	return strings.TrimSpace(cookie)
}
