package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/taskboard/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "test-secret"

type fakeStore struct {
	sessions map[string]*models.Session
	err      error
}

func (f *fakeStore) GetByTokenHash(_ context.Context, hash string) (*models.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.sessions[hash]
	if !ok {
		return nil, apperr.NotFound("session not found")
	}
	return s, nil
}

func issue(t *testing.T, id Identity, now time.Time, ttl time.Duration) string {
	t.Helper()
	issuer := NewIssuer(testSecret, ttl)
	issuer.now = func() time.Time { return now }
	token, _, err := issuer.Issue(id)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	return token
}

func testIdentity() Identity {
	return Identity{UserID: uuid.New(), Email: "alice@example.com", Role: models.RoleUser}
}

func TestResolveStateless(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id := testIdentity()
	token := issue(t, id, now, time.Hour)

	r := NewResolver(testSecret, WithClock(func() time.Time { return now.Add(time.Minute) }))
	got, err := r.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got != id {
		t.Errorf("Resolve() = %+v, want %+v", got, id)
	}
}

func TestResolveRejectsBadCredentials(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id := testIdentity()
	valid := issue(t, id, now, time.Hour)

	otherSecret := NewIssuer("another-secret", time.Hour)
	otherSecret.now = func() time.Time { return now }
	forged, _, err := otherSecret.Issue(id)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID: id.UserID.String(), Email: id.Email, Role: id.Role,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString() error: %v", err)
	}

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: id.UserID.String(), Email: id.Email, Role: id.Role,
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString() error: %v", err)
	}

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: "not-a-uuid", Email: id.Email, Role: id.Role,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString() error: %v", err)
	}

	tests := []struct {
		name  string
		token string
		at    time.Time
	}{
		{"missing", "", now},
		{"malformed", "not.a.jwt", now},
		{"wrong signature", forged, now},
		{"alg none", unsigned, now},
		{"no exp claim", noExpiry, now},
		{"expired claim", valid, now.Add(2 * time.Hour)},
		{"bad userId claim", badSubject, now},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := tt.at
			r := NewResolver(testSecret, WithClock(func() time.Time { return at }))
			_, err := r.Resolve(context.Background(), tt.token)
			if !errors.Is(err, apperr.ErrUnauthenticated) {
				t.Errorf("Resolve() error = %v, want ErrUnauthenticated", err)
			}
		})
	}
}

func TestResolveExpiredPersistedSessionWins(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id := testIdentity()
	token := issue(t, id, now, 24*time.Hour)

	store := &fakeStore{sessions: map[string]*models.Session{
		HashToken(token): {UserID: id.UserID, ExpiresAt: now.Add(-time.Second)},
	}}
	r := NewResolver(testSecret, WithStore(store, true), WithClock(func() time.Time { return now }))

	if _, err := r.Parse(token); err != nil {
		t.Fatalf("Parse() error: %v (token itself should still be valid)", err)
	}
	_, err := r.Resolve(context.Background(), token)
	if !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Fatalf("Resolve() error = %v, want ErrUnauthenticated", err)
	}
}

func TestResolveSessionExpiryBoundary(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id := testIdentity()
	token := issue(t, id, now, time.Hour)
	store := &fakeStore{sessions: map[string]*models.Session{
		HashToken(token): {UserID: id.UserID, ExpiresAt: now},
	}}
	r := NewResolver(testSecret, WithStore(store, true), WithClock(func() time.Time { return now }))
	if _, err := r.Resolve(context.Background(), token); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Fatalf("Resolve() error = %v, want ErrUnauthenticated when expires_at == now", err)
	}
}

func TestResolveWithLiveSession(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id := testIdentity()
	token := issue(t, id, now, time.Hour)
	store := &fakeStore{sessions: map[string]*models.Session{
		HashToken(token): {UserID: id.UserID, ExpiresAt: now.Add(time.Hour)},
	}}
	r := NewResolver(testSecret, WithStore(store, true), WithClock(func() time.Time { return now }))
	got, err := r.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got.UserID != id.UserID {
		t.Errorf("Resolve().UserID = %v, want %v", got.UserID, id.UserID)
	}
}

func TestResolveMissingSessionRow(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id := testIdentity()
	token := issue(t, id, now, time.Hour)
	store := &fakeStore{sessions: map[string]*models.Session{}}
	clock := WithClock(func() time.Time { return now })

	strict := NewResolver(testSecret, WithStore(store, true), clock)
	if _, err := strict.Resolve(context.Background(), token); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("strict Resolve() error = %v, want ErrUnauthenticated", err)
	}

	lenient := NewResolver(testSecret, WithStore(store, false), clock)
	if _, err := lenient.Resolve(context.Background(), token); err != nil {
		t.Errorf("lenient Resolve() error: %v", err)
	}
}

func TestResolveSessionUserMismatch(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	id := testIdentity()
	token := issue(t, id, now, time.Hour)
	store := &fakeStore{sessions: map[string]*models.Session{
		HashToken(token): {UserID: uuid.New(), ExpiresAt: now.Add(time.Hour)},
	}}
	r := NewResolver(testSecret, WithStore(store, true), WithClock(func() time.Time { return now }))
	if _, err := r.Resolve(context.Background(), token); !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("Resolve() error = %v, want ErrUnauthenticated", err)
	}
}

func TestResolveStoreFailureIsNotUnauthenticated(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	token := issue(t, testIdentity(), now, time.Hour)
	store := &fakeStore{err: errors.New("connection refused")}
	r := NewResolver(testSecret, WithStore(store, true), WithClock(func() time.Time { return now }))
	_, err := r.Resolve(context.Background(), token)
	if err == nil || errors.Is(err, apperr.ErrUnauthenticated) {
		t.Errorf("Resolve() error = %v, want an internal error", err)
	}
}

type fakeUsers map[uuid.UUID]*models.User

func (f fakeUsers) Get(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	return u, nil
}

func TestResolveUsesStoredAccount(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := WithClock(func() time.Time { return now })

	demoted := Identity{UserID: uuid.New(), Email: "alice@example.com", Role: models.RoleAdmin}
	pending := testIdentity()
	gone := testIdentity()
	users := fakeUsers{
		demoted.UserID: {ID: demoted.UserID, Email: "alice@example.com", Role: models.RoleUser, Status: models.StatusApproved},
		pending.UserID: {ID: pending.UserID, Email: pending.Email, Role: models.RoleUser, Status: models.StatusPending},
	}

	r := NewResolver(testSecret, WithUsers(users, false), clock)
	got, err := r.Resolve(context.Background(), issue(t, demoted, now, time.Hour))
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if got.Role != models.RoleUser {
		t.Errorf("Resolve().Role = %q, want the stored role %q", got.Role, models.RoleUser)
	}

	tests := []struct {
		name string
		id   Identity
		want error
	}{
		{"deleted account", gone, apperr.ErrUnauthenticated},
		{"pending account", pending, apperr.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := r.Resolve(context.Background(), issue(t, tt.id, now, time.Hour)); !errors.Is(err, tt.want) {
				t.Errorf("Resolve() error = %v, want %v", err, tt.want)
			}
		})
	}

	lenient := NewResolver(testSecret, WithUsers(users, true), clock)
	if _, err := lenient.Resolve(context.Background(), issue(t, pending, now, time.Hour)); err != nil {
		t.Errorf("Resolve() with pending allowed error: %v", err)
	}
}

func TestCredential(t *testing.T) {
	t.Parallel()
	tests := []struct {
		header, cookie, want string
	}{
		{"Bearer abc", "", "abc"},
		{"bearer abc", "cookie-token", "abc"},
		{"Basic dXNlcjpwYXNz", "cookie-token", "cookie-token"},
		{"", " cookie-token ", "cookie-token"},
		{"Bearer", "", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		if got := Credential(tt.header, tt.cookie); got != tt.want {
			t.Errorf("Credential(%q, %q) = %q, want %q", tt.header, tt.cookie, got, tt.want)
		}
	}
}
