package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ahmetcoskunkizilkaya/taskboard/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/config"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/dto"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/models"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/repository"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/session"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// ClientInfo describes where a login came from. It is stored on the session row.
type ClientInfo struct {
	UserAgent string
	IP        string
}

type AuthService struct {
	store  repository.Store
	issuer *session.Issuer
	cfg    *config.Config
}

func NewAuthService(store repository.Store, issuer *session.Issuer, cfg *config.Config) *AuthService {
	return &AuthService{store: store, issuer: issuer, cfg: cfg}
}

// Register creates an account. The very first account is approved and made a
// global admin so a fresh install can be administered.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	if !validEmail(email) {
		return nil, apperr.Invalid("a valid email is required").WithDetail("email", "invalid")
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperr.Invalid("password must be at least %d characters", minPasswordLength).
			WithDetail("password", "too short")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		Status:       models.StatusPending,
	}
	if s.cfg.AutoApproveUsers || slices.Contains(s.cfg.AdminEmailList(), email) {
		user.Status = models.StatusApproved
	}

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		count, err := tx.Users().Count(ctx)
		if err != nil {
			return err
		}
		if count == 0 {
			user.Role = models.RoleAdmin
			user.Status = models.StatusApproved
		}
		return tx.Users().Create(ctx, user)
	})
	if errors.Is(err, apperr.ErrConflict) {
		return nil, apperr.Conflict("email already registered")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login verifies credentials, persists a session row and returns its token.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest, client ClientInfo) (*dto.AuthResponse, error) {
	user, err := s.store.Users().GetByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Unauthenticated("invalid email or password")
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperr.Unauthenticated("invalid email or password")
	}
	if user.Status != models.StatusApproved && !s.cfg.AutoApproveUsers {
		return nil, apperr.Forbidden("account is pending approval")
	}

	token, expiresAt, err := s.issuer.Issue(session.Identity{UserID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return nil, err
	}
	sess := &models.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: session.HashToken(token),
		ExpiresAt: expiresAt,
		UserAgent: truncate(client.UserAgent, 255),
		IP:        truncate(client.IP, 64),
	}
	if err := s.store.Sessions().Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return &dto.AuthResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Logout revokes the session behind token. Unknown tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	err := s.store.Sessions().DeleteByTokenHash(ctx, session.HashToken(token))
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	return nil
}

// LogoutAll revokes every session of the caller.
func (s *AuthService) LogoutAll(ctx context.Context, id session.Identity) (int64, error) {
	return s.store.Sessions().DeleteByUser(ctx, id.UserID, "")
}

func (s *AuthService) Me(ctx context.Context, id session.Identity) (*models.User, error) {
	return s.store.Users().Get(ctx, id.UserID)
}

func (s *AuthService) UpdateProfile(ctx context.Context, id session.Identity, req *dto.UpdateProfileRequest) (*models.User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Invalid("name is required").WithDetail("name", "required")
	}
	user, err := s.store.Users().Get(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	user.Name = name
	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword replaces the caller's password and revokes every other
// session, keeping the one identified by currentToken.
func (s *AuthService) ChangePassword(ctx context.Context, id session.Identity, currentToken string, req *dto.ChangePasswordRequest) error {
	if len(req.NewPassword) < minPasswordLength {
		return apperr.Invalid("password must be at least %d characters", minPasswordLength).
			WithDetail("new_password", "too short")
	}
	user, err := s.store.Users().Get(ctx, id.UserID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return apperr.Invalid("current password is incorrect").WithDetail("current_password", "incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.store.WithTx(ctx, func(tx repository.Store) error {
		user.PasswordHash = string(hash)
		if err := tx.Users().Update(ctx, user); err != nil {
			return err
		}
		_, err := tx.Sessions().DeleteByUser(ctx, user.ID, session.HashToken(currentToken))
		return err
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\r\n")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
