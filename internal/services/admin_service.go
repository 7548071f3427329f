package services

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/taskboard/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/models"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/repository"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/session"
	"github.com/google/uuid"
)

// AdminService manages accounts. Callers are gated by middleware.AdminRequired.
type AdminService struct {
	store repository.Store
}

func NewAdminService(store repository.Store) *AdminService {
	return &AdminService{store: store}
}

func (s *AdminService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.store.Users().List(ctx)
}

func (s *AdminService) Approve(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.store.Users().Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Status == models.StatusApproved {
		return user, nil
	}
	user.Status = models.StatusApproved
	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AdminService) SetRole(ctx context.Context, caller session.Identity, userID uuid.UUID, role string) (*models.User, error) {
	if !models.ValidUserRole(role) {
		return nil, apperr.Invalid("invalid role").WithDetail("role", "must be one of admin, user, manager")
	}
	if userID == caller.UserID && role != models.RoleAdmin {
		return nil, apperr.InvalidOperation("you cannot remove your own admin role")
	}
	user, err := s.store.Users().Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == role {
		return user, nil
	}

	// Tokens issued under the old role are revoked with the change.
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		user.Role = role
		if err := tx.Users().Update(ctx, user); err != nil {
			return err
		}
		_, err := tx.Sessions().DeleteByUser(ctx, userID, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
