package services

import (
	"context"
	"errors"
	"strings"

	"github.com/ahmetcoskunkizilkaya/taskboard/internal/access"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/dto"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/models"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/repository"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/session"
	"github.com/google/uuid"
)

type ProjectService struct {
	store     repository.Store
	evaluator *access.Evaluator
}

func NewProjectService(store repository.Store, evaluator *access.Evaluator) *ProjectService {
	return &ProjectService{store: store, evaluator: evaluator}
}

// List returns the projects the caller owns or belongs to; global admins see all.
func (s *ProjectService) List(ctx context.Context, id session.Identity) ([]models.Project, error) {
	if id.Role == models.RoleAdmin {
		return s.store.Projects().ListAll(ctx)
	}
	return s.store.Projects().ListForUser(ctx, id.UserID)
}

// Create inserts the project and, when asked, its default board and columns
// in one transaction.
func (s *ProjectService) Create(ctx context.Context, id session.Identity, req *dto.CreateProjectRequest) (*dto.ProjectCreatedResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Invalid("project name is required").WithDetail("name", "required")
	}

	out := &dto.ProjectCreatedResponse{
		Project: &models.Project{
			ID:          uuid.New(),
			Name:        name,
			Description: req.Description,
			Color:       req.Color,
			CreatorID:   id.UserID,
		},
	}
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := tx.Projects().Create(ctx, out.Project); err != nil {
			return err
		}
		if !req.DefaultBoard {
			return nil
		}
		out.Board = &models.Board{
			ID:        uuid.New(),
			ProjectID: out.Project.ID,
			Name:      models.DefaultBoardName,
			Color:     req.Color,
			CreatorID: id.UserID,
		}
		if err := tx.Boards().Create(ctx, out.Board); err != nil {
			return err
		}
		for i, colName := range models.DefaultColumns {
			col := models.Column{ID: uuid.New(), BoardID: out.Board.ID, Name: colName, Position: i}
			if err := tx.Columns().Create(ctx, &col); err != nil {
				return err
			}
			out.Columns = append(out.Columns, col)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ProjectService) Get(ctx context.Context, id session.Identity, projectID uuid.UUID) (*dto.ProjectResponse, error) {
	d, err := s.evaluator.Authorize(ctx, id, access.Project(projectID), access.Read)
	if err != nil {
		return nil, err
	}
	p, err := s.store.Projects().Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &dto.ProjectResponse{Project: *p, Role: d.Role}, nil
}

// Access reports the caller's standing on a project without loading it.
func (s *ProjectService) Access(ctx context.Context, id session.Identity, projectID uuid.UUID) (access.Decision, error) {
	return s.evaluator.Authorize(ctx, id, access.Project(projectID), access.Read)
}

func (s *ProjectService) Update(ctx context.Context, id session.Identity, projectID uuid.UUID, req *dto.UpdateProjectRequest) (*models.Project, error) {
	if _, err := s.evaluator.Authorize(ctx, id, access.Project(projectID), access.Manage); err != nil {
		return nil, err
	}
	p, err := s.store.Projects().Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperr.Invalid("project name cannot be empty").WithDetail("name", "required")
		}
		p.Name = name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Color != nil {
		p.Color = *req.Color
	}
	if err := s.store.Projects().Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes the project and, through cascades, everything below it.
func (s *ProjectService) Delete(ctx context.Context, id session.Identity, projectID uuid.UUID) error {
	if _, err := s.evaluator.Authorize(ctx, id, access.Project(projectID), access.Own); err != nil {
		return err
	}
	return s.store.Projects().Delete(ctx, projectID)
}

// Members lists the owner first, then every membership oldest first.
func (s *ProjectService) Members(ctx context.Context, id session.Identity, projectID uuid.UUID) ([]models.MemberView, error) {
	if _, err := s.evaluator.Authorize(ctx, id, access.Project(projectID), access.Read); err != nil {
		return nil, err
	}
	p, err := s.store.Projects().Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	members, err := s.store.Members().List(ctx, projectID)
	if err != nil {
		return nil, err
	}

	out := make([]models.MemberView, 0, len(members)+1)
	owner, err := s.store.Users().Get(ctx, p.CreatorID)
	switch {
	case err == nil:
		out = append(out, models.MemberView{
			UserID:   owner.ID,
			Email:    owner.Email,
			Name:     owner.Name,
			Role:     models.ProjectRoleOwner,
			IsOwner:  true,
			JoinedAt: p.CreatedAt,
		})
	case !errors.Is(err, apperr.ErrNotFound):
		return nil, err
	}
	for _, m := range members {
		if m.UserID == p.CreatorID {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *ProjectService) AddMember(ctx context.Context, id session.Identity, projectID uuid.UUID, req *dto.AddMemberRequest) (*models.ProjectMember, error) {
	d, err := s.evaluator.Authorize(ctx, id, access.Project(projectID), access.Manage)
	if err != nil {
		return nil, err
	}
	role := req.Role
	if role == "" {
		role = models.ProjectRoleMember
	}
	if err := access.CheckGrant(d, role); err != nil {
		return nil, err
	}

	var user *models.User
	switch {
	case req.UserID != nil:
		user, err = s.store.Users().Get(ctx, *req.UserID)
	case strings.TrimSpace(req.Email) != "":
		user, err = s.store.Users().GetByEmail(ctx, normalizeEmail(req.Email))
	default:
		return nil, apperr.Invalid("user_id or email is required").WithDetail("user_id", "required")
	}
	if err != nil {
		return nil, err
	}

	p, err := s.store.Projects().Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if user.ID == p.CreatorID {
		return nil, apperr.InvalidOperation("the project owner is already a member")
	}

	m := &models.ProjectMember{ProjectID: projectID, UserID: user.ID, Role: role}
	if err := s.store.Members().Add(ctx, m); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, apperr.Conflict("user is already a member of this project")
		}
		return nil, err
	}
	return m, nil
}

// UpdateMember changes a member's role. The caller must be able to manage
// the project before the request itself is looked at.
func (s *ProjectService) UpdateMember(ctx context.Context, id session.Identity, projectID, userID uuid.UUID, req *dto.UpdateMemberRequest) (*models.ProjectMember, error) {
	d, err := s.evaluator.Authorize(ctx, id, access.Project(projectID), access.Manage)
	if err != nil {
		return nil, err
	}
	ref, err := s.store.ProjectFor(ctx, access.Project(projectID))
	if err != nil {
		return nil, err
	}
	if err := access.CheckRoleChange(d, ref, userID, req.Role); err != nil {
		return nil, err
	}

	m, err := s.store.Members().Get(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Members().UpdateRole(ctx, projectID, userID, req.Role); err != nil {
		return nil, err
	}
	m.Role = req.Role
	return m, nil
}

// RemoveMember removes userID from the project. Any member may remove
// themselves; the owner can never be removed.
func (s *ProjectService) RemoveMember(ctx context.Context, id session.Identity, projectID, userID uuid.UUID) error {
	d, err := s.evaluator.Evaluate(ctx, id, access.Project(projectID))
	if err != nil {
		return err
	}
	ref, err := s.store.ProjectFor(ctx, access.Project(projectID))
	if err != nil {
		return err
	}
	if err := access.CheckRemoval(d, ref, id.UserID, userID); err != nil {
		return err
	}
	if _, err := s.store.Members().Get(ctx, projectID, userID); err != nil {
		return err
	}
	return s.store.Members().Remove(ctx, projectID, userID)
}
