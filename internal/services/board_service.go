package services

import (
	"context"
	"strings"

	"github.com/ahmetcoskunkizilkaya/taskboard/internal/access"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/dto"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/models"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/repository"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/session"
	"github.com/google/uuid"
)

type BoardService struct {
	store     repository.Store
	evaluator *access.Evaluator
}

func NewBoardService(store repository.Store, evaluator *access.Evaluator) *BoardService {
	return &BoardService{store: store, evaluator: evaluator}
}

func (s *BoardService) List(ctx context.Context, id session.Identity, projectID uuid.UUID) ([]models.Board, error) {
	if _, err := s.evaluator.Authorize(ctx, id, access.Project(projectID), access.Read); err != nil {
		return nil, err
	}
	return s.store.Boards().ListByProject(ctx, projectID)
}

func (s *BoardService) Create(ctx context.Context, id session.Identity, projectID uuid.UUID, req *dto.CreateBoardRequest) (*models.Board, error) {
	if _, err := s.evaluator.Authorize(ctx, id, access.Project(projectID), access.Write); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Invalid("board name is required").WithDetail("name", "required")
	}
	b := &models.Board{
		ID:          uuid.New(),
		ProjectID:   projectID,
		Name:        name,
		Description: req.Description,
		Color:       req.Color,
		CreatorID:   id.UserID,
	}
	if err := s.store.Boards().Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BoardService) Get(ctx context.Context, id session.Identity, boardID uuid.UUID) (*models.Board, error) {
	if _, err := s.evaluator.Authorize(ctx, id, access.Board(boardID), access.Read); err != nil {
		return nil, err
	}
	return s.store.Boards().Get(ctx, boardID)
}

func (s *BoardService) Update(ctx context.Context, id session.Identity, boardID uuid.UUID, req *dto.UpdateBoardRequest) (*models.Board, error) {
	if _, err := s.evaluator.Authorize(ctx, id, access.Board(boardID), access.Write); err != nil {
		return nil, err
	}
	b, err := s.store.Boards().Get(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperr.Invalid("board name cannot be empty").WithDetail("name", "required")
		}
		b.Name = name
	}
	if req.Description != nil {
		b.Description = *req.Description
	}
	if req.Color != nil {
		b.Color = *req.Color
	}
	if err := s.store.Boards().Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BoardService) Delete(ctx context.Context, id session.Identity, boardID uuid.UUID) error {
	if _, err := s.evaluator.Authorize(ctx, id, access.Board(boardID), access.Write); err != nil {
		return err
	}
	return s.store.Boards().Delete(ctx, boardID)
}
