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

type ColumnService struct {
	store     repository.Store
	evaluator *access.Evaluator
}

func NewColumnService(store repository.Store, evaluator *access.Evaluator) *ColumnService {
	return &ColumnService{store: store, evaluator: evaluator}
}

// List returns the board's columns ordered by position.
func (s *ColumnService) List(ctx context.Context, id session.Identity, boardID uuid.UUID) ([]models.Column, error) {
	if _, err := s.evaluator.Authorize(ctx, id, access.Board(boardID), access.Read); err != nil {
		return nil, err
	}
	return s.store.Columns().ListByBoard(ctx, boardID)
}

// Create appends a column to the board unless an explicit position is given.
func (s *ColumnService) Create(ctx context.Context, id session.Identity, boardID uuid.UUID, req *dto.CreateColumnRequest) (*models.Column, error) {
	if _, err := s.evaluator.Authorize(ctx, id, access.Board(boardID), access.Write); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.ColumnName())
	if name == "" {
		return nil, apperr.Invalid("column name is required").WithDetail("name", "required")
	}

	col := &models.Column{ID: uuid.New(), BoardID: boardID, Name: name, Color: req.Color}
	if req.Position != nil {
		if *req.Position < 0 {
			return nil, apperr.Invalid("position cannot be negative").WithDetail("position", "must be >= 0")
		}
		col.Position = *req.Position
	} else {
		next, err := s.store.Columns().NextPosition(ctx, boardID)
		if err != nil {
			return nil, err
		}
		col.Position = next
	}
	if err := s.store.Columns().Create(ctx, col); err != nil {
		return nil, err
	}
	return col, nil
}

func (s *ColumnService) Update(ctx context.Context, id session.Identity, columnID uuid.UUID, req *dto.UpdateColumnRequest) (*models.Column, error) {
	if _, err := s.evaluator.Authorize(ctx, id, access.Column(columnID), access.Write); err != nil {
		return nil, err
	}
	col, err := s.store.Columns().Get(ctx, columnID)
	if err != nil {
		return nil, err
	}
	if n := req.ColumnName(); n != nil {
		name := strings.TrimSpace(*n)
		if name == "" {
			return nil, apperr.Invalid("column name cannot be empty").WithDetail("name", "required")
		}
		col.Name = name
	}
	if req.Color != nil {
		col.Color = *req.Color
	}
	if req.Position != nil {
		if *req.Position < 0 {
			return nil, apperr.Invalid("position cannot be negative").WithDetail("position", "must be >= 0")
		}
		col.Position = *req.Position
	}
	if err := s.store.Columns().Update(ctx, col); err != nil {
		return nil, err
	}
	return col, nil
}

func (s *ColumnService) Delete(ctx context.Context, id session.Identity, columnID uuid.UUID) error {
	if _, err := s.evaluator.Authorize(ctx, id, access.Column(columnID), access.Write); err != nil {
		return err
	}
	return s.store.Columns().Delete(ctx, columnID)
}

// Reorder assigns positions 0..n-1 following ids, which must name every
// column of the board exactly once.
func (s *ColumnService) Reorder(ctx context.Context, id session.Identity, boardID uuid.UUID, ids []uuid.UUID) ([]models.Column, error) {
	if _, err := s.evaluator.Authorize(ctx, id, access.Board(boardID), access.Write); err != nil {
		return nil, err
	}

	var out []models.Column
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		current, err := tx.Columns().ListByBoard(ctx, boardID)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]models.Column, len(current))
		for _, c := range current {
			byID[c.ID] = c
		}
		if len(ids) != len(current) {
			return apperr.Invalid("column_ids must list every column of the board").
				WithDetail("column_ids", "incomplete")
		}

		out = make([]models.Column, 0, len(ids))
		for pos, cid := range ids {
			col, ok := byID[cid]
			if !ok {
				return apperr.Invalid("column %s is not on this board", cid).
					WithDetail("column_ids", "unknown or repeated column")
			}
			delete(byID, cid)
			col.Position = pos
			if err := tx.Columns().Update(ctx, &col); err != nil {
				return err
			}
			out = append(out, col)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
