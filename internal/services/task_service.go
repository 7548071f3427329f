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

type TaskService struct {
	store     repository.Store
	evaluator *access.Evaluator
}

func NewTaskService(store repository.Store, evaluator *access.Evaluator) *TaskService {
	return &TaskService{store: store, evaluator: evaluator}
}

func (s *TaskService) ListByColumn(ctx context.Context, id session.Identity, columnID uuid.UUID) ([]models.Task, error) {
	if _, err := s.evaluator.Authorize(ctx, id, access.Column(columnID), access.Read); err != nil {
		return nil, err
	}
	return s.store.Tasks().ListByColumn(ctx, columnID)
}

func (s *TaskService) ListByBoard(ctx context.Context, id session.Identity, boardID uuid.UUID) ([]models.Task, error) {
	if _, err := s.evaluator.Authorize(ctx, id, access.Board(boardID), access.Read); err != nil {
		return nil, err
	}
	return s.store.Tasks().ListByBoard(ctx, boardID)
}

func (s *TaskService) Create(ctx context.Context, id session.Identity, columnID uuid.UUID, req *dto.CreateTaskRequest) (*models.Task, error) {
	d, err := s.evaluator.Authorize(ctx, id, access.Column(columnID), access.Write)
	if err != nil {
		return nil, err
	}

	t := &models.Task{
		ID:             uuid.New(),
		ColumnID:       columnID,
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		AssigneeID:     req.AssigneeID,
		CreatorID:      id.UserID,
		Priority:       req.Priority,
		Status:         req.Status,
		Deadline:       req.Deadline,
		EstimatedHours: req.EstimatedHours,
		ActualHours:    req.ActualHours,
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}
	if t.Status == "" {
		t.Status = models.TaskTodo
	}
	if err := validateTask(t); err != nil {
		return nil, err
	}
	if req.Position != nil {
		if *req.Position < 0 {
			return nil, apperr.Invalid("position cannot be negative").WithDetail("position", "must be >= 0")
		}
		t.Position = *req.Position
	} else {
		next, err := s.store.Tasks().NextPosition(ctx, columnID)
		if err != nil {
			return nil, err
		}
		t.Position = next
	}
	if err := s.checkAssignee(ctx, d.ProjectID, t.AssigneeID); err != nil {
		return nil, err
	}

	if err := s.store.Tasks().Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskService) Get(ctx context.Context, id session.Identity, taskID uuid.UUID) (*models.Task, error) {
	if _, err := s.evaluator.Authorize(ctx, id, access.Task(taskID), access.Read); err != nil {
		return nil, err
	}
	return s.store.Tasks().Get(ctx, taskID)
}

func (s *TaskService) Update(ctx context.Context, id session.Identity, taskID uuid.UUID, req *dto.UpdateTaskRequest) (*models.Task, error) {
	d, err := s.evaluator.Authorize(ctx, id, access.Task(taskID), access.Write)
	if err != nil {
		return nil, err
	}
	t, err := s.store.Tasks().Get(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		t.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Unassign {
		t.AssigneeID = nil
	} else if req.AssigneeID != nil {
		t.AssigneeID = req.AssigneeID
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	if req.Position != nil {
		if *req.Position < 0 {
			return nil, apperr.Invalid("position cannot be negative").WithDetail("position", "must be >= 0")
		}
		t.Position = *req.Position
	}
	if req.Deadline != nil {
		t.Deadline = req.Deadline
	}
	if req.EstimatedHours != nil {
		t.EstimatedHours = req.EstimatedHours
	}
	if req.ActualHours != nil {
		t.ActualHours = req.ActualHours
	}
	if err := validateTask(t); err != nil {
		return nil, err
	}
	if req.AssigneeID != nil && !req.Unassign {
		if err := s.checkAssignee(ctx, d.ProjectID, t.AssigneeID); err != nil {
			return nil, err
		}
	}

	if err := s.store.Tasks().Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, id session.Identity, taskID uuid.UUID) error {
	if _, err := s.evaluator.Authorize(ctx, id, access.Task(taskID), access.Write); err != nil {
		return err
	}
	return s.store.Tasks().Delete(ctx, taskID)
}

// Move puts the task into another column of the same project, at the end of
// that column unless a position is given.
func (s *TaskService) Move(ctx context.Context, id session.Identity, taskID uuid.UUID, req *dto.MoveTaskRequest) (*models.Task, error) {
	from, err := s.evaluator.Authorize(ctx, id, access.Task(taskID), access.Write)
	if err != nil {
		return nil, err
	}
	if req.ColumnID == uuid.Nil {
		return nil, apperr.Invalid("column_id is required").WithDetail("column_id", "required")
	}
	to, err := s.evaluator.Authorize(ctx, id, access.Column(req.ColumnID), access.Write)
	if err != nil {
		return nil, err
	}
	if from.ProjectID != to.ProjectID {
		return nil, apperr.InvalidOperation("tasks can only move between columns of the same project")
	}

	t, err := s.store.Tasks().Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if req.Position != nil {
		if *req.Position < 0 {
			return nil, apperr.Invalid("position cannot be negative").WithDetail("position", "must be >= 0")
		}
		t.Position = *req.Position
	} else if t.ColumnID != req.ColumnID {
		next, err := s.store.Tasks().NextPosition(ctx, req.ColumnID)
		if err != nil {
			return nil, err
		}
		t.Position = next
	}
	t.ColumnID = req.ColumnID

	if err := s.store.Tasks().Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// checkAssignee requires the assignee to be the project owner or a member.
func (s *TaskService) checkAssignee(ctx context.Context, projectID uuid.UUID, assignee *uuid.UUID) error {
	if assignee == nil {
		return nil
	}
	ref, err := s.store.ProjectFor(ctx, access.Project(projectID))
	if err != nil {
		return err
	}
	if ref.CreatorID == *assignee {
		return nil
	}
	_, err = s.store.MemberRole(ctx, projectID, *assignee)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.Invalid("assignee must be a member of the project").
			WithDetail("assignee_id", "not a project member")
	}
	return err
}

func validateTask(t *models.Task) error {
	switch {
	case t.Title == "":
		return apperr.Invalid("task title is required").WithDetail("title", "required")
	case !models.ValidPriority(t.Priority):
		return apperr.Invalid("invalid priority").WithDetail("priority", "must be one of low, medium, high, urgent")
	case !models.ValidTaskStatus(t.Status):
		return apperr.Invalid("invalid status").WithDetail("status", "must be one of todo, in_progress, review, done")
	case t.EstimatedHours != nil && *t.EstimatedHours < 0:
		return apperr.Invalid("estimated hours cannot be negative").WithDetail("estimated_hours", "must be >= 0")
	case t.ActualHours != nil && *t.ActualHours < 0:
		return apperr.Invalid("actual hours cannot be negative").WithDetail("actual_hours", "must be >= 0")
	}
	return nil
}
