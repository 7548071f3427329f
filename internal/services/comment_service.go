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

type CommentService struct {
	store     repository.Store
	evaluator *access.Evaluator
}

func NewCommentService(store repository.Store, evaluator *access.Evaluator) *CommentService {
	return &CommentService{store: store, evaluator: evaluator}
}

// List returns the task's comments oldest first.
func (s *CommentService) List(ctx context.Context, id session.Identity, taskID uuid.UUID) ([]models.Comment, error) {
	if _, err := s.evaluator.Authorize(ctx, id, access.Task(taskID), access.Read); err != nil {
		return nil, err
	}
	return s.store.Comments().ListByTask(ctx, taskID)
}

// Thread returns the task's comments nested under their parents.
func (s *CommentService) Thread(ctx context.Context, id session.Identity, taskID uuid.UUID) ([]*dto.CommentNode, error) {
	comments, err := s.List(ctx, id, taskID)
	if err != nil {
		return nil, err
	}
	return BuildThread(comments), nil
}

// BuildThread nests comments by parent id, keeping creation order at every
// level. A reply whose parent is missing is shown at the top level.
func BuildThread(comments []models.Comment) []*dto.CommentNode {
	nodes := make(map[uuid.UUID]*dto.CommentNode, len(comments))
	for _, c := range comments {
		nodes[c.ID] = &dto.CommentNode{Comment: c, Replies: []*dto.CommentNode{}}
	}
	roots := make([]*dto.CommentNode, 0)
	for _, c := range comments {
		n := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok && parent != n {
				parent.Replies = append(parent.Replies, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}

func (s *CommentService) Create(ctx context.Context, id session.Identity, taskID uuid.UUID, req *dto.CreateCommentRequest) (*models.Comment, error) {
	if _, err := s.evaluator.Authorize(ctx, id, access.Task(taskID), access.Write); err != nil {
		return nil, err
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperr.Invalid("comment content is required").WithDetail("content", "required")
	}
	if req.ParentID != nil {
		parent, err := s.store.Comments().Get(ctx, *req.ParentID)
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Invalid("parent comment does not exist").WithDetail("parent_id", "not found")
		}
		if err != nil {
			return nil, err
		}
		if parent.TaskID != taskID {
			return nil, apperr.Invalid("parent comment belongs to another task").WithDetail("parent_id", "different task")
		}
	}

	c := &models.Comment{
		ID:       uuid.New(),
		TaskID:   taskID,
		AuthorID: id.UserID,
		ParentID: req.ParentID,
		Content:  content,
	}
	if err := s.store.Comments().Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update edits a comment. Only its author may do so.
func (s *CommentService) Update(ctx context.Context, id session.Identity, commentID uuid.UUID, req *dto.UpdateCommentRequest) (*models.Comment, error) {
	if _, err := s.evaluator.Authorize(ctx, id, access.Comment(commentID), access.Read); err != nil {
		return nil, err
	}
	c, err := s.store.Comments().Get(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if c.AuthorID != id.UserID {
		return nil, apperr.Forbidden("only the author can edit this comment")
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperr.Invalid("comment content is required").WithDetail("content", "required")
	}
	c.Content = content
	if err := s.store.Comments().Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a comment and its replies. The author or anyone who can
// manage the project may delete.
func (s *CommentService) Delete(ctx context.Context, id session.Identity, commentID uuid.UUID) error {
	d, err := s.evaluator.Authorize(ctx, id, access.Comment(commentID), access.Read)
	if err != nil {
		return err
	}
	c, err := s.store.Comments().Get(ctx, commentID)
	if err != nil {
		return err
	}
	if c.AuthorID != id.UserID && !d.CanManage {
		return apperr.Forbidden("only the author or a project manager can delete this comment")
	}
	return s.store.Comments().Delete(ctx, commentID)
}
