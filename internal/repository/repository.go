// Package repository holds the persistence contracts for the board hierarchy.
//
// Repositories never authorize: callers must have consulted the access
// evaluator first. Missing rows are reported as apperr.ErrNotFound and
// unique-key clashes as apperr.ErrConflict. List methods always return a
// slice (possibly empty), never nil-or-wrapper shapes.
package repository

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/taskboard/internal/access"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/models"
	"github.com/google/uuid"
)

type Store interface {
	access.Lookup

	Users() UserRepository
	Sessions() SessionRepository
	Projects() ProjectRepository
	Members() MemberRepository
	Boards() BoardRepository
	Columns() ColumnRepository
	Tasks() TaskRepository
	Comments() CommentRepository

	// WithTx runs fn against a transactional view of the store. Any error
	// returned by fn rolls back every write made through tx.
	WithTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}

type UserRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
}

type SessionRepository interface {
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error)
	Create(ctx context.Context, s *models.Session) error
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	// DeleteByUser removes every session of userID except keepHash (may be empty).
	DeleteByUser(ctx context.Context, userID uuid.UUID, keepHash string) (int64, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type ProjectRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Project, error)
	// ListForUser returns projects created by userID or where userID is a member.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Project, error)
	ListAll(ctx context.Context) ([]models.Project, error)
	Create(ctx context.Context, p *models.Project) error
	Update(ctx context.Context, p *models.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type MemberRepository interface {
	Get(ctx context.Context, projectID, userID uuid.UUID) (*models.ProjectMember, error)
	// List returns memberships joined with user profiles, oldest first.
	List(ctx context.Context, projectID uuid.UUID) ([]models.MemberView, error)
	Add(ctx context.Context, m *models.ProjectMember) error
	UpdateRole(ctx context.Context, projectID, userID uuid.UUID, role string) error
	Remove(ctx context.Context, projectID, userID uuid.UUID) error
}

type BoardRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Board, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Board, error)
	Create(ctx context.Context, b *models.Board) error
	Update(ctx context.Context, b *models.Board) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type ColumnRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Column, error)
	// ListByBoard orders by position ascending.
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]models.Column, error)
	// NextPosition is one past the highest position on the board (0 when empty).
	NextPosition(ctx context.Context, boardID uuid.UUID) (int, error)
	Create(ctx context.Context, c *models.Column) error
	Update(ctx context.Context, c *models.Column) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type TaskRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Task, error)
	// ListByColumn orders by position ascending.
	ListByColumn(ctx context.Context, columnID uuid.UUID) ([]models.Task, error)
	// ListByBoard orders by column position, then task position.
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]models.Task, error)
	NextPosition(ctx context.Context, columnID uuid.UUID) (int, error)
	Create(ctx context.Context, t *models.Task) error
	Update(ctx context.Context, t *models.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CommentRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	// ListByTask orders by creation time ascending. Threading is left to the caller.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]models.Comment, error)
	Create(ctx context.Context, c *models.Comment) error
	Update(ctx context.Context, c *models.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
}
