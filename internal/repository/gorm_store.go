package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/taskboard/internal/access"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/apperr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes the store maps onto client errors.
const (
	pgCheckViolation   = "23514"
	pgNotNullViolation = "23502"
)

// GormStore is the Postgres-backed Store. Every call runs under its own
// timeout so a stuck connection surfaces as an error instead of hanging.
type GormStore struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewGormStore(db *gorm.DB, timeout time.Duration) *GormStore {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &GormStore{db: db, timeout: timeout}
}

var _ Store = (*GormStore)(nil)

// conn returns a handle bound to a bounded context. Callers must defer cancel.
func (s *GormStore) conn(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return s.db.WithContext(ctx), cancel
}

func (s *GormStore) Users() UserRepository       { return gormUsers{s} }
func (s *GormStore) Sessions() SessionRepository { return gormSessions{s} }
func (s *GormStore) Projects() ProjectRepository { return gormProjects{s} }
func (s *GormStore) Members() MemberRepository   { return gormMembers{s} }
func (s *GormStore) Boards() BoardRepository     { return gormBoards{s} }
func (s *GormStore) Columns() ColumnRepository   { return gormColumns{s} }
func (s *GormStore) Tasks() TaskRepository       { return gormTasks{s} }
func (s *GormStore) Comments() CommentRepository { return gormComments{s} }

func (s *GormStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	ctx, cancel := context.WithTimeout(ctx, 2*s.timeout)
	defer cancel()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, timeout: s.timeout})
	})
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// chainQueries resolve a resource to the project at the top of its
// containment chain. Inner joins make any dangling link yield no row.
var chainQueries = map[access.Kind]string{
	access.KindProject: `SELECT p.id AS id, p.creator_id AS creator_id
		FROM projects p WHERE p.id = ?`,
	access.KindBoard: `SELECT p.id AS id, p.creator_id AS creator_id
		FROM boards b
		JOIN projects p ON p.id = b.project_id
		WHERE b.id = ?`,
	access.KindColumn: `SELECT p.id AS id, p.creator_id AS creator_id
		FROM "columns" c
		JOIN boards b ON b.id = c.board_id
		JOIN projects p ON p.id = b.project_id
		WHERE c.id = ?`,
	access.KindTask: `SELECT p.id AS id, p.creator_id AS creator_id
		FROM tasks t
		JOIN "columns" c ON c.id = t.column_id
		JOIN boards b ON b.id = c.board_id
		JOIN projects p ON p.id = b.project_id
		WHERE t.id = ?`,
	access.KindComment: `SELECT p.id AS id, p.creator_id AS creator_id
		FROM comments cm
		JOIN tasks t ON t.id = cm.task_id
		JOIN "columns" c ON c.id = t.column_id
		JOIN boards b ON b.id = c.board_id
		JOIN projects p ON p.id = b.project_id
		WHERE cm.id = ?`,
}

func (s *GormStore) ProjectFor(ctx context.Context, res access.Resource) (access.ProjectRef, error) {
	query, ok := chainQueries[res.Kind]
	if !ok {
		return access.ProjectRef{}, fmt.Errorf("unknown resource kind %q", res.Kind)
	}
	db, cancel := s.conn(ctx)
	defer cancel()

	var row struct {
		ID        uuid.UUID
		CreatorID uuid.UUID
	}
	result := db.Raw(query, res.ID).Scan(&row)
	if result.Error != nil {
		return access.ProjectRef{}, translate(result.Error, string(res.Kind))
	}
	if result.RowsAffected == 0 {
		return access.ProjectRef{}, apperr.NotFound("%s not found", res.Kind)
	}
	return access.ProjectRef{ID: row.ID, CreatorID: row.CreatorID}, nil
}

func (s *GormStore) MemberRole(ctx context.Context, projectID, userID uuid.UUID) (string, error) {
	m, err := s.Members().Get(ctx, projectID, userID)
	if err != nil {
		return "", err
	}
	return m.Role, nil
}

// translate maps driver errors onto the apperr taxonomy.
func translate(err error, what string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound("%s not found", what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Conflict("%s already exists", what)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperr.Invalid("%s references a record that does not exist", what)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCheckViolation, pgNotNullViolation:
			return apperr.Invalid("%s is invalid", what).WithDetail(pgErr.ColumnName, pgErr.Message)
		}
	}
	return fmt.Errorf("%s: %w", what, err)
}

// affected turns a zero-row write into NotFound.
func affected(result *gorm.DB, what string) error {
	if result.Error != nil {
		return translate(result.Error, what)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("%s not found", what)
	}
	return nil
}
