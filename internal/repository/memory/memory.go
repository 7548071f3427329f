// Package memory is an in-process repository.Store used by tests. It mirrors
// the Postgres schema's behaviour that callers rely on: unique keys, ON DELETE
// CASCADE, list ordering, and rollback of failed transactions.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/taskboard/internal/access"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/models"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/repository"
	"github.com/google/uuid"
)

type memberKey struct{ project, user uuid.UUID }

type tables struct {
	users    map[uuid.UUID]models.User
	sessions map[uuid.UUID]models.Session
	projects map[uuid.UUID]models.Project
	members  map[memberKey]models.ProjectMember
	boards   map[uuid.UUID]models.Board
	columns  map[uuid.UUID]models.Column
	tasks    map[uuid.UUID]models.Task
	comments map[uuid.UUID]models.Comment
}

func newTables() *tables {
	return &tables{
		users:    map[uuid.UUID]models.User{},
		sessions: map[uuid.UUID]models.Session{},
		projects: map[uuid.UUID]models.Project{},
		members:  map[memberKey]models.ProjectMember{},
		boards:   map[uuid.UUID]models.Board{},
		columns:  map[uuid.UUID]models.Column{},
		tasks:    map[uuid.UUID]models.Task{},
		comments: map[uuid.UUID]models.Comment{},
	}
}

func (t *tables) clone() *tables {
	c := newTables()
	for k, v := range t.users {
		c.users[k] = v
	}
	for k, v := range t.sessions {
		c.sessions[k] = v
	}
	for k, v := range t.projects {
		c.projects[k] = v
	}
	for k, v := range t.members {
		c.members[k] = v
	}
	for k, v := range t.boards {
		c.boards[k] = v
	}
	for k, v := range t.columns {
		c.columns[k] = v
	}
	for k, v := range t.tasks {
		c.tasks[k] = v
	}
	for k, v := range t.comments {
		c.comments[k] = v
	}
	return c
}

type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data *tables
	// clock is advanced by a microsecond per write so creation order is stable.
	clock time.Time
	// FailOn makes the named operation (e.g. "columns.create") fail once.
	FailOn map[string]error
}

func New() *Store {
	return &Store{
		data:   newTables(),
		clock:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		FailOn: map[string]error{},
	}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Microsecond)
	return s.clock
}

func (s *Store) fail(op string) error {
	if err, ok := s.FailOn[op]; ok {
		delete(s.FailOn, op)
		return err
	}
	return nil
}

func (s *Store) Users() repository.UserRepository       { return users{s} }
func (s *Store) Sessions() repository.SessionRepository { return sessions{s} }
func (s *Store) Projects() repository.ProjectRepository { return projects{s} }
func (s *Store) Members() repository.MemberRepository   { return members{s} }
func (s *Store) Boards() repository.BoardRepository     { return boards{s} }
func (s *Store) Columns() repository.ColumnRepository   { return columns{s} }
func (s *Store) Tasks() repository.TaskRepository       { return tasks{s} }
func (s *Store) Comments() repository.CommentRepository { return comments{s} }

// WithTx snapshots every table and restores the snapshot if fn fails.
// Transactions are serialized with each other, but writes made outside a
// transaction are not isolated from one: a write that lands while fn runs is
// discarded along with fn's own writes when fn fails. Tests that roll back
// must not write concurrently.
func (s *Store) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.data = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) ProjectFor(_ context.Context, res access.Resource) (access.ProjectRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("project_for"); err != nil {
		return access.ProjectRef{}, err
	}

	id := res.ID
	switch res.Kind {
	case access.KindComment:
		c, ok := s.data.comments[id]
		if !ok {
			return access.ProjectRef{}, apperr.NotFound("comment not found")
		}
		id = c.TaskID
		fallthrough
	case access.KindTask:
		t, ok := s.data.tasks[id]
		if !ok {
			return access.ProjectRef{}, apperr.NotFound("task not found")
		}
		id = t.ColumnID
		fallthrough
	case access.KindColumn:
		c, ok := s.data.columns[id]
		if !ok {
			return access.ProjectRef{}, apperr.NotFound("column not found")
		}
		id = c.BoardID
		fallthrough
	case access.KindBoard:
		b, ok := s.data.boards[id]
		if !ok {
			return access.ProjectRef{}, apperr.NotFound("board not found")
		}
		id = b.ProjectID
		fallthrough
	case access.KindProject:
		p, ok := s.data.projects[id]
		if !ok {
			return access.ProjectRef{}, apperr.NotFound("project not found")
		}
		return access.ProjectRef{ID: p.ID, CreatorID: p.CreatorID}, nil
	}
	return access.ProjectRef{}, apperr.NotFound("%s not found", res.Kind)
}

func (s *Store) MemberRole(_ context.Context, projectID, userID uuid.UUID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.data.members[memberKey{projectID, userID}]
	if !ok {
		return "", apperr.NotFound("membership not found")
	}
	return m.Role, nil
}

// Detach removes a board without cascading, leaving its columns dangling.
// Tests use it to simulate broken foreign keys.
func (s *Store) Detach(boardID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data.boards, boardID)
}

// cascade helpers; callers hold s.mu.

func (s *Store) deleteProject(id uuid.UUID) {
	for bid, b := range s.data.boards {
		if b.ProjectID == id {
			s.deleteBoard(bid)
		}
	}
	for k := range s.data.members {
		if k.project == id {
			delete(s.data.members, k)
		}
	}
	delete(s.data.projects, id)
}

func (s *Store) deleteBoard(id uuid.UUID) {
	for cid, c := range s.data.columns {
		if c.BoardID == id {
			s.deleteColumn(cid)
		}
	}
	delete(s.data.boards, id)
}

func (s *Store) deleteColumn(id uuid.UUID) {
	for tid, t := range s.data.tasks {
		if t.ColumnID == id {
			s.deleteTask(tid)
		}
	}
	delete(s.data.columns, id)
}

func (s *Store) deleteTask(id uuid.UUID) {
	for cid, c := range s.data.comments {
		if c.TaskID == id {
			delete(s.data.comments, cid)
		}
	}
	delete(s.data.tasks, id)
}

func (s *Store) deleteComment(id uuid.UUID) {
	for cid, c := range s.data.comments {
		if c.ParentID != nil && *c.ParentID == id {
			s.deleteComment(cid)
		}
	}
	delete(s.data.comments, id)
}

func sortByCreated[T any](items []T, created func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool { return created(items[i]).Before(created(items[j])) })
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
