package memory

import (
	"context"
	"sort"
	"time"

	"github.com/ahmetcoskunkizilkaya/taskboard/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/models"
	"github.com/google/uuid"
)

type boards struct{ s *Store }

func (r boards) Get(_ context.Context, id uuid.UUID) (*models.Board, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.data.boards[id]
	if !ok {
		return nil, apperr.NotFound("board not found")
	}
	return &b, nil
}

func (r boards) ListByProject(_ context.Context, projectID uuid.UUID) ([]models.Board, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Board, 0)
	for _, b := range r.s.data.boards {
		if b.ProjectID == projectID {
			out = append(out, b)
		}
	}
	sortByCreated(out, func(b models.Board) time.Time { return b.CreatedAt })
	return out, nil
}

func (r boards) Create(_ context.Context, b *models.Board) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("boards.create"); err != nil {
		return err
	}
	if _, ok := r.s.data.projects[b.ProjectID]; !ok {
		return apperr.Invalid("board references a record that does not exist")
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.CreatedAt = r.s.tick()
	b.UpdatedAt = b.CreatedAt
	r.s.data.boards[b.ID] = *b
	return nil
}

func (r boards) Update(_ context.Context, b *models.Board) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.data.boards[b.ID]
	if !ok {
		return apperr.NotFound("board not found")
	}
	existing.Name = b.Name
	existing.Description = b.Description
	existing.Color = b.Color
	existing.UpdatedAt = r.s.tick()
	r.s.data.boards[b.ID] = existing
	*b = existing
	return nil
}

func (r boards) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.boards[id]; !ok {
		return apperr.NotFound("board not found")
	}
	r.s.deleteBoard(id)
	return nil
}

type columns struct{ s *Store }

func (r columns) Get(_ context.Context, id uuid.UUID) (*models.Column, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.data.columns[id]
	if !ok {
		return nil, apperr.NotFound("column not found")
	}
	return &c, nil
}

func (r columns) ListByBoard(_ context.Context, boardID uuid.UUID) ([]models.Column, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.columnsOf(boardID), nil
}

func (s *Store) columnsOf(boardID uuid.UUID) []models.Column {
	out := make([]models.Column, 0)
	for _, c := range s.data.columns {
		if c.BoardID == boardID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r columns) NextPosition(_ context.Context, boardID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	next := 0
	for _, c := range r.s.data.columns {
		if c.BoardID == boardID && c.Position >= next {
			next = c.Position + 1
		}
	}
	return next, nil
}

func (r columns) Create(_ context.Context, c *models.Column) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("columns.create"); err != nil {
		return err
	}
	if _, ok := r.s.data.boards[c.BoardID]; !ok {
		return apperr.Invalid("column references a record that does not exist")
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = r.s.tick()
	c.UpdatedAt = c.CreatedAt
	r.s.data.columns[c.ID] = *c
	return nil
}

func (r columns) Update(_ context.Context, c *models.Column) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.data.columns[c.ID]
	if !ok {
		return apperr.NotFound("column not found")
	}
	existing.Name = c.Name
	existing.Position = c.Position
	existing.Color = c.Color
	existing.UpdatedAt = r.s.tick()
	r.s.data.columns[c.ID] = existing
	*c = existing
	return nil
}

func (r columns) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.columns[id]; !ok {
		return apperr.NotFound("column not found")
	}
	r.s.deleteColumn(id)
	return nil
}

type tasks struct{ s *Store }

func (r tasks) Get(_ context.Context, id uuid.UUID) (*models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.data.tasks[id]
	if !ok {
		return nil, apperr.NotFound("task not found")
	}
	return &t, nil
}

func (s *Store) tasksOf(columnID uuid.UUID) []models.Task {
	out := make([]models.Task, 0)
	for _, t := range s.data.tasks {
		if t.ColumnID == columnID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (r tasks) ListByColumn(_ context.Context, columnID uuid.UUID) ([]models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.tasksOf(columnID), nil
}

func (r tasks) ListByBoard(_ context.Context, boardID uuid.UUID) ([]models.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Task, 0)
	for _, c := range r.s.columnsOf(boardID) {
		out = append(out, r.s.tasksOf(c.ID)...)
	}
	return out, nil
}

func (r tasks) NextPosition(_ context.Context, columnID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	next := 0
	for _, t := range r.s.data.tasks {
		if t.ColumnID == columnID && t.Position >= next {
			next = t.Position + 1
		}
	}
	return next, nil
}

func (r tasks) Create(_ context.Context, t *models.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.columns[t.ColumnID]; !ok {
		return apperr.Invalid("task references a record that does not exist")
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = r.s.tick()
	t.UpdatedAt = t.CreatedAt
	r.s.data.tasks[t.ID] = *t
	return nil
}

func (r tasks) Update(_ context.Context, t *models.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.data.tasks[t.ID]
	if !ok {
		return apperr.NotFound("task not found")
	}
	if _, ok := r.s.data.columns[t.ColumnID]; !ok {
		return apperr.Invalid("task references a record that does not exist")
	}
	t.CreatorID = existing.CreatorID
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = r.s.tick()
	r.s.data.tasks[t.ID] = *t
	return nil
}

func (r tasks) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.tasks[id]; !ok {
		return apperr.NotFound("task not found")
	}
	r.s.deleteTask(id)
	return nil
}

type comments struct{ s *Store }

func (r comments) Get(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.data.comments[id]
	if !ok {
		return nil, apperr.NotFound("comment not found")
	}
	return &c, nil
}

func (r comments) ListByTask(_ context.Context, taskID uuid.UUID) ([]models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Comment, 0)
	for _, c := range r.s.data.comments {
		if c.TaskID == taskID {
			out = append(out, c)
		}
	}
	sortByCreated(out, func(c models.Comment) time.Time { return c.CreatedAt })
	return out, nil
}

func (r comments) Create(_ context.Context, c *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.tasks[c.TaskID]; !ok {
		return apperr.Invalid("comment references a record that does not exist")
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = r.s.tick()
	c.UpdatedAt = c.CreatedAt
	r.s.data.comments[c.ID] = *c
	return nil
}

func (r comments) Update(_ context.Context, c *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.data.comments[c.ID]
	if !ok {
		return apperr.NotFound("comment not found")
	}
	existing.Content = c.Content
	existing.UpdatedAt = r.s.tick()
	r.s.data.comments[c.ID] = existing
	*c = existing
	return nil
}

func (r comments) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.comments[id]; !ok {
		return apperr.NotFound("comment not found")
	}
	r.s.deleteComment(id)
	return nil
}
