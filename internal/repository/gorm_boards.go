package repository

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/taskboard/internal/models"
	"github.com/google/uuid"
)

type gormBoards struct{ s *GormStore }

func (r gormBoards) Get(ctx context.Context, id uuid.UUID) (*models.Board, error) {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	var b models.Board
	if err := db.First(&b, "id = ?", id).Error; err != nil {
		return nil, translate(err, "board")
	}
	return &b, nil
}

func (r gormBoards) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Board, error) {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	boards := make([]models.Board, 0)
	if err := db.Where("project_id = ?", projectID).Order("created_at ASC").Find(&boards).Error; err != nil {
		return nil, translate(err, "boards")
	}
	return boards, nil
}

func (r gormBoards) Create(ctx context.Context, b *models.Board) error {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return translate(db.Create(b).Error, "board")
}

func (r gormBoards) Update(ctx context.Context, b *models.Board) error {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	b.UpdatedAt = time.Now().UTC()
	result := db.Model(&models.Board{}).Where("id = ?", b.ID).Updates(map[string]any{
		"name":        b.Name,
		"description": b.Description,
		"color":       b.Color,
		"updated_at":  b.UpdatedAt,
	})
	return affected(result, "board")
}

func (r gormBoards) Delete(ctx context.Context, id uuid.UUID) error {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	return affected(db.Delete(&models.Board{}, "id = ?", id), "board")
}

type gormColumns struct{ s *GormStore }

func (r gormColumns) Get(ctx context.Context, id uuid.UUID) (*models.Column, error) {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	var c models.Column
	if err := db.First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err, "column")
	}
	return &c, nil
}

func (r gormColumns) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]models.Column, error) {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	columns := make([]models.Column, 0)
	err := db.Where("board_id = ?", boardID).Order("position ASC, created_at ASC").Find(&columns).Error
	if err != nil {
		return nil, translate(err, "columns")
	}
	return columns, nil
}

func (r gormColumns) NextPosition(ctx context.Context, boardID uuid.UUID) (int, error) {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	var next int
	err := db.Model(&models.Column{}).
		Where("board_id = ?", boardID).
		Select("COALESCE(MAX(position) + 1, 0)").
		Scan(&next).Error
	return next, translate(err, "columns")
}

func (r gormColumns) Create(ctx context.Context, c *models.Column) error {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return translate(db.Create(c).Error, "column")
}

func (r gormColumns) Update(ctx context.Context, c *models.Column) error {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	c.UpdatedAt = time.Now().UTC()
	result := db.Model(&models.Column{}).Where("id = ?", c.ID).Updates(map[string]any{
		"name":       c.Name,
		"position":   c.Position,
		"color":      c.Color,
		"updated_at": c.UpdatedAt,
	})
	return affected(result, "column")
}

func (r gormColumns) Delete(ctx context.Context, id uuid.UUID) error {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	return affected(db.Delete(&models.Column{}, "id = ?", id), "column")
}

type gormTasks struct{ s *GormStore }

func (r gormTasks) Get(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	var t models.Task
	if err := db.First(&t, "id = ?", id).Error; err != nil {
		return nil, translate(err, "task")
	}
	return &t, nil
}

func (r gormTasks) ListByColumn(ctx context.Context, columnID uuid.UUID) ([]models.Task, error) {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	tasks := make([]models.Task, 0)
	err := db.Where("column_id = ?", columnID).Order("position ASC, created_at ASC").Find(&tasks).Error
	if err != nil {
		return nil, translate(err, "tasks")
	}
	return tasks, nil
}

func (r gormTasks) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]models.Task, error) {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	tasks := make([]models.Task, 0)
	err := db.Model(&models.Task{}).
		Joins(`JOIN "columns" c ON c.id = tasks.column_id`).
		Where("c.board_id = ?", boardID).
		Order("c.position ASC, tasks.position ASC, tasks.created_at ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, translate(err, "tasks")
	}
	return tasks, nil
}

func (r gormTasks) NextPosition(ctx context.Context, columnID uuid.UUID) (int, error) {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	var next int
	err := db.Model(&models.Task{}).
		Where("column_id = ?", columnID).
		Select("COALESCE(MAX(position) + 1, 0)").
		Scan(&next).Error
	return next, translate(err, "tasks")
}

func (r gormTasks) Create(ctx context.Context, t *models.Task) error {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return translate(db.Create(t).Error, "task")
}

func (r gormTasks) Update(ctx context.Context, t *models.Task) error {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	t.UpdatedAt = time.Now().UTC()
	result := db.Model(&models.Task{}).Where("id = ?", t.ID).Updates(map[string]any{
		"column_id":       t.ColumnID,
		"title":           t.Title,
		"description":     t.Description,
		"assignee_id":     t.AssigneeID,
		"priority":        t.Priority,
		"status":          t.Status,
		"position":        t.Position,
		"deadline":        t.Deadline,
		"estimated_hours": t.EstimatedHours,
		"actual_hours":    t.ActualHours,
		"updated_at":      t.UpdatedAt,
	})
	return affected(result, "task")
}

func (r gormTasks) Delete(ctx context.Context, id uuid.UUID) error {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	return affected(db.Delete(&models.Task{}, "id = ?", id), "task")
}

type gormComments struct{ s *GormStore }

func (r gormComments) Get(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	var c models.Comment
	if err := db.First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err, "comment")
	}
	return &c, nil
}

func (r gormComments) ListByTask(ctx context.Context, taskID uuid.UUID) ([]models.Comment, error) {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	comments := make([]models.Comment, 0)
	if err := db.Where("task_id = ?", taskID).Order("created_at ASC, id ASC").Find(&comments).Error; err != nil {
		return nil, translate(err, "comments")
	}
	return comments, nil
}

func (r gormComments) Create(ctx context.Context, c *models.Comment) error {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return translate(db.Create(c).Error, "comment")
}

func (r gormComments) Update(ctx context.Context, c *models.Comment) error {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	c.UpdatedAt = time.Now().UTC()
	result := db.Model(&models.Comment{}).Where("id = ?", c.ID).Updates(map[string]any{
		"content":    c.Content,
		"updated_at": c.UpdatedAt,
	})
	return affected(result, "comment")
}

func (r gormComments) Delete(ctx context.Context, id uuid.UUID) error {
	db, cancel := r.s.conn(ctx)
	defer cancel()
	return affected(db.Delete(&models.Comment{}, "id = ?", id), "comment")
}
