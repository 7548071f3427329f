package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/taskboard/internal/models"
	"github.com/google/uuid"
)

type CreateTaskRequest struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	AssigneeID     *uuid.UUID `json:"assignee_id"`
	Priority       string     `json:"priority"`
	Status         string     `json:"status"`
	Position       *int       `json:"position"`
	Deadline       *time.Time `json:"deadline"`
	EstimatedHours *float64   `json:"estimated_hours"`
	ActualHours    *float64   `json:"actual_hours"`
}

// UpdateTaskRequest changes only the fields that are present. Unassign
// clears the assignee.
type UpdateTaskRequest struct {
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	AssigneeID     *uuid.UUID `json:"assignee_id"`
	Unassign       bool       `json:"unassign"`
	Priority       *string    `json:"priority"`
	Status         *string    `json:"status"`
	Position       *int       `json:"position"`
	Deadline       *time.Time `json:"deadline"`
	EstimatedHours *float64   `json:"estimated_hours"`
	ActualHours    *float64   `json:"actual_hours"`
}

type MoveTaskRequest struct {
	ColumnID uuid.UUID `json:"column_id"`
	Position *int      `json:"position"`
}

type CreateCommentRequest struct {
	Content  string     `json:"content"`
	ParentID *uuid.UUID `json:"parent_id"`
}

type UpdateCommentRequest struct {
	Content string `json:"content"`
}

// CommentNode is a comment with its replies, used for threaded listings.
type CommentNode struct {
	models.Comment
	Replies []*CommentNode `json:"replies"`
}
