package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

const (
	TaskTodo       = "todo"
	TaskInProgress = "in_progress"
	TaskReview     = "review"
	TaskDone       = "done"
)

type Task struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ColumnID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"column_id"`
	Title          string     `gorm:"size:500;not null" json:"title"`
	Description    string     `gorm:"type:text" json:"description"`
	AssigneeID     *uuid.UUID `gorm:"type:uuid;index" json:"assignee_id"`
	CreatorID      uuid.UUID  `gorm:"type:uuid;not null" json:"creator_id"`
	Priority       string     `gorm:"size:20;not null;default:'medium'" json:"priority"`
	Status         string     `gorm:"size:20;not null;default:'todo'" json:"status"`
	Position       int        `gorm:"not null;default:0" json:"position"`
	Deadline       *time.Time `json:"deadline"`
	EstimatedHours *float64   `json:"estimated_hours"`
	ActualHours    *float64   `json:"actual_hours"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

func ValidTaskStatus(s string) bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskReview, TaskDone:
		return true
	}
	return false
}
