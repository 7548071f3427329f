package dto

import (
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/models"
	"github.com/google/uuid"
)

type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	// DefaultBoard also creates a board with the default columns.
	DefaultBoard bool `json:"default_board"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}

// ProjectResponse is a project plus the caller's effective role on it.
type ProjectResponse struct {
	models.Project
	Role string `json:"role"`
}

type ProjectCreatedResponse struct {
	Project *models.Project `json:"project"`
	Board   *models.Board   `json:"board,omitempty"`
	Columns []models.Column `json:"columns,omitempty"`
}

// AddMemberRequest identifies the new member by id or by email.
type AddMemberRequest struct {
	UserID *uuid.UUID `json:"user_id"`
	Email  string     `json:"email"`
	Role   string     `json:"role"`
}

type UpdateMemberRequest struct {
	Role string `json:"role"`
}

type CreateBoardRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

type UpdateBoardRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
}
