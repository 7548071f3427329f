package models

import (
	"time"

	"github.com/google/uuid"
)

// Membership roles inside a project.
const (
	ProjectRoleOwner  = "owner"
	ProjectRoleAdmin  = "admin"
	ProjectRoleMember = "member"

	// projectRoleEditor appears in rows written by older clients and is treated as member.
	projectRoleEditor = "editor"
)

// Project is owned by its creator. CreatorID is the single source of ownership;
// the owner does not need a ProjectMember row.
type Project struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Color       string    `gorm:"size:20" json:"color"`
	CreatorID   uuid.UUID `gorm:"type:uuid;not null;index" json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Project) TableName() string {
	return "projects"
}

type ProjectMember struct {
	ProjectID uuid.UUID `gorm:"type:uuid;primaryKey" json:"project_id"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"user_id"`
	Role      string    `gorm:"size:20;not null;default:'member'" json:"role"`
	CreatedAt time.Time `json:"joined_at"`
}

func (ProjectMember) TableName() string {
	return "project_members"
}

// MemberView is a membership joined with the member's profile.
type MemberView struct {
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	IsOwner  bool      `json:"is_owner"`
	JoinedAt time.Time `json:"joined_at"`
}

// ValidProjectRole reports whether role may be assigned to a membership.
func ValidProjectRole(role string) bool {
	switch role {
	case ProjectRoleOwner, ProjectRoleAdmin, ProjectRoleMember:
		return true
	}
	return false
}

// NormalizeProjectRole folds legacy role names onto the current set.
func NormalizeProjectRole(role string) string {
	if role == projectRoleEditor {
		return ProjectRoleMember
	}
	return role
}
