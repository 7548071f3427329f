// Package access decides what a caller may do with a project and everything
// contained in it (boards, columns, tasks, comments).
//
// Access is resolved by walking the containment chain up to the project:
//
//	comment -> task -> column -> board -> project
//
// A caller may read a project when they created it, hold a membership row, or
// carry the global admin role. Ownership comes from projects.creator_id only;
// the owner does not need a membership row.
package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/taskboard/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/models"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/session"
	"github.com/google/uuid"
)

type Kind string

const (
	KindProject Kind = "project"
	KindBoard   Kind = "board"
	KindColumn  Kind = "column"
	KindTask    Kind = "task"
	KindComment Kind = "comment"
)

// Resource identifies the target of a request.
type Resource struct {
	Kind Kind
	ID   uuid.UUID
}

func Project(id uuid.UUID) Resource { return Resource{Kind: KindProject, ID: id} }
func Board(id uuid.UUID) Resource   { return Resource{Kind: KindBoard, ID: id} }
func Column(id uuid.UUID) Resource  { return Resource{Kind: KindColumn, ID: id} }
func Task(id uuid.UUID) Resource    { return Resource{Kind: KindTask, ID: id} }
func Comment(id uuid.UUID) Resource { return Resource{Kind: KindComment, ID: id} }

func (r Resource) String() string { return fmt.Sprintf("%s %s", r.Kind, r.ID) }

// Action is what the caller wants to do.
type Action int

const (
	// Read the resource.
	Read Action = iota
	// Write creates or changes boards, columns, tasks and comments.
	Write
	// Manage changes project settings and memberships.
	Manage
	// Own is reserved for the project owner: deleting the project and granting ownership.
	Own
)

func (a Action) String() string {
	switch a {
	case Read:
		return "read"
	case Write:
		return "write"
	case Manage:
		return "manage"
	case Own:
		return "own"
	}
	return "unknown"
}

// Effective roles, strongest first.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleNone   = "none"
)

// ProjectRef is the root of a containment chain.
type ProjectRef struct {
	ID        uuid.UUID
	CreatorID uuid.UUID
}

// Lookup is the part of the store the evaluator needs. Both methods return
// an error wrapping apperr.ErrNotFound when the row (or any link of the chain)
// does not exist.
type Lookup interface {
	ProjectFor(ctx context.Context, res Resource) (ProjectRef, error)
	MemberRole(ctx context.Context, projectID, userID uuid.UUID) (string, error)
}

// Decision is the caller's standing on one project.
type Decision struct {
	ProjectID   uuid.UUID `json:"project_id"`
	Role        string    `json:"role"`
	GlobalAdmin bool      `json:"global_admin"`
	IsOwner     bool      `json:"is_owner"`
	CanRead     bool      `json:"can_read"`
	CanWrite    bool      `json:"can_write"`
	CanManage   bool      `json:"can_manage"`
	CanOwn      bool      `json:"can_own"`
}

// Allows reports whether the decision permits action.
func (d Decision) Allows(action Action) bool {
	switch action {
	case Read:
		return d.CanRead
	case Write:
		return d.CanWrite
	case Manage:
		return d.CanManage
	case Own:
		return d.CanOwn
	}
	return false
}

type Evaluator struct {
	lookup Lookup
}

func NewEvaluator(lookup Lookup) *Evaluator {
	return &Evaluator{lookup: lookup}
}

// Evaluate resolves res to its project and computes the caller's decision.
func (e *Evaluator) Evaluate(ctx context.Context, id session.Identity, res Resource) (Decision, error) {
	ref, err := e.lookup.ProjectFor(ctx, res)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Decision{}, apperr.NotFound("%s not found", res.Kind)
		}
		return Decision{}, fmt.Errorf("resolve %s: %w", res, err)
	}

	role := RoleNone
	if ref.CreatorID == id.UserID {
		role = RoleOwner
	} else {
		memberRole, err := e.lookup.MemberRole(ctx, ref.ID, id.UserID)
		switch {
		case err == nil:
			role = effectiveMemberRole(memberRole)
		case errors.Is(err, apperr.ErrNotFound):
		default:
			return Decision{}, fmt.Errorf("load membership: %w", err)
		}
	}
	return decide(ref.ID, role, id.Role == models.RoleAdmin), nil
}

// Authorize returns nil when the caller may perform action on res,
// apperr.ErrForbidden when the resource exists but the caller lacks rights,
// and apperr.ErrNotFound when the resource does not exist.
func (e *Evaluator) Authorize(ctx context.Context, id session.Identity, res Resource, action Action) (Decision, error) {
	d, err := e.Evaluate(ctx, id, res)
	if err != nil {
		return Decision{}, err
	}
	if !d.Allows(action) {
		return d, apperr.Forbidden("you do not have %s access to this %s", action, res.Kind)
	}
	return d, nil
}

// effectiveMemberRole maps a stored membership role onto an effective role.
// A membership row saying "owner" grants admin rights: ownership itself is
// only ever derived from the creator.
func effectiveMemberRole(stored string) string {
	switch models.NormalizeProjectRole(stored) {
	case models.ProjectRoleOwner, models.ProjectRoleAdmin:
		return RoleAdmin
	case models.ProjectRoleMember:
		return RoleMember
	}
	return RoleNone
}

func decide(projectID uuid.UUID, role string, globalAdmin bool) Decision {
	d := Decision{
		ProjectID:   projectID,
		Role:        role,
		GlobalAdmin: globalAdmin,
		IsOwner:     role == RoleOwner,
	}
	d.CanRead = role != RoleNone || globalAdmin
	d.CanWrite = d.CanRead
	d.CanManage = role == RoleOwner || role == RoleAdmin || globalAdmin
	d.CanOwn = role == RoleOwner || globalAdmin
	return d
}
