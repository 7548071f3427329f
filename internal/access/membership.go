package access

import (
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/taskboard/internal/models"
	"github.com/google/uuid"
)

// ValidateRole checks a requested membership role.
func ValidateRole(role string) error {
	if !models.ValidProjectRole(role) {
		return apperr.Invalid("invalid role").
			WithDetail("role", "must be one of owner, admin, member")
	}
	return nil
}

// CheckGrant decides whether the caller (with decision d) may give role to
// someone. Only callers with Own may hand out the owner role.
func CheckGrant(d Decision, role string) error {
	if err := ValidateRole(role); err != nil {
		return err
	}
	if !d.CanManage {
		return apperr.Forbidden("you cannot manage members of this project")
	}
	if role == models.ProjectRoleOwner && !d.CanOwn {
		return apperr.Forbidden("only the project owner can grant the owner role")
	}
	return nil
}

// CheckRoleChange guards a role update of target on project.
func CheckRoleChange(d Decision, project ProjectRef, target uuid.UUID, role string) error {
	if err := CheckGrant(d, role); err != nil {
		return err
	}
	if target == project.CreatorID {
		return apperr.InvalidOperation("the project owner's role cannot be changed")
	}
	return nil
}

// CheckRemoval guards removal of target from project by caller. Members may
// always remove themselves; removing anyone else needs Manage. The owner can
// never be removed.
func CheckRemoval(d Decision, project ProjectRef, caller, target uuid.UUID) error {
	if target == project.CreatorID {
		if !d.CanRead {
			return apperr.Forbidden("you cannot manage members of this project")
		}
		return apperr.InvalidOperation("the project owner cannot be removed")
	}
	if caller == target && d.CanRead {
		return nil
	}
	if !d.CanManage {
		return apperr.Forbidden("you cannot manage members of this project")
	}
	return nil
}
