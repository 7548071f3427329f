package access

import (
	"errors"
	"testing"

	"github.com/ahmetcoskunkizilkaya/taskboard/internal/apperr"
	"github.com/google/uuid"
)

func TestValidateRole(t *testing.T) {
	t.Parallel()
	for _, role := range []string{"owner", "admin", "member"} {
		if err := ValidateRole(role); err != nil {
			t.Errorf("ValidateRole(%q) error: %v", role, err)
		}
	}
	for _, role := range []string{"", "editor", "viewer", "OWNER", "superuser"} {
		if err := ValidateRole(role); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Errorf("ValidateRole(%q) error = %v, want ErrInvalidInput", role, err)
		}
	}
}

func TestCheckRemoval(t *testing.T) {
	t.Parallel()
	creator := uuid.New()
	project := ProjectRef{ID: uuid.New(), CreatorID: creator}
	member := uuid.New()
	other := uuid.New()

	ownerD := decide(project.ID, RoleOwner, false)
	adminD := decide(project.ID, RoleAdmin, false)
	memberD := decide(project.ID, RoleMember, false)
	noneD := decide(project.ID, RoleNone, false)

	tests := []struct {
		name           string
		d              Decision
		caller, target uuid.UUID
		want           error
	}{
		{"owner removes self", ownerD, creator, creator, apperr.ErrInvalidOperation},
		{"admin removes owner", adminD, member, creator, apperr.ErrInvalidOperation},
		{"member removes owner", memberD, member, creator, apperr.ErrInvalidOperation},
		{"stranger removes owner", noneD, other, creator, apperr.ErrForbidden},
		{"owner removes member", ownerD, creator, member, nil},
		{"admin removes member", adminD, other, member, nil},
		{"member leaves", memberD, member, member, nil},
		{"member removes other", memberD, member, other, apperr.ErrForbidden},
		{"stranger removes member", noneD, other, member, apperr.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRemoval(tt.d, project, tt.caller, tt.target)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("CheckRemoval() error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("CheckRemoval() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCheckRoleChange(t *testing.T) {
	t.Parallel()
	creator := uuid.New()
	project := ProjectRef{ID: uuid.New(), CreatorID: creator}
	target := uuid.New()

	tests := []struct {
		name   string
		d      Decision
		target uuid.UUID
		role   string
		want   error
	}{
		{"owner promotes to admin", decide(project.ID, RoleOwner, false), target, "admin", nil},
		{"owner grants owner", decide(project.ID, RoleOwner, false), target, "owner", nil},
		{"global admin grants owner", decide(project.ID, RoleNone, true), target, "owner", nil},
		{"admin grants owner", decide(project.ID, RoleAdmin, false), target, "owner", apperr.ErrForbidden},
		{"admin demotes", decide(project.ID, RoleAdmin, false), target, "member", nil},
		{"member promotes", decide(project.ID, RoleMember, false), target, "admin", apperr.ErrForbidden},
		{"bad role", decide(project.ID, RoleOwner, false), target, "viewer", apperr.ErrInvalidInput},
		{"bad role from stranger", decide(project.ID, RoleNone, false), target, "viewer", apperr.ErrInvalidInput},
		{"change creator", decide(project.ID, RoleOwner, false), creator, "member", apperr.ErrInvalidOperation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRoleChange(tt.d, project, tt.target, tt.role)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("CheckRoleChange() error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("CheckRoleChange() error = %v, want %v", err, tt.want)
			}
		})
	}
}
