package middleware

import (
	"errors"
	"testing"

	"anoa.com/communityforum/internal/model"
	"anoa.com/communityforum/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// Exercises every corner of identity-present × role-required × permission-required.
func TestEvaluate(t *testing.T) {
	member := &Identity{
		UserID: uuid.New(),
		Role:   model.RoleCommunityMember,
		Grants: model.DefaultGrants(model.RoleCommunityMember),
	}

	roles := []model.Role{model.RoleCommunityMember, model.RoleModerator}
	perms := []model.Permission{model.PermissionPost, model.PermissionComment}

	cases := []struct {
		name  string
		id    *Identity
		roles []model.Role
		perms []model.Permission
		want  error
	}{
		{"no identity, no requirements", nil, nil, nil, apperror.ErrUnauthenticated},
		{"no identity, roles required", nil, roles, nil, apperror.ErrUnauthenticated},
		{"no identity, perms required", nil, nil, perms, apperror.ErrUnauthenticated},
		{"no identity, both required", nil, roles, perms, apperror.ErrUnauthenticated},
		{"identity, no requirements", member, nil, nil, nil},
		{"identity, role held", member, roles, nil, nil},
		{"identity, perms held", member, nil, perms, nil},
		{"identity, both held", member, roles, perms, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Evaluate(tc.id, tc.roles, tc.perms)
			if tc.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestEvaluateRoleNotHeld(t *testing.T) {
	member := &Identity{
		UserID: uuid.New(),
		Role:   model.RoleCommunityMember,
		Grants: model.DefaultGrants(model.RoleCommunityMember),
	}

	err := Evaluate(member, []model.Role{model.RoleAdmin}, nil)
	assert.ErrorIs(t, err, apperror.ErrInsufficientRole)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestEvaluatePermissionsAreANDed(t *testing.T) {
	member := &Identity{
		UserID: uuid.New(),
		Role:   model.RoleCommunityMember,
		Grants: model.DefaultGrants(model.RoleCommunityMember), // no moderate
	}

	// Holding some of the listed permissions is not enough.
	err := Evaluate(member, nil, []model.Permission{model.PermissionPost, model.PermissionModerate})
	assert.ErrorIs(t, err, apperror.ErrInsufficientPermission)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestEvaluateEmptyListsAdmitAnyIdentity(t *testing.T) {
	guest := &Identity{UserID: uuid.New(), Role: model.RoleGuest}

	// Vacuous truth: an empty-list guard admits any authenticated user,
	// even one holding nothing at all.
	assert.NoError(t, Evaluate(guest, nil, nil))
	assert.NoError(t, Evaluate(guest, []model.Role{}, []model.Permission{}))
}

func TestEvaluateIndependentGates(t *testing.T) {
	mod := &Identity{
		UserID: uuid.New(),
		Role:   model.RoleModerator,
		Grants: model.Grants{}, // permissions stripped by an admin
	}

	// Role gate passes on its own.
	assert.NoError(t, Evaluate(mod, []model.Role{model.RoleModerator}, nil))

	// Permission gate fails independently of role.
	err := Evaluate(mod, []model.Role{model.RoleModerator}, []model.Permission{model.PermissionModerate})
	assert.True(t, errors.Is(err, apperror.ErrInsufficientPermission))
}
