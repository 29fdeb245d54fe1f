package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ops-desk/internal/domain"
	apperrors "github.com/spec-kit/ops-desk/pkg/util/errorutil"
)

func TestCanMutateAdmin(t *testing.T) {
	for _, entity := range []domain.EntityType{domain.EntityEvent, domain.EntityTicket, domain.EntityArticle} {
		for _, op := range []domain.Operation{domain.OpCreate, domain.OpUpdate, domain.OpDelete} {
			assert.True(t, CanMutate(domain.RoleAdmin, entity, op), "%s %s", entity, op)
		}
	}
}

func TestCanMutateStaffOnlyCreatesTickets(t *testing.T) {
	assert.True(t, CanMutate(domain.RoleStaff, domain.EntityTicket, domain.OpCreate))
	assert.False(t, CanMutate(domain.RoleStaff, domain.EntityTicket, domain.OpUpdate))
	assert.False(t, CanMutate(domain.RoleStaff, domain.EntityTicket, domain.OpDelete))
	assert.False(t, CanMutate(domain.RoleStaff, domain.EntityEvent, domain.OpUpdate))
	assert.False(t, CanMutate(domain.RoleStaff, domain.EntityEvent, domain.OpCreate))
	assert.False(t, CanMutate(domain.RoleStaff, domain.EntityArticle, domain.OpCreate))
}

func TestCanMutateDefaultDeny(t *testing.T) {
	roles := []domain.AppRole{domain.RoleAdmin, domain.RoleStaff, "", "owner"}
	entities := []domain.EntityType{domain.EntityEvent, domain.EntityTicket, domain.EntityArticle, domain.EntityAudit, "Invoice"}
	ops := []domain.Operation{domain.OpCreate, domain.OpUpdate, domain.OpDelete, "archive"}

	granted := 0
	for _, role := range roles {
		for _, entity := range entities {
			for _, op := range ops {
				if CanMutate(role, entity, op) {
					granted++
				}
			}
		}
	}
	assert.Equal(t, 10, granted)

	for _, op := range ops {
		assert.False(t, CanMutate(domain.RoleAdmin, domain.EntityAudit, op))
	}
	assert.False(t, CanMutate("owner", domain.EntityTicket, domain.OpCreate))
}

func TestAuthorize(t *testing.T) {
	staff := domain.Actor{ID: "u1", Email: "staff@example.com", Role: domain.RoleStaff}

	require.NoError(t, Authorize(staff, domain.EntityTicket, domain.OpCreate))

	err := Authorize(staff, domain.EntityEvent, domain.OpUpdate)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}
