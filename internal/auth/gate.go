package auth

import (
	"fmt"

	"github.com/spec-kit/ops-desk/internal/domain"
	apperrors "github.com/spec-kit/ops-desk/pkg/util/errorutil"
)

type permission struct {
	role   domain.AppRole
	entity domain.EntityType
	op     domain.Operation
}

// allowed is the complete allow-set. Anything absent is denied.
var allowed = map[permission]struct{}{
	{domain.RoleAdmin, domain.EntityEvent, domain.OpCreate}:   {},
	{domain.RoleAdmin, domain.EntityEvent, domain.OpUpdate}:   {},
	{domain.RoleAdmin, domain.EntityEvent, domain.OpDelete}:   {},
	{domain.RoleAdmin, domain.EntityTicket, domain.OpCreate}:  {},
	{domain.RoleAdmin, domain.EntityTicket, domain.OpUpdate}:  {},
	{domain.RoleAdmin, domain.EntityTicket, domain.OpDelete}:  {},
	{domain.RoleAdmin, domain.EntityArticle, domain.OpCreate}: {},
	{domain.RoleAdmin, domain.EntityArticle, domain.OpUpdate}: {},
	{domain.RoleAdmin, domain.EntityArticle, domain.OpDelete}: {},
	{domain.RoleStaff, domain.EntityTicket, domain.OpCreate}:  {},
}

// CanMutate reports whether role may perform op on entity.
func CanMutate(role domain.AppRole, entity domain.EntityType, op domain.Operation) bool {
	_, ok := allowed[permission{role: role, entity: entity, op: op}]
	return ok
}

// Authorize returns a FORBIDDEN error when the actor may not perform op on entity.
func Authorize(actor domain.Actor, entity domain.EntityType, op domain.Operation) error {
	if CanMutate(actor.Role, entity, op) {
		return nil
	}
	return apperrors.NewForbidden(fmt.Sprintf("role %q may not %s %s", actor.Role, op, entity))
}
