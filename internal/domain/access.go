package domain

// AppRole is the role carried by an authenticated actor.
type AppRole string

const (
	RoleAdmin AppRole = "admin"
	RoleStaff AppRole = "staff"
)

// Valid reports whether r is a known role.
func (r AppRole) Valid() bool {
	return r == RoleAdmin || r == RoleStaff
}

// EntityType names a mutable resource kind.
type EntityType string

const (
	EntityEvent   EntityType = "Event"
	EntityTicket  EntityType = "Ticket"
	EntityArticle EntityType = "KnowledgeArticle"
	EntityAudit   EntityType = "AuditLog"
)

// Operation names a mutation kind.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Actor is the authenticated principal performing an operation.
type Actor struct {
	ID    string
	Email string
	Role  AppRole
}
