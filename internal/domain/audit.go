package domain

import "time"

// AuditAction labels what happened in an audit entry.
type AuditAction string

const (
	AuditEventCreated   AuditAction = "EVENT_CREATED"
	AuditEventUpdated   AuditAction = "EVENT_UPDATED"
	AuditEventDeleted   AuditAction = "EVENT_DELETED"
	AuditPayoutExecuted AuditAction = "PAYOUT_EXECUTED"
	AuditFeesReceived   AuditAction = "FEES_RECEIVED"
	AuditStatusChanged  AuditAction = "STATUS_CHANGED"
	AuditTicketCreated  AuditAction = "TICKET_CREATED"
	AuditTicketUpdated  AuditAction = "TICKET_UPDATED"
	AuditTicketResolved AuditAction = "TICKET_RESOLVED"
	AuditTicketAssigned AuditAction = "TICKET_ASSIGNED"
	AuditTicketDeleted  AuditAction = "TICKET_DELETED"
	AuditArticleCreated AuditAction = "ARTICLE_CREATED"
	AuditArticleUpdated AuditAction = "ARTICLE_UPDATED"
	AuditArticleDeleted AuditAction = "ARTICLE_DELETED"
)

// AuditLogEntry is an immutable record of a state change.
// ActorID is nil for system actions.
type AuditLogEntry struct {
	ID         string
	ActorID    *string
	ActorEmail *string
	Action     AuditAction
	EntityType EntityType
	EntityID   string
	OldValue   map[string]any
	NewValue   map[string]any
	CreatedAt  time.Time
}
