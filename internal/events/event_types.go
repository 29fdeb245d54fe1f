package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/ops-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventEventCreated        EventType = "event_created"
	EventEventUpdated        EventType = "event_updated"
	EventEventDeleted        EventType = "event_deleted"
	EventPayoutExecuted      EventType = "payout_executed"
	EventFeesReceived        EventType = "fees_received"
	EventPayoutDue           EventType = "payout_due"
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketDeleted       EventType = "ticket_deleted"
	EventArticleCreated      EventType = "article_created"
	EventArticleUpdated      EventType = "article_updated"
	EventArticleDeleted      EventType = "article_deleted"
)

// AllEventTypes lists every published type.
func AllEventTypes() []EventType {
	return []EventType{
		EventEventCreated, EventEventUpdated, EventEventDeleted, EventPayoutExecuted, EventFeesReceived,
		EventPayoutDue, EventTicketCreated, EventTicketStatusChanged, EventTicketAssigned, EventTicketDeleted,
		EventArticleCreated, EventArticleUpdated, EventArticleDeleted,
	}
}

// Actor encapsulates actor metadata for an event. Empty for scheduled jobs.
type Actor struct {
	ID    string         `json:"id,omitempty"`
	Email string         `json:"email,omitempty"`
	Role  domain.AppRole `json:"role,omitempty"`
}

// ActorFrom copies the authenticated actor.
func ActorFrom(a domain.Actor) Actor {
	return Actor{ID: a.ID, Email: a.Email, Role: a.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID         string            `json:"id"`
	Type       EventType         `json:"type"`
	EntityType domain.EntityType `json:"entity_type"`
	EntityID   string            `json:"entity_id"`
	Actor      Actor             `json:"actor"`
	Timestamp  time.Time         `json:"timestamp"`
	Payload    any               `json:"payload,omitempty"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, entityType domain.EntityType, entityID string, actor domain.Actor, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		EntityType: entityType,
		EntityID:   entityID,
		Actor:      ActorFrom(actor),
		Timestamp:  time.Now().UTC(),
		Payload:    payload,
	}
}

// EventPayload summarizes an event's financial state.
type EventPayload struct {
	Name        string             `json:"name"`
	Status      domain.EventStatus `json:"status"`
	EventDate   string             `json:"event_date"`
	PayoutDate  string             `json:"payout_date"`
	TotalPayout domain.Money       `json:"total_payout"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Number   string                `json:"ticket_number"`
	Type     domain.TicketType     `json:"type"`
	Category domain.TicketCategory `json:"category"`
	Priority domain.TicketPriority `json:"priority"`
	Subject  string                `json:"subject"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	Number    string              `json:"ticket_number"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	Number     string  `json:"ticket_number"`
	AssigneeID *string `json:"assignee_id,omitempty"`
}

// ArticlePayload payload.
type ArticlePayload struct {
	Title    string `json:"title"`
	Category string `json:"category"`
}
