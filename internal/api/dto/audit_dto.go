package dto

import (
	"time"

	"github.com/spec-kit/ops-desk/internal/domain"
)

// AuditEntryResponse payload.
type AuditEntryResponse struct {
	ID         string             `json:"id"`
	ActorID    *string            `json:"actor_id"`
	ActorEmail *string            `json:"actor_email"`
	Action     domain.AuditAction `json:"action"`
	EntityType domain.EntityType  `json:"entity_type"`
	EntityID   string             `json:"entity_id"`
	OldValue   map[string]any     `json:"old_value"`
	NewValue   map[string]any     `json:"new_value"`
	CreatedAt  time.Time          `json:"created_at"`
}

// NewAuditList maps audit entries.
func NewAuditList(entries []domain.AuditLogEntry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, AuditEntryResponse{
			ID:         e.ID,
			ActorID:    e.ActorID,
			ActorEmail: e.ActorEmail,
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			OldValue:   e.OldValue,
			NewValue:   e.NewValue,
			CreatedAt:  e.CreatedAt,
		})
	}
	return out
}
