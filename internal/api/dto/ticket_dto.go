package dto

import (
	"time"

	"github.com/spec-kit/ops-desk/internal/domain"
)

// TicketResponse is the list and detail shape of a ticket.
type TicketResponse struct {
	ID            string                `json:"id"`
	TicketNumber  string                `json:"ticket_number"`
	Subject       string                `json:"subject"`
	Type          domain.TicketType     `json:"type"`
	Category      domain.TicketCategory `json:"category"`
	Priority      domain.TicketPriority `json:"priority"`
	Status        domain.TicketStatus   `json:"status"`
	Platform      *domain.Platform      `json:"platform"`
	Description   *string               `json:"description"`
	AssigneeID    *string               `json:"assignee_id"`
	MoveToBacklog bool                  `json:"move_to_backlog"`
	ResolvedAt    *time.Time            `json:"resolved_at"`
	TimeOpen      string                `json:"time_open"`
	CreatedBy     *string               `json:"created_by"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	Attachments   []AttachmentResponse  `json:"attachments,omitempty"`
}

// AttachmentResponse describes one stored file reference.
type AttachmentResponse struct {
	ID         string    `json:"id"`
	FileName   string    `json:"file_name"`
	FileURL    string    `json:"file_url"`
	FileType   string    `json:"file_type"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedBy *string   `json:"uploaded_by"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// TicketStatusRequest payload.
type TicketStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// AssignTicketRequest payload. A null assignee clears the assignment.
type AssignTicketRequest struct {
	AssigneeID *string `json:"assignee_id"`
}

// BacklogRequest payload.
type BacklogRequest struct {
	MoveToBacklog bool `json:"move_to_backlog"`
}

// NewTicketResponse maps a ticket. TimeOpen is measured until resolution when resolved.
func NewTicketResponse(t *domain.Ticket, now time.Time) TicketResponse {
	end := now
	if t.ResolvedAt != nil {
		end = *t.ResolvedAt
	}
	resp := TicketResponse{
		ID:            t.ID,
		TicketNumber:  t.Number,
		Subject:       t.Subject,
		Type:          t.Type,
		Category:      t.Category,
		Priority:      t.Priority,
		Status:        t.Status,
		Platform:      t.Platform,
		Description:   t.Description,
		AssigneeID:    t.AssigneeID,
		MoveToBacklog: t.MoveToBacklog,
		ResolvedAt:    t.ResolvedAt,
		TimeOpen:      domain.TimeOpen(t.CreatedAt, end),
		CreatedBy:     t.CreatedBy,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	for i := range t.Attachments {
		resp.Attachments = append(resp.Attachments, NewAttachmentResponse(&t.Attachments[i]))
	}
	return resp
}

// NewAttachmentResponse maps an attachment.
func NewAttachmentResponse(a *domain.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:         a.ID,
		FileName:   a.FileName,
		FileURL:    a.FileURL,
		FileType:   a.FileType,
		SizeBytes:  a.SizeBytes,
		UploadedBy: a.UploadedBy,
		UploadedAt: a.UploadedAt,
	}
}

// NewTicketList maps a page of tickets.
func NewTicketList(tickets []domain.Ticket, now time.Time) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketResponse(&tickets[i], now))
	}
	return out
}
