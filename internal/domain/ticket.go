package domain

import (
	"fmt"
	"time"
)

// TicketType distinguishes consumer from organizer requests.
type TicketType string

const (
	TicketTypeB2C TicketType = "B2C"
	TicketTypeB2B TicketType = "B2B"
)

// Valid reports whether t is a known ticket type.
func (t TicketType) Valid() bool {
	return t == TicketTypeB2C || t == TicketTypeB2B
}

// TicketCategory is drawn from the fixed list belonging to a TicketType.
type TicketCategory string

var b2cCategories = []TicketCategory{
	"Account creation error",
	"Login/App access",
	"Missing confirmation email",
	"Ticket not in app",
	"Checkout error",
	"Duplicate charge",
	"Refund request",
	"Info/Event details",
}

var b2bCategories = []TicketCategory{
	"Producer account error",
	"Balance/Payout inquiry",
	"Event/Coupon creation",
	"Sales reports",
	"Check-in/Organizer App issues",
	"Gateway change",
}

// CategoriesFor returns the categories allowed for the ticket type.
func CategoriesFor(t TicketType) []TicketCategory {
	var src []TicketCategory
	switch t {
	case TicketTypeB2C:
		src = b2cCategories
	case TicketTypeB2B:
		src = b2bCategories
	default:
		return nil
	}
	out := make([]TicketCategory, len(src))
	copy(out, src)
	return out
}

// BelongsTo reports whether the category is part of the type's list.
func (c TicketCategory) BelongsTo(t TicketType) bool {
	for _, candidate := range CategoriesFor(t) {
		if candidate == c {
			return true
		}
	}
	return false
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityHigh   TicketPriority = "High"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityLow    TicketPriority = "Low"
)

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityHigh, TicketPriorityMedium, TicketPriorityLow:
		return true
	}
	return false
}

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusWaiting    TicketStatus = "Waiting"
	TicketStatusResolved   TicketStatus = "Resolved"
	TicketStatusClosed     TicketStatus = "Closed"
)

// TicketStatuses lists every TicketStatus in board order.
func TicketStatuses() []TicketStatus {
	return []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusWaiting, TicketStatusResolved, TicketStatusClosed}
}

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusWaiting, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// Done reports whether the status counts as resolved.
func (s TicketStatus) Done() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// Platform is the client surface a ticket concerns.
type Platform string

const (
	PlatformIOS     Platform = "iOS"
	PlatformAndroid Platform = "Android"
	PlatformWeb     Platform = "Web"
)

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	switch p {
	case PlatformIOS, PlatformAndroid, PlatformWeb:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID            string
	Number        string
	Subject       string
	Type          TicketType
	Category      TicketCategory
	Priority      TicketPriority
	Status        TicketStatus
	Platform      *Platform
	Description   *string
	AssigneeID    *string
	ResolvedAt    *time.Time
	MoveToBacklog bool
	CreatedBy     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Attachments   []Attachment
}

// Attachment is a file reference owned by a ticket.
type Attachment struct {
	ID         string
	TicketID   string
	FileName   string
	FileURL    string
	FileType   string
	SizeBytes  int64
	UploadedBy *string
	UploadedAt time.Time
}

// TimeOpen renders how long a ticket has been open, e.g. "2d 3h", "4h 10m" or "7m".
func TimeOpen(createdAt, now time.Time) string {
	mins := int(now.Sub(createdAt) / time.Minute)
	if mins < 0 {
		mins = 0
	}
	hours := mins / 60
	days := hours / 24
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours%24)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, mins%60)
	default:
		return fmt.Sprintf("%dm", mins)
	}
}
