package dto

import (
	"time"

	"github.com/spec-kit/ops-desk/internal/domain"
)

// EventResponse is the API shape of an event. Dates are calendar dates and amounts
// are decimal numbers with two places.
type EventResponse struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Status         domain.EventStatus `json:"status"`
	Gateway        domain.Gateway     `json:"gateway"`
	EventDate      string             `json:"event_date"`
	PayoutDate     string             `json:"payout_date"`
	GrossSale      domain.Money       `json:"gross_sale"`
	ServiceFee     domain.Money       `json:"service_fee"`
	GatewayFee     domain.Money       `json:"gateway_fee"`
	ProcessingFee  domain.Money       `json:"processing_fee"`
	NetSale        domain.Money       `json:"net_sale"`
	TotalPayout    domain.Money       `json:"total_payout"`
	TotalPayoutFmt string             `json:"total_payout_display"`
	PayoutExecuted bool               `json:"payout_executed"`
	FeesReceived   bool               `json:"fees_received"`
	CreatedBy      *string            `json:"created_by"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// EventStatusRequest payload.
type EventStatusRequest struct {
	Status domain.EventStatus `json:"status"`
}

// FlagRequest toggles a boolean event flag.
type FlagRequest struct {
	Value *bool `json:"value"`
}

// NewEventResponse maps an event.
func NewEventResponse(e *domain.Event) EventResponse {
	return EventResponse{
		ID:             e.ID,
		Name:           e.Name,
		Status:         e.Status,
		Gateway:        e.Gateway,
		EventDate:      domain.FormatDate(e.EventDate),
		PayoutDate:     domain.FormatDate(e.PayoutDate),
		GrossSale:      e.GrossSale,
		ServiceFee:     e.ServiceFee,
		GatewayFee:     e.GatewayFee,
		ProcessingFee:  e.ProcessingFee,
		NetSale:        e.NetSale,
		TotalPayout:    e.TotalPayout,
		TotalPayoutFmt: e.TotalPayout.Format(),
		PayoutExecuted: e.PayoutExecuted,
		FeesReceived:   e.FeesReceived,
		CreatedBy:      e.CreatedBy,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

// NewEventList maps a page of events.
func NewEventList(list []domain.Event) []EventResponse {
	out := make([]EventResponse, 0, len(list))
	for i := range list {
		out = append(out, NewEventResponse(&list[i]))
	}
	return out
}
