package domain

import "time"

// EventStatus enumerates lifecycle states for a ticketed event.
type EventStatus string

const (
	EventStatusAvailable   EventStatus = "Available"
	EventStatusExpired     EventStatus = "Expired"
	EventStatusUnavailable EventStatus = "Unavailable"
	EventStatusFinished    EventStatus = "Finished"
)

// EventStatuses lists every EventStatus.
func EventStatuses() []EventStatus {
	return []EventStatus{EventStatusAvailable, EventStatusExpired, EventStatusUnavailable, EventStatusFinished}
}

// Valid reports whether s is a known status.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusAvailable, EventStatusExpired, EventStatusUnavailable, EventStatusFinished:
		return true
	}
	return false
}

// Gateway names a payment-processing route for an event's sales.
type Gateway string

const (
	GatewayGroovooSquare   Gateway = "Groovoo Square"
	GatewayGroovooStripe   Gateway = "Groovoo Stripe"
	GatewaySplitStripe     Gateway = "Split Stripe"
	GatewayOrganizerSquare Gateway = "Organizer Square"
	GatewayOrganizerStripe Gateway = "Organizer Stripe"
)

// Gateways lists every Gateway.
func Gateways() []Gateway {
	return []Gateway{GatewayGroovooSquare, GatewayGroovooStripe, GatewaySplitStripe, GatewayOrganizerSquare, GatewayOrganizerStripe}
}

// Valid reports whether g is a known gateway.
func (g Gateway) Valid() bool {
	switch g {
	case GatewayGroovooSquare, GatewayGroovooStripe, GatewaySplitStripe, GatewayOrganizerSquare, GatewayOrganizerStripe:
		return true
	}
	return false
}

// Event tracks the financial and lifecycle state of one ticketed event.
//
// NetSale and TotalPayout are derived from GrossSale, ServiceFee and GatewayFee.
// ProcessingFee is persisted but not part of any derivation yet.
type Event struct {
	ID             string
	Name           string
	Status         EventStatus
	Gateway        Gateway
	EventDate      time.Time
	PayoutDate     time.Time
	GrossSale      Money
	ServiceFee     Money
	GatewayFee     Money
	ProcessingFee  Money
	NetSale        Money
	TotalPayout    Money
	PayoutExecuted bool
	FeesReceived   bool
	CreatedBy      *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
