package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ops-desk/internal/domain"
	"github.com/spec-kit/ops-desk/internal/events"
)

// SummaryInvalidator drops cached dashboard read models after a mutation.
type SummaryInvalidator interface {
	InvalidateSummary(ctx context.Context)
}

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("entity_id", event.EntityID),
			zap.Error(err))
	}
}

func invalidate(ctx context.Context, inv SummaryInvalidator) {
	if inv != nil {
		inv.InvalidateSummary(ctx)
	}
}

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func eventSnapshot(e *domain.Event) map[string]any {
	return map[string]any{
		"name":            e.Name,
		"status":          string(e.Status),
		"gateway":         string(e.Gateway),
		"event_date":      domain.FormatDate(e.EventDate),
		"payout_date":     domain.FormatDate(e.PayoutDate),
		"gross_sale":      e.GrossSale.String(),
		"service_fee":     e.ServiceFee.String(),
		"gateway_fee":     e.GatewayFee.String(),
		"processing_fee":  e.ProcessingFee.String(),
		"net_sale":        e.NetSale.String(),
		"total_payout":    e.TotalPayout.String(),
		"payout_executed": e.PayoutExecuted,
		"fees_received":   e.FeesReceived,
	}
}

func ticketSnapshot(t *domain.Ticket) map[string]any {
	snap := map[string]any{
		"ticket_number":   t.Number,
		"subject":         t.Subject,
		"type":            string(t.Type),
		"category":        string(t.Category),
		"priority":        string(t.Priority),
		"status":          string(t.Status),
		"move_to_backlog": t.MoveToBacklog,
	}
	if t.Platform != nil {
		snap["platform"] = string(*t.Platform)
	}
	if t.AssigneeID != nil {
		snap["assignee_id"] = *t.AssigneeID
	}
	return snap
}

func articleSnapshot(a *domain.KnowledgeArticle) map[string]any {
	return map[string]any{
		"title":    a.Title,
		"category": a.Category,
		"tags":     append([]string{}, a.Tags...),
	}
}
