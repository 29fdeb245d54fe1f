package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ops-desk/internal/auth"
	"github.com/spec-kit/ops-desk/internal/domain"
	"github.com/spec-kit/ops-desk/internal/events"
	"github.com/spec-kit/ops-desk/internal/finance"
	"github.com/spec-kit/ops-desk/internal/repository"
	"github.com/spec-kit/ops-desk/internal/validation"
	apperrors "github.com/spec-kit/ops-desk/pkg/util/errorutil"
)

// EventService manages ticketed events and their payout state.
type EventService struct {
	events     repository.EventRepository
	audit      *AuditService
	dispatcher events.Dispatcher
	summary    SummaryInvalidator
	logger     *zap.Logger
}

// EventDependencies bundles collaborators for the event service.
type EventDependencies struct {
	EventRepo  repository.EventRepository
	Audit      *AuditService
	Dispatcher events.Dispatcher
	Summary    SummaryInvalidator
	Logger     *zap.Logger
}

// NewEventService constructs the service.
func NewEventService(deps EventDependencies) *EventService {
	return &EventService{
		events:     deps.EventRepo,
		audit:      deps.Audit,
		dispatcher: deps.Dispatcher,
		summary:    deps.Summary,
		logger:     nopIfNil(deps.Logger),
	}
}

// EventInput is the full editable shape of an event. Status defaults to Available.
type EventInput struct {
	Name          string             `json:"name" validate:"required,max=200"`
	Status        domain.EventStatus `json:"status" validate:"required,event_status"`
	Gateway       domain.Gateway     `json:"gateway" validate:"required,gateway"`
	EventDate     string             `json:"event_date" validate:"required,datetime=2006-01-02"`
	GrossSale     domain.Money       `json:"gross_sale" validate:"gte=0"`
	ServiceFee    domain.Money       `json:"service_fee" validate:"gte=0"`
	GatewayFee    domain.Money       `json:"gateway_fee" validate:"gte=0"`
	ProcessingFee domain.Money       `json:"processing_fee" validate:"gte=0"`
}

// PreviewInput carries the fields the derived values depend on.
type PreviewInput struct {
	EventDate  string       `json:"event_date" validate:"required,datetime=2006-01-02"`
	GrossSale  domain.Money `json:"gross_sale" validate:"gte=0"`
	ServiceFee domain.Money `json:"service_fee" validate:"gte=0"`
	GatewayFee domain.Money `json:"gateway_fee" validate:"gte=0"`
}

// EventPreview shows what would be stored for a PreviewInput.
type EventPreview struct {
	EventDate   string       `json:"event_date"`
	PayoutDate  string       `json:"payout_date"`
	NetSale     domain.Money `json:"net_sale"`
	TotalPayout domain.Money `json:"total_payout"`
}

type eventStatusInput struct {
	Status domain.EventStatus `json:"status" validate:"required,event_status"`
}

func (in *EventInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	if in.Status == "" {
		in.Status = domain.EventStatusAvailable
	}
}

// apply validates in and writes it, with derived fields, onto event.
func (in EventInput) apply(event *domain.Event) error {
	in.normalize()
	if err := validation.Struct(in); err != nil {
		return err
	}
	eventDate, err := domain.ParseDate(in.EventDate)
	if err != nil {
		return apperrors.NewFieldError("event_date", "must be a valid calendar date")
	}
	fin := finance.Derive(in.GrossSale, in.ServiceFee, in.GatewayFee)

	event.Name = in.Name
	event.Status = in.Status
	event.Gateway = in.Gateway
	event.EventDate = eventDate
	event.PayoutDate = finance.PayoutDate(eventDate)
	event.GrossSale = in.GrossSale
	event.ServiceFee = in.ServiceFee
	event.GatewayFee = in.GatewayFee
	event.ProcessingFee = in.ProcessingFee
	event.NetSale = fin.NetSale
	event.TotalPayout = fin.TotalPayout
	return nil
}

// Preview computes the payout date and financials without persisting anything.
func (s *EventService) Preview(in PreviewInput) (EventPreview, error) {
	if err := validation.Struct(in); err != nil {
		return EventPreview{}, err
	}
	eventDate, err := domain.ParseDate(in.EventDate)
	if err != nil {
		return EventPreview{}, apperrors.NewFieldError("event_date", "must be a valid calendar date")
	}
	fin := finance.Derive(in.GrossSale, in.ServiceFee, in.GatewayFee)
	return EventPreview{
		EventDate:   domain.FormatDate(eventDate),
		PayoutDate:  domain.FormatDate(finance.PayoutDate(eventDate)),
		NetSale:     fin.NetSale,
		TotalPayout: fin.TotalPayout,
	}, nil
}

// Create stores a new event.
func (s *EventService) Create(ctx context.Context, actor domain.Actor, in EventInput) (*domain.Event, error) {
	if err := auth.Authorize(actor, domain.EntityEvent, domain.OpCreate); err != nil {
		return nil, err
	}
	event := &domain.Event{}
	if err := in.apply(event); err != nil {
		return nil, err
	}
	if actor.ID != "" {
		createdBy := actor.ID
		event.CreatedBy = &createdBy
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, apperrors.NewRemoteFailure(err)
	}

	s.audit.Record(ctx, AuditRecord{
		Actor:      actor,
		Action:     domain.AuditEventCreated,
		EntityType: domain.EntityEvent,
		EntityID:   event.ID,
		NewValue:   eventSnapshot(event),
	})
	s.afterMutation(ctx, events.EventEventCreated, event, actor)
	return event, nil
}

// Update replaces the editable fields and re-derives payout date and financials.
func (s *EventService) Update(ctx context.Context, actor domain.Actor, id string, in EventInput) (*domain.Event, error) {
	if err := auth.Authorize(actor, domain.EntityEvent, domain.OpUpdate); err != nil {
		return nil, err
	}
	event, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	before := eventSnapshot(event)
	if err := in.apply(event); err != nil {
		return nil, err
	}
	if err := s.events.Update(ctx, event); err != nil {
		return nil, apperrors.FromRepository(err, "event", id)
	}

	s.audit.Record(ctx, AuditRecord{
		Actor:      actor,
		Action:     domain.AuditEventUpdated,
		EntityType: domain.EntityEvent,
		EntityID:   event.ID,
		OldValue:   before,
		NewValue:   eventSnapshot(event),
	})
	s.afterMutation(ctx, events.EventEventUpdated, event, actor)
	return event, nil
}

// UpdateStatus changes only the lifecycle status.
func (s *EventService) UpdateStatus(ctx context.Context, actor domain.Actor, id string, status domain.EventStatus) (*domain.Event, error) {
	if err := auth.Authorize(actor, domain.EntityEvent, domain.OpUpdate); err != nil {
		return nil, err
	}
	if err := validation.Struct(eventStatusInput{Status: status}); err != nil {
		return nil, err
	}
	event, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	old := event.Status
	if old == status {
		return event, nil
	}
	event.Status = status
	if err := s.events.Update(ctx, event); err != nil {
		return nil, apperrors.FromRepository(err, "event", id)
	}

	s.audit.Record(ctx, AuditRecord{
		Actor:      actor,
		Action:     domain.AuditStatusChanged,
		EntityType: domain.EntityEvent,
		EntityID:   event.ID,
		OldValue:   map[string]any{"status": string(old)},
		NewValue:   map[string]any{"status": string(status)},
	})
	s.afterMutation(ctx, events.EventEventUpdated, event, actor)
	return event, nil
}

// SetPayoutExecuted records whether the organizer has been paid.
func (s *EventService) SetPayoutExecuted(ctx context.Context, actor domain.Actor, id string, executed bool) (*domain.Event, error) {
	return s.setFlag(ctx, actor, id, "payout_executed", executed, domain.AuditPayoutExecuted, events.EventPayoutExecuted,
		func(e *domain.Event) *bool { return &e.PayoutExecuted })
}

// SetFeesReceived records whether the platform fees have arrived.
func (s *EventService) SetFeesReceived(ctx context.Context, actor domain.Actor, id string, received bool) (*domain.Event, error) {
	return s.setFlag(ctx, actor, id, "fees_received", received, domain.AuditFeesReceived, events.EventFeesReceived,
		func(e *domain.Event) *bool { return &e.FeesReceived })
}

func (s *EventService) setFlag(
	ctx context.Context,
	actor domain.Actor,
	id, field string,
	value bool,
	action domain.AuditAction,
	eventType events.EventType,
	flag func(*domain.Event) *bool,
) (*domain.Event, error) {
	if err := auth.Authorize(actor, domain.EntityEvent, domain.OpUpdate); err != nil {
		return nil, err
	}
	event, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	target := flag(event)
	old := *target
	if old == value {
		return event, nil
	}
	*target = value
	if err := s.events.Update(ctx, event); err != nil {
		return nil, apperrors.FromRepository(err, "event", id)
	}

	s.audit.Record(ctx, AuditRecord{
		Actor:      actor,
		Action:     action,
		EntityType: domain.EntityEvent,
		EntityID:   event.ID,
		OldValue:   map[string]any{field: old},
		NewValue:   map[string]any{field: value},
	})
	s.afterMutation(ctx, eventType, event, actor)
	return event, nil
}

// Delete removes an event.
func (s *EventService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if err := auth.Authorize(actor, domain.EntityEvent, domain.OpDelete); err != nil {
		return err
	}
	event, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.events.Delete(ctx, id); err != nil {
		return apperrors.FromRepository(err, "event", id)
	}

	s.audit.Record(ctx, AuditRecord{
		Actor:      actor,
		Action:     domain.AuditEventDeleted,
		EntityType: domain.EntityEvent,
		EntityID:   id,
		OldValue:   eventSnapshot(event),
	})
	s.afterMutation(ctx, events.EventEventDeleted, event, actor)
	return nil
}

// Get fetches one event.
func (s *EventService) Get(ctx context.Context, id string) (*domain.Event, error) {
	return s.get(ctx, id)
}

// List returns events matching filter.
func (s *EventService) List(ctx context.Context, filter repository.EventFilter) ([]domain.Event, error) {
	list, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewRemoteFailure(err)
	}
	return list, nil
}

func (s *EventService) get(ctx context.Context, id string) (*domain.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.FromRepository(err, "event", id)
	}
	return event, nil
}

func (s *EventService) afterMutation(ctx context.Context, eventType events.EventType, event *domain.Event, actor domain.Actor) {
	publish(ctx, s.dispatcher, s.logger, events.New(eventType, domain.EntityEvent, event.ID, actor, eventPayload(event)))
	invalidate(ctx, s.summary)
}

func eventPayload(e *domain.Event) events.EventPayload {
	return events.EventPayload{
		Name:        e.Name,
		Status:      e.Status,
		EventDate:   domain.FormatDate(e.EventDate),
		PayoutDate:  domain.FormatDate(e.PayoutDate),
		TotalPayout: e.TotalPayout,
	}
}
