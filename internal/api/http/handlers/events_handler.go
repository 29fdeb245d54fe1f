package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ops-desk/internal/api/dto"
	"github.com/spec-kit/ops-desk/internal/domain"
	"github.com/spec-kit/ops-desk/internal/repository"
	"github.com/spec-kit/ops-desk/internal/service"
	apperrors "github.com/spec-kit/ops-desk/pkg/util/errorutil"
)

// EventsHandler serves the events and payouts screens.
type EventsHandler struct {
	service *service.EventService
}

// NewEventsHandler constructs handler.
func NewEventsHandler(eventService *service.EventService) *EventsHandler {
	return &EventsHandler{service: eventService}
}

// List GET /events.
func (h *EventsHandler) List(c *fiber.Ctx) error {
	filter := repository.EventFilter{Search: c.Query("search"), Page: parsePage(c)}
	var err error
	if filter.Status, err = queryEnum[domain.EventStatus](c, "status"); err != nil {
		return err
	}
	if filter.Gateway, err = queryEnum[domain.Gateway](c, "gateway"); err != nil {
		return err
	}
	if filter.PayoutPending, err = queryBool(c, "payout_pending"); err != nil {
		return err
	}
	if filter.DateFrom, err = queryDate(c, "date_from"); err != nil {
		return err
	}
	if filter.DateTo, err = queryDate(c, "date_to"); err != nil {
		return err
	}
	list, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEventList(list)})
}

// Create POST /events.
func (h *EventsHandler) Create(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req service.EventInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	event, err := h.service.Create(c.UserContext(), actor, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewEventResponse(event)})
}

// Preview POST /events/preview.
func (h *EventsHandler) Preview(c *fiber.Ctx) error {
	var req service.PreviewInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	preview, err := h.service.Preview(req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": preview})
}

// Get GET /events/:id.
func (h *EventsHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "event")
	if err != nil {
		return err
	}
	event, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEventResponse(event)})
}

// Update PUT /events/:id.
func (h *EventsHandler) Update(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req service.EventInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	id, err := pathID(c, "id", "event")
	if err != nil {
		return err
	}
	event, err := h.service.Update(c.UserContext(), actor, id, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEventResponse(event)})
}

// UpdateStatus PATCH /events/:id/status.
func (h *EventsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.EventStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	id, err := pathID(c, "id", "event")
	if err != nil {
		return err
	}
	event, err := h.service.UpdateStatus(c.UserContext(), actor, id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEventResponse(event)})
}

// SetPayoutExecuted PATCH /events/:id/payout-executed.
func (h *EventsHandler) SetPayoutExecuted(c *fiber.Ctx) error {
	return h.setFlag(c, h.service.SetPayoutExecuted)
}

// SetFeesReceived PATCH /events/:id/fees-received.
func (h *EventsHandler) SetFeesReceived(c *fiber.Ctx) error {
	return h.setFlag(c, h.service.SetFeesReceived)
}

type flagSetter func(ctx context.Context, actor domain.Actor, id string, value bool) (*domain.Event, error)

func (h *EventsHandler) setFlag(c *fiber.Ctx, set flagSetter) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.FlagRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Value == nil {
		return apperrors.NewFieldError("value", "is required")
	}
	id, err := pathID(c, "id", "event")
	if err != nil {
		return err
	}
	event, err := set(c.UserContext(), actor, id, *req.Value)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEventResponse(event)})
}

// Delete DELETE /events/:id.
func (h *EventsHandler) Delete(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "event")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), actor, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
