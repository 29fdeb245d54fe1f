package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ops-desk/internal/api/dto"
	"github.com/spec-kit/ops-desk/internal/domain"
	"github.com/spec-kit/ops-desk/internal/repository"
	"github.com/spec-kit/ops-desk/internal/service"
)

// AuditHandler exposes the audit log read side.
type AuditHandler struct {
	service *service.AuditService
}

// NewAuditHandler constructs handler.
func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{service: auditService}
}

// List GET /audit-log.
func (h *AuditHandler) List(c *fiber.Ctx) error {
	filter := repository.AuditFilter{
		EntityID: c.Query("entity_id"),
		Search:   c.Query("search"),
		Page:     parsePage(c),
	}
	if raw := queryString(c, "action"); raw != nil {
		action := domain.AuditAction(*raw)
		filter.Action = &action
	}
	if raw := queryString(c, "entity_type"); raw != nil {
		entity := domain.EntityType(*raw)
		filter.EntityType = &entity
	}
	entries, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAuditList(entries)})
}

// Stats GET /audit-log/stats.
func (h *AuditHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}
