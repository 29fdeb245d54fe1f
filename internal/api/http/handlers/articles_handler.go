package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ops-desk/internal/api/dto"
	"github.com/spec-kit/ops-desk/internal/repository"
	"github.com/spec-kit/ops-desk/internal/service"
)

// ArticlesHandler serves the knowledge base.
type ArticlesHandler struct {
	service *service.ArticleService
}

// NewArticlesHandler constructs handler.
func NewArticlesHandler(articleService *service.ArticleService) *ArticlesHandler {
	return &ArticlesHandler{service: articleService}
}

// List GET /articles.
func (h *ArticlesHandler) List(c *fiber.Ctx) error {
	list, err := h.service.List(c.UserContext(), repository.ArticleFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Tag:      c.Query("tag"),
		Page:     parsePage(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewArticleList(list)})
}

// Categories GET /articles/categories.
func (h *ArticlesHandler) Categories(c *fiber.Ctx) error {
	cats, err := h.service.Categories(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": cats})
}

// Create POST /articles.
func (h *ArticlesHandler) Create(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req service.ArticleInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	article, err := h.service.Create(c.UserContext(), actor, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewArticleResponse(article)})
}

// Get GET /articles/:id.
func (h *ArticlesHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "article")
	if err != nil {
		return err
	}
	article, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewArticleResponse(article)})
}

// Update PUT /articles/:id.
func (h *ArticlesHandler) Update(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req service.ArticleInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	id, err := pathID(c, "id", "article")
	if err != nil {
		return err
	}
	article, err := h.service.Update(c.UserContext(), actor, id, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewArticleResponse(article)})
}

// AddTag POST /articles/:id/tags.
func (h *ArticlesHandler) AddTag(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.TagRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	id, err := pathID(c, "id", "article")
	if err != nil {
		return err
	}
	article, err := h.service.AddTag(c.UserContext(), actor, id, req.Tag)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewArticleResponse(article)})
}

// RemoveTag DELETE /articles/:id/tags/:tag.
func (h *ArticlesHandler) RemoveTag(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "article")
	if err != nil {
		return err
	}
	article, err := h.service.RemoveTag(c.UserContext(), actor, id, c.Params("tag"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewArticleResponse(article)})
}

// Delete DELETE /articles/:id.
func (h *ArticlesHandler) Delete(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "article")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), actor, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
