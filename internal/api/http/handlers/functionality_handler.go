package handlers

import (
	"bytes"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/portal-service/internal/domain"
	"github.com/spec-kit/portal-service/internal/service"
)

// FunctionalityHandler exposes the workflow catalogue.
type FunctionalityHandler struct {
	functionalities *service.FunctionalityService
}

// NewFunctionalityHandler constructs handler.
func NewFunctionalityHandler(functionalityService *service.FunctionalityService) *FunctionalityHandler {
	return &FunctionalityHandler{functionalities: functionalityService}
}

// Save handles POST /functionalities. Existing ids are replaced.
func (h *FunctionalityHandler) Save(c *fiber.Ctx) error {
	var req domain.Functionality
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.functionalities.Save(c.UserContext(), &req); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": req})
}

// Import handles POST /functionalities/import with a YAML catalogue body.
func (h *FunctionalityHandler) Import(c *fiber.Ctx) error {
	saved, err := h.functionalities.Import(c.UserContext(), bytes.NewReader(c.Body()))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": saved, "meta": fiber.Map{"imported": len(saved)}})
}

// List handles GET /functionalities.
func (h *FunctionalityHandler) List(c *fiber.Ctx) error {
	items, err := h.functionalities.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get handles GET /functionalities/:id.
func (h *FunctionalityHandler) Get(c *fiber.Ctx) error {
	item, err := h.functionalities.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": item})
}
