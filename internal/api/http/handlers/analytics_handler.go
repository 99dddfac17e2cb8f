package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/portal-service/internal/service"
)

// AnalyticsHandler serves contribution dashboards.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analyticsService}
}

// EmployeeContributions GET /analytics/employees/:id/contributions.
func (h *AnalyticsHandler) EmployeeContributions(c *fiber.Ctx) error {
	result, err := h.analytics.EmployeeContributions(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}

// Leaderboard GET /analytics/leaderboard?limit=N.
func (h *AnalyticsHandler) Leaderboard(c *fiber.Ctx) error {
	entries, err := h.analytics.Leaderboard(c.UserContext(), c.QueryInt("limit", 10))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": entries})
}
