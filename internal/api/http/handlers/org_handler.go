package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/portal-service/internal/api/dto"
	"github.com/spec-kit/portal-service/internal/domain"
	"github.com/spec-kit/portal-service/internal/repository"
	"github.com/spec-kit/portal-service/internal/service"
)

// OrgHandler exposes employee and group endpoints.
type OrgHandler struct {
	org *service.OrgService
}

// NewOrgHandler constructs handler.
func NewOrgHandler(orgService *service.OrgService) *OrgHandler {
	return &OrgHandler{org: orgService}
}

// ListEmployees handles GET /employees.
func (h *OrgHandler) ListEmployees(c *fiber.Ctx) error {
	filter := repository.EmployeeFilter{
		Active: parseBoolQuery(c, "active"),
		Limit:  parseIntQuery(c, "limit", 50),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if role := c.Query("role"); role != "" {
		r := domain.EmployeeRole(role)
		filter.Role = &r
	}
	if dept := c.Query("department"); dept != "" {
		filter.Department = &dept
	}

	employees, err := h.org.ListEmployees(c.UserContext(), filter)
	if err != nil {
		return err
	}
	out := make([]dto.EmployeeResponse, 0, len(employees))
	for i := range employees {
		out = append(out, dto.NewEmployeeResponse(&employees[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// GetEmployee handles GET /employees/:id.
func (h *OrgHandler) GetEmployee(c *fiber.Ctx) error {
	employee, err := h.org.GetEmployee(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEmployeeResponse(employee)})
}

// CreateGroup handles POST /groups.
func (h *OrgHandler) CreateGroup(c *fiber.Ctx) error {
	actor, err := currentEmployee(c)
	if err != nil {
		return err
	}
	var req dto.CreateGroupRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	group, err := h.org.CreateGroup(c.UserContext(), actor, service.GroupCreateInput{
		Name:      req.Name,
		LeadID:    req.LeadID,
		MemberIDs: req.MemberIDs,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": group})
}

// ListGroups handles GET /groups.
func (h *OrgHandler) ListGroups(c *fiber.Ctx) error {
	groups, err := h.org.ListGroups(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": groups})
}

// GetGroup handles GET /groups/:id.
func (h *OrgHandler) GetGroup(c *fiber.Ctx) error {
	group, err := h.org.GetGroup(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": group})
}
