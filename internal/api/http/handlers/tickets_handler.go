package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/portal-service/internal/api/dto"
	"github.com/spec-kit/portal-service/internal/domain"
	"github.com/spec-kit/portal-service/internal/service"
	apperrors "github.com/spec-kit/portal-service/pkg/util/errorutil"
)

// TicketsHandler exposes ticket endpoints.
type TicketsHandler struct {
	tickets     *service.TicketService
	assignments *service.AssignmentService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, assignmentService *service.AssignmentService) *TicketsHandler {
	return &TicketsHandler{tickets: ticketService, assignments: assignmentService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, err := currentEmployee(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	ticket, err := h.tickets.CreateTicket(c.UserContext(), actor, service.TicketCreateInput{
		FunctionalityID: req.FunctionalityID,
		Title:           req.Title,
		Description:     req.Description,
		Priority:        req.Priority,
		AssigneeID:      req.AssigneeID,
		GroupID:         req.GroupID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketDetail(ticket)})
}

// ListTickets GET /tickets?scope=raised|assigned|all&status=a,b&functionality_id=x.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	actor, err := currentEmployee(c)
	if err != nil {
		return err
	}
	filter := service.TicketListFilter{
		Scope:  service.TicketScope(c.Query("scope", string(service.TicketScopeRaised))),
		Limit:  parseIntQuery(c, "limit", 20),
		Offset: parseIntQuery(c, "offset", 0),
	}
	if fid := c.Query("functionality_id"); fid != "" {
		filter.FunctionalityID = &fid
	}
	for _, status := range parseListQuery(c, "status") {
		filter.Statuses = append(filter.Statuses, domain.TicketStatus(status))
	}

	tickets, err := h.tickets.ListTickets(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	out := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		out = append(out, dto.NewTicketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{
		"data": out,
		"meta": fiber.Map{"limit": filter.Limit, "offset": filter.Offset},
	})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	actor, err := currentEmployee(c)
	if err != nil {
		return err
	}
	ticket, err := h.tickets.GetTicket(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetail(ticket)})
}

// Assign POST /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	actor, err := currentEmployee(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.AssigneeID == "" {
		return apperrors.NewValidationError("assignee_id required", nil)
	}

	ticket, err := h.assignments.Assign(c.UserContext(), actor, c.Params("id"), req.AssigneeID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetail(ticket)})
}

// Reassign POST /tickets/:id/reassign.
func (h *TicketsHandler) Reassign(c *fiber.Ctx) error {
	actor, err := currentEmployee(c)
	if err != nil {
		return err
	}
	var req dto.ReassignRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.FromUserID == "" || len(req.Assignees) == 0 {
		return apperrors.NewValidationError("from_user_id and assignees required", nil)
	}

	targets := make([]service.ReassignTarget, 0, len(req.Assignees))
	for _, a := range req.Assignees {
		targets = append(targets, service.ReassignTarget{UserID: a.UserID, Role: a.Role})
	}
	ticket, err := h.assignments.Reassign(c.UserContext(), actor, c.Params("id"), req.FromUserID, targets)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetail(ticket)})
}

// AssignGroup POST /tickets/:id/assign-group.
func (h *TicketsHandler) AssignGroup(c *fiber.Ctx) error {
	actor, err := currentEmployee(c)
	if err != nil {
		return err
	}
	var req dto.AssignGroupRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.GroupID == "" {
		return apperrors.NewValidationError("group_id required", nil)
	}

	ticket, err := h.assignments.AssignGroup(c.UserContext(), actor, c.Params("id"), req.GroupID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetail(ticket)})
}

// Advance POST /tickets/:id/advance.
func (h *TicketsHandler) Advance(c *fiber.Ctx) error {
	actor, err := currentEmployee(c)
	if err != nil {
		return err
	}
	var req dto.AdvanceRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.ToNode == "" {
		return apperrors.NewValidationError("to_node required", nil)
	}

	ticket, err := h.assignments.Advance(c.UserContext(), actor, c.Params("id"), service.AdvanceInput{
		ToNode:         req.ToNode,
		Comment:        req.Comment,
		GroupCompleted: req.GroupCompleted,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetail(ticket)})
}

// UpdateStatus PATCH /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, err := currentEmployee(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}

	ticket, err := h.tickets.UpdateStatus(c.UserContext(), actor, c.Params("id"), req.Status, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketDetail(ticket)})
}
