package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/portal-service/internal/credit"
	"github.com/spec-kit/portal-service/internal/domain"
	"github.com/spec-kit/portal-service/internal/events"
	"github.com/spec-kit/portal-service/internal/observability"
	"github.com/spec-kit/portal-service/internal/repository"
	apperrors "github.com/spec-kit/portal-service/pkg/util/errorutil"
)

// TicketService coordinates ticket creation, reads and status changes.
type TicketService struct {
	tickets         repository.TicketRepository
	functionalities repository.FunctionalityRepository
	org             *OrgService
	rules           *credit.Rules
	dispatcher      events.Dispatcher
	writer          *ticketWriter
	logger          *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket services.
type TicketDependencies struct {
	TicketRepo        repository.TicketRepository
	FunctionalityRepo repository.FunctionalityRepository
	Org               *OrgService
	Rules             *credit.Rules
	Dispatcher        events.Dispatcher
	Logger            *zap.Logger
	Metrics           *observability.Metrics
	UpdateRetries     int
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	FunctionalityID string
	Title           string
	Description     string
	Priority        domain.TicketPriority
	AssigneeID      *string
	GroupID         *string
}

// TicketScope selects which tickets a listing covers.
type TicketScope string

const (
	TicketScopeRaised   TicketScope = "raised"
	TicketScopeAssigned TicketScope = "assigned"
	TicketScopeAll      TicketScope = "all"
)

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	Scope           TicketScope
	FunctionalityID *string
	Statuses        []domain.TicketStatus
	Limit           int
	Offset          int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rules := deps.Rules
	if rules == nil {
		rules = credit.NewRules(nil, logger)
	}
	return &TicketService{
		tickets:         deps.TicketRepo,
		functionalities: deps.FunctionalityRepo,
		org:             deps.Org,
		rules:           rules,
		dispatcher:      deps.Dispatcher,
		writer:          newTicketWriter(deps.TicketRepo, deps.UpdateRetries, logger, deps.Metrics),
		logger:          logger,
	}
}

// CreateTicket opens a ticket at the first employee node of the functionality's workflow.
func (s *TicketService) CreateTicket(ctx context.Context, actor *domain.Employee, input TicketCreateInput) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("employee required")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	if input.AssigneeID != nil && input.GroupID != nil {
		return nil, apperrors.NewValidationError("assign either an employee or a group, not both", nil)
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": priority})
	}

	functionality, err := s.functionalities.GetByID(ctx, input.FunctionalityID)
	if err != nil {
		return nil, lookupErr("functionality", input.FunctionalityID, err)
	}
	firstNode, ok := s.rules.Resolver().FirstEmployeeNode(functionality.Workflow)
	if !ok {
		return nil, apperrors.NewConflict("functionality workflow has no first employee node",
			map[string]any{"functionality_id": functionality.ID})
	}

	now := time.Now().UTC()
	ticket := &domain.Ticket{
		Key:             generateTicketKey(),
		Title:           title,
		Description:     strings.TrimSpace(input.Description),
		FunctionalityID: functionality.ID,
		RaisedBy:        actor.Ref(),
		Status:          domain.TicketStatusPending,
		Priority:        priority,
		WorkflowStage:   firstNode,
		WorkflowHistory: []domain.WorkflowHistoryEntry{{
			PerformedBy: actor.Ref(),
			ToNode:      firstNode,
			Action:      domain.HistoryActionCreated,
			Timestamp:   now,
		}},
	}

	switch {
	case input.AssigneeID != nil:
		assignee, err := s.org.activeEmployee(ctx, *input.AssigneeID)
		if err != nil {
			return nil, err
		}
		ticket.Assignees = []domain.PersonRef{assignee.Ref()}
		s.rules.CreatedWithAssignee(ticket, assignee.Ref())
	case input.GroupID != nil:
		group, err := s.org.GetGroup(ctx, *input.GroupID)
		if err != nil {
			return nil, err
		}
		members, err := s.org.GroupMembers(ctx, group)
		if err != nil {
			return nil, err
		}
		ticket.GroupID = &group.ID
		s.rules.CreatedWithGroup(ticket, members)
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.writer.metrics.RecordLedgerMutation("created")

	contributors := make([]string, 0, len(ticket.Contributors))
	for _, c := range ticket.Contributors {
		contributors = append(contributors, c.UserID)
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    actor.Ref(),
		Payload: events.TicketCreatedPayload{
			FunctionalityID: ticket.FunctionalityID,
			Priority:        ticket.Priority,
			Title:           ticket.Title,
			Contributors:    contributors,
		},
	})
	return ticket, nil
}

// GetTicket returns a ticket the actor is allowed to see.
func (s *TicketService) GetTicket(ctx context.Context, actor *domain.Employee, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, lookupErr("ticket", ticketID, err)
	}
	ok, err := s.canView(ctx, actor, ticket)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

// ListTickets lists tickets within the requested scope.
func (s *TicketService) ListTickets(ctx context.Context, actor *domain.Employee, filter TicketListFilter) ([]domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("employee required")
	}
	repoFilter := repository.TicketFilter{
		FunctionalityID: filter.FunctionalityID,
		Statuses:        filter.Statuses,
		Limit:           filter.Limit,
		Offset:          filter.Offset,
	}
	switch filter.Scope {
	case "", TicketScopeRaised:
		repoFilter.RaisedByID = &actor.ID
	case TicketScopeAssigned:
		repoFilter.AssigneeID = &actor.ID
	case TicketScopeAll:
		if !isPrivileged(actor) {
			return nil, apperrors.NewForbidden("manager role required")
		}
	default:
		return nil, apperrors.NewValidationError("invalid scope", map[string]any{"scope": filter.Scope})
	}
	for _, status := range filter.Statuses {
		if !status.Valid() {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": status})
		}
	}
	tickets, err := s.tickets.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// UpdateStatus moves the ticket along the status lifecycle.
func (s *TicketService) UpdateStatus(ctx context.Context, actor *domain.Employee, ticketID string, newStatus domain.TicketStatus, comment string) (*domain.Ticket, error) {
	if !newStatus.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": newStatus})
	}
	var oldStatus domain.TicketStatus
	ticket, err := s.writer.mutate(ctx, ticketID, "status_changed", func(t *domain.Ticket) error {
		allowed, err := canWork(ctx, s.org, actor, t)
		if err != nil {
			return err
		}
		raiserClosing := actor != nil && t.RaisedBy.UserID == actor.ID && newStatus == domain.TicketStatusClosed
		if !allowed && !raiserClosing {
			return apperrors.NewForbidden("access denied")
		}
		if !isValidTransition(t.Status, newStatus) {
			return apperrors.NewConflict("invalid status transition", map[string]any{
				"from": t.Status,
				"to":   newStatus,
			})
		}
		oldStatus = t.Status
		t.Status = newStatus
		t.WorkflowHistory = append(t.WorkflowHistory, domain.WorkflowHistoryEntry{
			PerformedBy: actor.Ref(),
			FromNode:    t.WorkflowStage,
			ToNode:      t.WorkflowStage,
			Action:      domain.HistoryActionStatusChanged,
			Comment:     strings.TrimSpace(comment),
			Timestamp:   time.Now().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    actor.Ref(),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Comment:   comment,
		},
	})
	return ticket, nil
}

func (s *TicketService) canView(ctx context.Context, actor *domain.Employee, ticket *domain.Ticket) (bool, error) {
	if actor == nil {
		return false, nil
	}
	if ticket.RaisedBy.UserID == actor.ID {
		return true, nil
	}
	if _, ok := credit.Ledger(ticket.Contributors).Active(actor.ID); ok {
		return true, nil
	}
	return canWork(ctx, s.org, actor, ticket)
}

// canWork reports whether actor may act on the ticket: managers, admins,
// current assignees and members of the assigned group.
func canWork(ctx context.Context, org *OrgService, actor *domain.Employee, ticket *domain.Ticket) (bool, error) {
	if actor == nil {
		return false, nil
	}
	if isPrivileged(actor) || ticket.IsAssignee(actor.ID) {
		return true, nil
	}
	if ticket.GroupID == nil {
		return false, nil
	}
	group, err := org.GetGroup(ctx, *ticket.GroupID)
	if err != nil {
		return false, err
	}
	return group.HasMember(actor.ID), nil
}

var statusTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusPending:    {domain.TicketStatusInProgress, domain.TicketStatusBlocked, domain.TicketStatusClosed},
	domain.TicketStatusInProgress: {domain.TicketStatusPending, domain.TicketStatusBlocked, domain.TicketStatusResolved},
	domain.TicketStatusBlocked:    {domain.TicketStatusPending, domain.TicketStatusInProgress},
	domain.TicketStatusResolved:   {domain.TicketStatusInProgress, domain.TicketStatusClosed},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	for _, allowed := range statusTransitions[current] {
		if allowed == next {
			return true
		}
	}
	return false
}
