package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/portal-service/internal/credit"
	"github.com/spec-kit/portal-service/internal/domain"
	"github.com/spec-kit/portal-service/internal/events"
	"github.com/spec-kit/portal-service/internal/repository"
	apperrors "github.com/spec-kit/portal-service/pkg/util/errorutil"
)

// AssignmentService applies assignment and workflow moves to tickets and
// keeps their contributor ledgers in step.
type AssignmentService struct {
	functionalities repository.FunctionalityRepository
	org             *OrgService
	rules           *credit.Rules
	dispatcher      events.Dispatcher
	writer          *ticketWriter
	logger          *zap.Logger
}

// ReassignTarget names one incoming assignee.
type ReassignTarget struct {
	UserID string
	Role   domain.ContributorRole
}

// AdvanceInput describes a workflow move.
type AdvanceInput struct {
	ToNode         string
	Comment        string
	GroupCompleted bool
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps TicketDependencies) *AssignmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rules := deps.Rules
	if rules == nil {
		rules = credit.NewRules(nil, logger)
	}
	return &AssignmentService{
		functionalities: deps.FunctionalityRepo,
		org:             deps.Org,
		rules:           rules,
		dispatcher:      deps.Dispatcher,
		writer:          newTicketWriter(deps.TicketRepo, deps.UpdateRetries, logger, deps.Metrics),
		logger:          logger,
	}
}

// Assign adds an assignee at the ticket's current stage.
func (s *AssignmentService) Assign(ctx context.Context, actor *domain.Employee, ticketID, assigneeID string) (*domain.Ticket, error) {
	assignee, err := s.org.activeEmployee(ctx, assigneeID)
	if err != nil {
		return nil, err
	}
	var tier domain.ContributorType
	ticket, err := s.writer.mutate(ctx, ticketID, "assigned", func(t *domain.Ticket) error {
		wf, err := s.prepare(ctx, actor, t)
		if err != nil {
			return err
		}
		if !t.IsAssignee(assignee.ID) {
			t.Assignees = append(t.Assignees, assignee.Ref())
		}
		tier = s.rules.Assigned(t, assignee.Ref(), wf)
		t.WorkflowHistory = append(t.WorkflowHistory, historyEntry(actor, t.WorkflowStage, domain.HistoryActionAssigned, assignee.Name))
		return nil
	})
	if err != nil {
		return nil, err
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Actor:    actor.Ref(),
		Payload:  events.TicketAssignedPayload{Assignee: assignee.Ref(), ContributorType: tier},
	})
	return ticket, nil
}

// Reassign hands fromUserID's work to the targets, who inherit the replaced credit tier.
func (s *AssignmentService) Reassign(ctx context.Context, actor *domain.Employee, ticketID, fromUserID string, targets []ReassignTarget) (*domain.Ticket, error) {
	if fromUserID == "" || len(targets) == 0 {
		return nil, apperrors.NewValidationError("from_user_id and at least one assignee are required", nil)
	}
	assignees := make([]credit.Assignee, 0, len(targets))
	refs := make([]domain.PersonRef, 0, len(targets))
	for _, target := range targets {
		employee, err := s.org.activeEmployee(ctx, target.UserID)
		if err != nil {
			return nil, err
		}
		switch target.Role {
		case "", domain.ContributorRoleAssignee, domain.ContributorRoleGroupLead, domain.ContributorRoleGroupMember:
		default:
			return nil, apperrors.NewValidationError("invalid contributor role", map[string]any{"role": target.Role})
		}
		assignees = append(assignees, credit.Assignee{UserID: employee.ID, Name: employee.Name, Role: target.Role})
		refs = append(refs, employee.Ref())
	}

	var tier domain.ContributorType
	ticket, err := s.writer.mutate(ctx, ticketID, "reassigned", func(t *domain.Ticket) error {
		wf, err := s.prepare(ctx, actor, t)
		if err != nil {
			return err
		}
		kept := make([]domain.PersonRef, 0, len(t.Assignees)+len(refs))
		for _, a := range t.Assignees {
			if a.UserID != fromUserID {
				kept = append(kept, a)
			}
		}
		for _, ref := range refs {
			if !containsRef(kept, ref.UserID) {
				kept = append(kept, ref)
			}
		}
		t.Assignees = kept
		tier = s.rules.Reassigned(t, fromUserID, assignees, wf)
		t.WorkflowHistory = append(t.WorkflowHistory, historyEntry(actor, t.WorkflowStage, domain.HistoryActionReassigned, ""))
		return nil
	})
	if err != nil {
		return nil, err
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketReassigned,
		TicketID: ticket.ID,
		Actor:    actor.Ref(),
		Payload:  events.TicketReassignedPayload{FromUserID: fromUserID, To: refs, ContributorType: tier},
	})
	return ticket, nil
}

// AssignGroup credits a group at the ticket's current stage.
func (s *AssignmentService) AssignGroup(ctx context.Context, actor *domain.Employee, ticketID, groupID string) (*domain.Ticket, error) {
	group, err := s.org.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	members, err := s.org.GroupMembers(ctx, group)
	if err != nil {
		return nil, err
	}
	var firstNode bool
	ticket, err := s.writer.mutate(ctx, ticketID, "group_assigned", func(t *domain.Ticket) error {
		wf, err := s.prepare(ctx, actor, t)
		if err != nil {
			return err
		}
		t.GroupID = &group.ID
		firstNode = s.rules.GroupAssigned(t, members, wf)
		t.WorkflowHistory = append(t.WorkflowHistory, historyEntry(actor, t.WorkflowStage, domain.HistoryActionGroupAssigned, group.Name))
		return nil
	})
	if err != nil {
		return nil, err
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketGroupAssigned,
		TicketID: ticket.ID,
		Actor:    actor.Ref(),
		Payload: events.TicketGroupAssignedPayload{
			GroupID:     group.ID,
			FirstNode:   firstNode,
			MemberCount: len(members),
		},
	})
	return ticket, nil
}

// Advance moves the ticket along an edge leaving its current stage. Reaching
// an end node resolves the ticket. Contributor entries are kept as earned credit.
func (s *AssignmentService) Advance(ctx context.Context, actor *domain.Employee, ticketID string, input AdvanceInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.ToNode) == "" {
		return nil, apperrors.NewValidationError("to_node is required", nil)
	}
	var fromNode string
	ticket, err := s.writer.mutate(ctx, ticketID, "advanced", func(t *domain.Ticket) error {
		wf, err := s.prepare(ctx, actor, t)
		if err != nil {
			return err
		}
		if !wf.HasEdge(t.WorkflowStage, input.ToNode) {
			return apperrors.NewConflict("no workflow edge from current stage", map[string]any{
				"from": t.WorkflowStage,
				"to":   input.ToNode,
			})
		}
		target, _ := wf.Node(input.ToNode)
		action := domain.HistoryActionAdvanced
		if input.GroupCompleted {
			if t.GroupID == nil {
				return apperrors.NewConflict("ticket has no group assigned", nil)
			}
			action = domain.HistoryActionGroupCompleted
			t.GroupID = nil
		}

		fromNode = t.WorkflowStage
		t.WorkflowHistory = append(t.WorkflowHistory, domain.WorkflowHistoryEntry{
			PerformedBy: actor.Ref(),
			FromNode:    fromNode,
			ToNode:      input.ToNode,
			Action:      action,
			Comment:     strings.TrimSpace(input.Comment),
			Timestamp:   time.Now().UTC(),
		})
		t.WorkflowStage = input.ToNode
		switch {
		case target.Type == domain.NodeTypeEnd:
			t.Status = domain.TicketStatusResolved
		case t.Status == domain.TicketStatusPending:
			t.Status = domain.TicketStatusInProgress
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:     events.EventTicketStageAdvanced,
		TicketID: ticket.ID,
		Actor:    actor.Ref(),
		Payload:  events.TicketStageAdvancedPayload{FromNode: fromNode, ToNode: ticket.WorkflowStage},
	})
	return ticket, nil
}

// prepare checks the actor may work the ticket and loads its workflow.
func (s *AssignmentService) prepare(ctx context.Context, actor *domain.Employee, t *domain.Ticket) (domain.Workflow, error) {
	allowed, err := canWork(ctx, s.org, actor, t)
	if err != nil {
		return domain.Workflow{}, err
	}
	if !allowed {
		return domain.Workflow{}, apperrors.NewForbidden("access denied")
	}
	if t.Status == domain.TicketStatusClosed {
		return domain.Workflow{}, apperrors.NewConflict("ticket is closed", map[string]any{"ticket_id": t.ID})
	}
	functionality, err := s.functionalities.GetByID(ctx, t.FunctionalityID)
	if err != nil {
		return domain.Workflow{}, lookupErr("functionality", t.FunctionalityID, err)
	}
	return functionality.Workflow, nil
}

func historyEntry(actor *domain.Employee, stage, action, comment string) domain.WorkflowHistoryEntry {
	return domain.WorkflowHistoryEntry{
		PerformedBy: actor.Ref(),
		FromNode:    stage,
		ToNode:      stage,
		Action:      action,
		Comment:     comment,
		Timestamp:   time.Now().UTC(),
	}
}

func containsRef(refs []domain.PersonRef, userID string) bool {
	for _, r := range refs {
		if r.UserID == userID {
			return true
		}
	}
	return false
}
