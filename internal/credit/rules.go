package credit

import (
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/portal-service/internal/domain"
)

// Rules decides which ledger mutation a ticket lifecycle event causes.
// Every method rewrites ticket.Contributors in place on the loaded document.
type Rules struct {
	resolver *Resolver
	logger   *zap.Logger
	now      func() time.Time
}

// Option customizes Rules.
type Option func(*Rules)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Rules) {
		r.now = now
	}
}

// NewRules constructs the rule set.
func NewRules(resolver *Resolver, logger *zap.Logger, opts ...Option) *Rules {
	if logger == nil {
		logger = zap.NewNop()
	}
	if resolver == nil {
		resolver = NewResolver(logger)
	}
	r := &Rules{resolver: resolver, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolver exposes the position resolver used by the rules.
func (r *Rules) Resolver() *Resolver {
	return r.resolver
}

// PositionTier is primary at the first employee node and secondary elsewhere.
func (r *Rules) PositionTier(stage string, wf domain.Workflow) domain.ContributorType {
	if r.resolver.IsFirstEmployeeNode(stage, wf) {
		return domain.ContributorPrimary
	}
	return domain.ContributorSecondary
}

// CreatedWithAssignee credits the single assignee of a new ticket as primary.
func (r *Rules) CreatedWithAssignee(ticket *domain.Ticket, assignee domain.PersonRef) {
	ledger := Ledger(ticket.Contributors).AddOrUpdate(assignee.UserID, assignee.Name,
		domain.ContributorRoleAssignee, domain.ContributorPrimary, r.now())
	r.apply(ticket, ledger)
}

// CreatedWithGroup credits a group assigned on creation, which always sits at the first node.
func (r *Rules) CreatedWithGroup(ticket *domain.Ticket, members []GroupMember) {
	r.apply(ticket, Ledger(ticket.Contributors).AddGroup(members, true, r.now()))
}

// Assigned credits an additional assignee according to the ticket's position.
func (r *Rules) Assigned(ticket *domain.Ticket, assignee domain.PersonRef, wf domain.Workflow) domain.ContributorType {
	tier := r.PositionTier(ticket.WorkflowStage, wf)
	ledger := Ledger(ticket.Contributors).AddOrUpdate(assignee.UserID, assignee.Name,
		domain.ContributorRoleAssignee, tier, r.now())
	r.apply(ticket, ledger)
	return tier
}

// Reassigned hands oldUserID's work to the new assignees. The tier carried by
// the replaced entry follows the work; position decides only when there is none.
func (r *Rules) Reassigned(ticket *domain.Ticket, oldUserID string, assignees []Assignee, wf domain.Workflow) domain.ContributorType {
	ledger := Ledger(ticket.Contributors)
	tier := domain.ContributorType("")
	if old, ok := ledger.Active(oldUserID); ok {
		tier = old.ContributorType
	}
	if tier == "" {
		tier = r.PositionTier(ticket.WorkflowStage, wf)
	}
	r.apply(ticket, ledger.Replace(oldUserID, assignees, tier, r.now()))
	return tier
}

// GroupAssigned credits a group at the ticket's current position.
func (r *Rules) GroupAssigned(ticket *domain.Ticket, members []GroupMember, wf domain.Workflow) bool {
	isFirst := r.resolver.IsFirstEmployeeNode(ticket.WorkflowStage, wf)
	r.apply(ticket, Ledger(ticket.Contributors).AddGroup(members, isFirst, r.now()))
	return isFirst
}

// Left retires userID without handing the work to anyone.
func (r *Rules) Left(ticket *domain.Ticket, userID string) {
	r.apply(ticket, Ledger(ticket.Contributors).MarkLeft(userID, r.now()))
}

// apply installs ledger on ticket. The raiser warning fires only when this
// mutation creates or changes the raiser's active entry.
func (r *Rules) apply(ticket *domain.Ticket, ledger Ledger) {
	if raiser := ticket.RaisedBy.UserID; raiser != "" {
		after, held := ledger.Active(raiser)
		before, heldBefore := Ledger(ticket.Contributors).Active(raiser)
		if held && (!heldBefore || !sameEntry(before, after)) {
			r.logger.Warn("ticket raiser holds a contributor entry; excluded from credit",
				zap.String("ticket_id", ticket.ID),
				zap.String("user_id", ticket.RaisedBy.UserID))
		}
	}
	ticket.Contributors = ledger
}

func sameEntry(a, b domain.Contributor) bool {
	return a.Role == b.Role && a.ContributorType == b.ContributorType && a.JoinedAt.Equal(b.JoinedAt)
}
