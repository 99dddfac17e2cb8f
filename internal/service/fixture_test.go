package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/portal-service/internal/config"
	"github.com/spec-kit/portal-service/internal/credit"
	"github.com/spec-kit/portal-service/internal/domain"
	"github.com/spec-kit/portal-service/internal/events"
	"github.com/spec-kit/portal-service/internal/observability"
	"github.com/spec-kit/portal-service/internal/persistence"
	"github.com/spec-kit/portal-service/internal/repository/boltstore"
	apperrors "github.com/spec-kit/portal-service/pkg/util/errorutil"
)

type fixture struct {
	store      *boltstore.Store
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	org        *OrgService
	tickets    *TicketService
	assignment *AssignmentService

	admin, manager, raiser, ann, bob, cal *domain.Employee
	group                                 *domain.Group
}

func linearFunctionality() *domain.Functionality {
	return &domain.Functionality{
		ID:   "it-support",
		Name: "IT support",
		Workflow: domain.Workflow{
			Nodes: []domain.WorkflowNode{
				{ID: "start", Type: domain.NodeTypeStart},
				{ID: "triage", Type: domain.NodeTypeEmployee},
				{ID: "fix", Type: domain.NodeTypeGroup},
				{ID: "done", Type: domain.NodeTypeEnd},
			},
			Edges: []domain.WorkflowEdge{
				{Source: "start", Target: "triage"},
				{Source: "triage", Target: "fix"},
				{Source: "fix", Target: "done"},
			},
		},
	}
}

func openStore(t *testing.T) *boltstore.Store {
	t.Helper()
	db, err := persistence.NewBolt(config.BoltConfig{Path: filepath.Join(t.TempDir(), "portal.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return boltstore.New(db)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{
		store:      openStore(t),
		dispatcher: events.NewInMemoryDispatcher(zap.NewNop()),
		metrics:    observability.NewMetrics(),
	}

	mk := func(name string, role domain.EmployeeRole) *domain.Employee {
		e := &domain.Employee{Name: name, Email: name + "@corp.io", Role: role, Active: true}
		require.NoError(t, f.store.Employees.Create(ctx, e))
		return e
	}
	f.admin = mk("admin", domain.EmployeeRoleAdmin)
	f.manager = mk("manager", domain.EmployeeRoleManager)
	f.raiser = mk("raiser", domain.EmployeeRoleEmployee)
	f.ann = mk("ann", domain.EmployeeRoleEmployee)
	f.bob = mk("bob", domain.EmployeeRoleEmployee)
	f.cal = mk("cal", domain.EmployeeRoleEmployee)

	f.group = &domain.Group{Name: "network", LeadID: f.bob.ID, MemberIDs: []string{f.cal.ID}}
	require.NoError(t, f.store.Groups.Create(ctx, f.group))
	require.NoError(t, f.store.Functionalities.Save(ctx, linearFunctionality()))

	f.org = NewOrgService(OrgDependencies{EmployeeRepo: f.store.Employees, GroupRepo: f.store.Groups})
	deps := TicketDependencies{
		TicketRepo:        f.store.Tickets,
		FunctionalityRepo: f.store.Functionalities,
		Org:               f.org,
		Rules:             credit.NewRules(nil, zap.NewNop()),
		Dispatcher:        f.dispatcher,
		Logger:            zap.NewNop(),
		Metrics:           f.metrics,
		UpdateRetries:     3,
	}
	f.tickets = NewTicketService(deps)
	f.assignment = NewAssignmentService(deps)
	return f
}

func (f *fixture) createTicket(t *testing.T, input TicketCreateInput) *domain.Ticket {
	t.Helper()
	if input.FunctionalityID == "" {
		input.FunctionalityID = "it-support"
	}
	if input.Title == "" {
		input.Title = "Printer on fire"
	}
	ticket, err := f.tickets.CreateTicket(context.Background(), f.raiser, input)
	require.NoError(t, err)
	return ticket
}

func activeEntry(t *testing.T, ticket *domain.Ticket, userID string) domain.Contributor {
	t.Helper()
	entry, ok := credit.Ledger(ticket.Contributors).Active(userID)
	require.True(t, ok, "no active entry for %s", userID)
	return entry
}

func errCode(err error) string {
	if err == nil {
		return ""
	}
	return apperrors.ToDomainError(err).Code
}
