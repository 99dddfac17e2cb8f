package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/portal-service/internal/domain"
)

func seedLegacyTicket(t *testing.T, f *fixture) *domain.Ticket {
	t.Helper()
	ticket := &domain.Ticket{
		Key:             "TCK-LEGACY",
		Title:           "Legacy",
		FunctionalityID: "it-support",
		RaisedBy:        f.raiser.Ref(),
		Status:          domain.TicketStatusInProgress,
		Priority:        domain.TicketPriorityLow,
		WorkflowStage:   "fix",
		Assignees:       []domain.PersonRef{f.bob.Ref()},
		Contributors: []domain.Contributor{
			{UserID: f.ann.ID, Name: f.ann.Name, Role: domain.ContributorRoleAssignee},
			{UserID: f.bob.ID, Name: f.bob.Name, Role: domain.ContributorRoleAssignee},
			{UserID: f.cal.ID, Name: f.cal.Name, Role: domain.ContributorRoleAssignee, ContributorType: domain.ContributorSecondary},
		},
		WorkflowHistory: []domain.WorkflowHistoryEntry{
			{PerformedBy: f.ann.Ref(), FromNode: "triage", ToNode: "fix", Action: domain.HistoryActionAdvanced},
		},
	}
	require.NoError(t, f.store.Tickets.Create(context.Background(), ticket))
	return ticket
}

func TestBackfillDryRunWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	legacy := seedLegacyTicket(t, f)
	f.createTicket(t, TicketCreateInput{AssigneeID: &f.ann.ID})

	svc := NewBackfillService(f.store.Tickets, f.store.Functionalities, zap.NewNop(), nil, 1)
	report, err := svc.Run(ctx, true)
	require.NoError(t, err)

	assert.True(t, report.DryRun)
	assert.Equal(t, 2, report.Scanned)
	require.Len(t, report.Changes, 1)
	assert.Equal(t, legacy.ID, report.Changes[0].TicketID)
	assert.Equal(t, 2, report.Entries())

	stored, err := f.store.Tickets.GetByID(ctx, legacy.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Contributors[0].ContributorType)
}

func TestBackfillRepairsLegacyTickets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	legacy := seedLegacyTicket(t, f)

	svc := NewBackfillService(f.store.Tickets, f.store.Functionalities, zap.NewNop(), nil, 1)
	report, err := svc.Run(ctx, false)
	require.NoError(t, err)
	require.Len(t, report.Changes, 1)

	stored, err := f.store.Tickets.GetByID(ctx, legacy.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContributorPrimary, stored.Contributors[0].ContributorType, "worked the first node")
	assert.Equal(t, domain.ContributorSecondary, stored.Contributors[1].ContributorType)
	assert.Equal(t, domain.ContributorSecondary, stored.Contributors[2].ContributorType)

	again, err := svc.Run(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, again.Changes)
}

func TestBackfillDropsCachedContributions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedLegacyTicket(t, f)
	cache := newMemoryCache()
	analyticsSvc := NewAnalyticsService(AnalyticsDependencies{
		Tickets:  f.store.Tickets,
		Cache:    cache,
		CacheTTL: time.Minute,
	})

	before, err := analyticsSvc.EmployeeContributions(ctx, f.ann.ID)
	require.NoError(t, err)
	assert.Zero(t, before.Primary.Count, "untyped entries earn no credit")

	svc := NewBackfillService(f.store.Tickets, f.store.Functionalities, zap.NewNop(), nil, 1).WithCache(cache)
	_, err = svc.Run(ctx, true)
	require.NoError(t, err)
	assert.Zero(t, cache.deletes)

	report, err := svc.Run(ctx, false)
	require.NoError(t, err)
	require.Len(t, report.Changes, 1)
	assert.Equal(t, 1, cache.deletes)

	after, err := analyticsSvc.EmployeeContributions(ctx, f.ann.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, after.Primary.Count)
	assert.Zero(t, cache.hits)
}
