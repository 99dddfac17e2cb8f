package credit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/portal-service/internal/domain"
)

func newTestRules() *Rules {
	clock := t0
	return NewRules(nil, nil, WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))
}

func TestCreatedWithAssigneeIsPrimary(t *testing.T) {
	rules := newTestRules()
	ticket := &domain.Ticket{ID: "t1", WorkflowStage: "triage"}

	rules.CreatedWithAssignee(ticket, domain.PersonRef{UserID: "e1", Name: "Ana"})

	primary, ok := ticket.PrimaryCredit()
	require.True(t, ok)
	assert.Equal(t, "e1", primary.UserID)
	assert.Equal(t, domain.ContributorRoleAssignee, primary.Role)
}

func TestCreatedWithGroup(t *testing.T) {
	rules := newTestRules()
	ticket := &domain.Ticket{ID: "t1"}

	rules.CreatedWithGroup(ticket, []GroupMember{{UserID: "L", IsLead: true}, {UserID: "M"}})

	primary, ok := ticket.PrimaryCredit()
	require.True(t, ok)
	assert.Equal(t, "L", primary.UserID)
	secondary := ticket.SecondaryCredits()
	require.Len(t, secondary, 1)
	assert.Equal(t, "M", secondary[0].UserID)
}

func TestAssignedUsesPosition(t *testing.T) {
	rules := newTestRules()
	wf := linearWorkflow()

	atFirst := &domain.Ticket{WorkflowStage: "triage"}
	assert.Equal(t, domain.ContributorPrimary, rules.Assigned(atFirst, domain.PersonRef{UserID: "e1"}, wf))

	later := &domain.Ticket{WorkflowStage: "fix"}
	assert.Equal(t, domain.ContributorSecondary, rules.Assigned(later, domain.PersonRef{UserID: "e1"}, wf))
}

func TestReassignedInheritsTierAtAnyNode(t *testing.T) {
	rules := newTestRules()
	wf := linearWorkflow()
	ticket := &domain.Ticket{WorkflowStage: "triage"}
	rules.CreatedWithAssignee(ticket, domain.PersonRef{UserID: "e1", Name: "Ana"})

	ticket.WorkflowStage = "fix"
	tier := rules.Reassigned(ticket, "e1", []Assignee{{UserID: "e2", Name: "Ben"}}, wf)

	assert.Equal(t, domain.ContributorPrimary, tier)
	primary, ok := ticket.PrimaryCredit()
	require.True(t, ok)
	assert.Equal(t, "e2", primary.UserID)
	require.Len(t, ticket.Contributors, 2)
	assert.NotNil(t, ticket.Contributors[0].LeftAt)
}

func TestReassignedFallsBackToPosition(t *testing.T) {
	rules := newTestRules()
	ticket := &domain.Ticket{WorkflowStage: "fix"}

	tier := rules.Reassigned(ticket, "nobody", []Assignee{{UserID: "e2"}}, linearWorkflow())

	assert.Equal(t, domain.ContributorSecondary, tier)
}

func TestGroupAssignedResolvesFirstNode(t *testing.T) {
	rules := newTestRules()
	wf := linearWorkflow()
	members := []GroupMember{{UserID: "L", IsLead: true}, {UserID: "M"}}

	ticket := &domain.Ticket{WorkflowStage: "fix"}
	assert.False(t, rules.GroupAssigned(ticket, members, wf))
	_, ok := ticket.PrimaryCredit()
	assert.False(t, ok)

	first := &domain.Ticket{WorkflowStage: "triage"}
	assert.True(t, rules.GroupAssigned(first, members, wf))
	primary, ok := first.PrimaryCredit()
	require.True(t, ok)
	assert.Equal(t, "L", primary.UserID)
}

func TestRaiserInLedgerIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	rules := NewRules(nil, zap.New(core))
	ticket := &domain.Ticket{ID: "t1", RaisedBy: domain.PersonRef{UserID: "r"}, WorkflowStage: "fix"}

	rules.GroupAssigned(ticket, []GroupMember{{UserID: "r"}}, linearWorkflow())

	assert.Len(t, ticket.Contributors, 1)
	assert.Equal(t, 1, logs.FilterMessageSnippet("raiser").Len())
}

func TestRaiserWarningOnlyWhenEntryChanges(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	rules := NewRules(nil, zap.New(core))
	ticket := &domain.Ticket{ID: "t1", RaisedBy: domain.PersonRef{UserID: "r"}, WorkflowStage: "fix"}

	rules.GroupAssigned(ticket, []GroupMember{{UserID: "r"}}, linearWorkflow())
	require.Equal(t, 1, logs.FilterMessageSnippet("raiser").Len())

	rules.Assigned(ticket, domain.PersonRef{UserID: "a", Name: "Ann"}, linearWorkflow())
	rules.Left(ticket, "a")

	assert.Len(t, ticket.Contributors, 2)
	assert.Equal(t, 1, logs.FilterMessageSnippet("raiser").Len())
}
