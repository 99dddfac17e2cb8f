package credit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/portal-service/internal/domain"
)

func linearWorkflow() domain.Workflow {
	return domain.Workflow{
		Nodes: []domain.WorkflowNode{
			{ID: "start", Type: domain.NodeTypeStart},
			{ID: "triage", Type: domain.NodeTypeEmployee},
			{ID: "fix", Type: domain.NodeTypeGroup},
			{ID: "end", Type: domain.NodeTypeEnd},
		},
		Edges: []domain.WorkflowEdge{
			{Source: "start", Target: "triage"},
			{Source: "triage", Target: "fix"},
			{Source: "fix", Target: "end"},
		},
	}
}

func TestIsFirstEmployeeNode(t *testing.T) {
	wf := linearWorkflow()

	assert.True(t, IsFirstEmployeeNode("triage", wf))
	assert.False(t, IsFirstEmployeeNode("fix", wf))
	assert.False(t, IsFirstEmployeeNode("start", wf))
	assert.False(t, IsFirstEmployeeNode("", wf))
}

func TestIsFirstEmployeeNodeMalformedGraphs(t *testing.T) {
	noStart := domain.Workflow{
		Nodes: []domain.WorkflowNode{{ID: "a", Type: domain.NodeTypeEmployee}},
	}
	assert.False(t, IsFirstEmployeeNode("a", noStart))

	noEdge := domain.Workflow{
		Nodes: []domain.WorkflowNode{{ID: "s", Type: domain.NodeTypeStart}, {ID: "a", Type: domain.NodeTypeEmployee}},
	}
	assert.False(t, IsFirstEmployeeNode("a", noEdge))

	forked := domain.Workflow{
		Nodes: []domain.WorkflowNode{
			{ID: "s", Type: domain.NodeTypeStart},
			{ID: "a", Type: domain.NodeTypeEmployee},
			{ID: "b", Type: domain.NodeTypeEmployee},
		},
		Edges: []domain.WorkflowEdge{{Source: "s", Target: "b"}, {Source: "s", Target: "a"}},
	}
	assert.True(t, IsFirstEmployeeNode("b", forked))
	assert.False(t, IsFirstEmployeeNode("a", forked))
}

func TestIsFirstEmployeeNodeDeterministic(t *testing.T) {
	wf := linearWorkflow()
	first := IsFirstEmployeeNode("triage", wf)
	for i := 0; i < 5; i++ {
		_ = IsFirstEmployeeNode("fix", wf)
		assert.Equal(t, first, IsFirstEmployeeNode("triage", wf))
	}
}

func TestResolverWarnsOnAmbiguousGraph(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	resolver := NewResolver(zap.New(core))

	forked := linearWorkflow()
	forked.Edges = append(forked.Edges, domain.WorkflowEdge{Source: "start", Target: "fix"})

	assert.True(t, resolver.IsFirstEmployeeNode("triage", forked))
	assert.Equal(t, 1, logs.Len())

	assert.True(t, resolver.IsFirstEmployeeNode("triage", linearWorkflow()))
	assert.Equal(t, 1, logs.Len())

	assert.False(t, resolver.IsFirstEmployeeNode("triage", domain.Workflow{}))
	assert.Equal(t, 2, logs.Len())
}

func TestWasContributorAtFirstNode(t *testing.T) {
	history := []domain.WorkflowHistoryEntry{
		{PerformedBy: domain.PersonRef{UserID: "e1"}, FromNode: "triage", ToNode: "fix"},
		{PerformedBy: domain.PersonRef{UserID: "e2"}, FromNode: "fix", ToNode: "end"},
	}
	ticket := &domain.Ticket{WorkflowStage: "fix", Assignees: []domain.PersonRef{{UserID: "e3"}}}

	assert.True(t, WasContributorAtFirstNode("e1", "triage", history, ticket))
	assert.False(t, WasContributorAtFirstNode("e2", "triage", history, ticket))
	assert.False(t, WasContributorAtFirstNode("e3", "triage", history, ticket))

	ticket.WorkflowStage = "triage"
	assert.True(t, WasContributorAtFirstNode("e3", "triage", history, ticket))
	assert.False(t, WasContributorAtFirstNode("e3", "", history, ticket))
}
