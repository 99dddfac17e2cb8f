package credit

import (
	"go.uber.org/zap"

	"github.com/spec-kit/portal-service/internal/domain"
)

// FirstEmployeeNode returns the target of the edge leaving the start node.
// When start has several outgoing edges the first one in list order wins.
func FirstEmployeeNode(wf domain.Workflow) (string, bool) {
	startID, ok := startNode(wf)
	if !ok {
		return "", false
	}
	for _, e := range wf.Edges {
		if e.Source == startID {
			return e.Target, true
		}
	}
	return "", false
}

// IsFirstEmployeeNode reports whether nodeID is the first actionable node after start.
func IsFirstEmployeeNode(nodeID string, wf domain.Workflow) bool {
	first, ok := FirstEmployeeNode(wf)
	return ok && first == nodeID
}

// WasContributorAtFirstNode reconstructs, from the audit trail, whether userID
// worked the first node. Only used by the contributor backfill.
func WasContributorAtFirstNode(userID, firstNodeID string, history []domain.WorkflowHistoryEntry, ticket *domain.Ticket) bool {
	if firstNodeID == "" {
		return false
	}
	for _, h := range history {
		if h.PerformedBy.UserID != userID {
			continue
		}
		if h.ToNode == firstNodeID || h.FromNode == firstNodeID {
			return true
		}
	}
	if ticket == nil || ticket.WorkflowStage != firstNodeID {
		return false
	}
	return ticket.IsAssignee(userID)
}

func startNode(wf domain.Workflow) (string, bool) {
	for _, n := range wf.Nodes {
		if n.Type == domain.NodeTypeStart {
			return n.ID, true
		}
	}
	return "", false
}

// Resolver wraps the position functions and reports malformed graphs.
type Resolver struct {
	logger *zap.Logger
}

// NewResolver builds a resolver. A nil logger disables warnings.
func NewResolver(logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{logger: logger}
}

// FirstEmployeeNode resolves the first node and warns on ambiguous graphs.
func (r *Resolver) FirstEmployeeNode(wf domain.Workflow) (string, bool) {
	r.inspect(wf)
	return FirstEmployeeNode(wf)
}

// IsFirstEmployeeNode is the logging variant of the package function.
func (r *Resolver) IsFirstEmployeeNode(nodeID string, wf domain.Workflow) bool {
	r.inspect(wf)
	return IsFirstEmployeeNode(nodeID, wf)
}

func (r *Resolver) inspect(wf domain.Workflow) {
	startID, ok := startNode(wf)
	if !ok {
		r.logger.Warn("workflow has no start node", zap.Int("nodes", len(wf.Nodes)))
		return
	}
	outgoing := 0
	for _, e := range wf.Edges {
		if e.Source == startID {
			outgoing++
		}
	}
	switch {
	case outgoing == 0:
		r.logger.Warn("workflow start node has no outgoing edge", zap.String("start", startID))
	case outgoing > 1:
		r.logger.Warn("workflow start node has multiple outgoing edges; using the first",
			zap.String("start", startID),
			zap.Int("edges", outgoing))
	}
}
