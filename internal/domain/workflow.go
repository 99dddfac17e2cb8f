package domain

import (
	"errors"
	"fmt"
	"time"
)

// NodeType classifies workflow nodes.
type NodeType string

const (
	NodeTypeStart    NodeType = "start"
	NodeTypeEmployee NodeType = "employee"
	NodeTypeGroup    NodeType = "group"
	NodeTypeEnd      NodeType = "end"
)

// WorkflowNode is a position in a workflow graph.
type WorkflowNode struct {
	ID    string   `json:"id" yaml:"id"`
	Type  NodeType `json:"type" yaml:"type"`
	Label string   `json:"label,omitempty" yaml:"label,omitempty"`
}

// WorkflowEdge is a directed transition between two nodes.
type WorkflowEdge struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// Workflow is a directed graph with a single start node.
type Workflow struct {
	Nodes []WorkflowNode `json:"nodes" yaml:"nodes"`
	Edges []WorkflowEdge `json:"edges" yaml:"edges"`
}

var (
	ErrNoStartNode        = errors.New("workflow has no start node")
	ErrMultipleStartNodes = errors.New("workflow has more than one start node")
	ErrStartOutDegree     = errors.New("start node must have exactly one outgoing edge")
)

// Validate checks the structural invariants that the credit resolver relies on.
func (w Workflow) Validate() error {
	ids := make(map[string]NodeType, len(w.Nodes))
	startID := ""
	for _, n := range w.Nodes {
		if n.ID == "" {
			return errors.New("workflow node id required")
		}
		if _, dup := ids[n.ID]; dup {
			return fmt.Errorf("duplicate workflow node %q", n.ID)
		}
		ids[n.ID] = n.Type
		if n.Type == NodeTypeStart {
			if startID != "" {
				return ErrMultipleStartNodes
			}
			startID = n.ID
		}
	}
	if startID == "" {
		return ErrNoStartNode
	}
	outDegree := 0
	for _, e := range w.Edges {
		if _, ok := ids[e.Source]; !ok {
			return fmt.Errorf("edge source %q is not a node", e.Source)
		}
		if _, ok := ids[e.Target]; !ok {
			return fmt.Errorf("edge target %q is not a node", e.Target)
		}
		if e.Source == startID {
			outDegree++
		}
	}
	if outDegree != 1 {
		return fmt.Errorf("%w: found %d", ErrStartOutDegree, outDegree)
	}
	return nil
}

// Node returns the node with the given id.
func (w Workflow) Node(id string) (WorkflowNode, bool) {
	for _, n := range w.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return WorkflowNode{}, false
}

// HasEdge reports whether a transition source -> target exists.
func (w Workflow) HasEdge(source, target string) bool {
	for _, e := range w.Edges {
		if e.Source == source && e.Target == target {
			return true
		}
	}
	return false
}

// Functionality owns a workflow and is the category a ticket is raised under.
type Functionality struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Department  string    `json:"department" yaml:"department"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Workflow    Workflow  `json:"workflow" yaml:"workflow"`
	CreatedAt   time.Time `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"-"`
}
