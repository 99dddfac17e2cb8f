package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "pending"
	TicketStatusInProgress TicketStatus = "in-progress"
	TicketStatusBlocked    TicketStatus = "blocked"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketStatuses lists every status in dashboard order.
var TicketStatuses = []TicketStatus{
	TicketStatusPending,
	TicketStatusInProgress,
	TicketStatusBlocked,
	TicketStatusResolved,
	TicketStatusClosed,
}

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	for _, candidate := range TicketStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// PersonRef is a denormalized employee snapshot.
type PersonRef struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// Workflow history actions.
const (
	HistoryActionCreated        = "created"
	HistoryActionAssigned       = "assigned"
	HistoryActionReassigned     = "reassigned"
	HistoryActionGroupAssigned  = "group_assigned"
	HistoryActionAdvanced       = "advanced"
	HistoryActionGroupCompleted = "group_completed"
	HistoryActionStatusChanged  = "status_changed"
)

// WorkflowHistoryEntry is an append-only audit record of a stage move.
type WorkflowHistoryEntry struct {
	PerformedBy PersonRef `json:"performed_by"`
	FromNode    string    `json:"from_node"`
	ToNode      string    `json:"to_node"`
	Action      string    `json:"action,omitempty"`
	Comment     string    `json:"comment,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Ticket is the unit of work that carries a contributor ledger.
type Ticket struct {
	ID              string                 `json:"id"`
	Key             string                 `json:"key"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	FunctionalityID string                 `json:"functionality_id"`
	RaisedBy        PersonRef              `json:"raised_by"`
	Status          TicketStatus           `json:"status"`
	Priority        TicketPriority         `json:"priority"`
	WorkflowStage   string                 `json:"workflow_stage"`
	Assignees       []PersonRef            `json:"assignees"`
	GroupID         *string                `json:"group_id,omitempty"`
	Contributors    []Contributor          `json:"contributors"`
	WorkflowHistory []WorkflowHistoryEntry `json:"workflow_history"`
	Version         int64                  `json:"version"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// IsAssignee reports whether userID is among the current assignees.
func (t *Ticket) IsAssignee(userID string) bool {
	for _, a := range t.Assignees {
		if a.UserID == userID {
			return true
		}
	}
	return false
}

// PrimaryCredit returns the first active primary contributor, if any.
func (t *Ticket) PrimaryCredit() (Contributor, bool) {
	for _, c := range t.Contributors {
		if c.Active() && c.ContributorType == ContributorPrimary {
			return c, true
		}
	}
	return Contributor{}, false
}

// SecondaryCredits returns the active secondary contributors.
func (t *Ticket) SecondaryCredits() []Contributor {
	var out []Contributor
	for _, c := range t.Contributors {
		if c.Active() && c.ContributorType == ContributorSecondary {
			out = append(out, c)
		}
	}
	return out
}
