package events

import (
	"time"

	"github.com/spec-kit/portal-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketReassigned    EventType = "ticket_reassigned"
	EventTicketGroupAssigned EventType = "ticket_group_assigned"
	EventTicketStageAdvanced EventType = "ticket_stage_advanced"
	EventTicketStatusChanged EventType = "ticket_status_changed"
)

// TicketEventTypes lists every event that changes a ticket document.
var TicketEventTypes = []EventType{
	EventTicketCreated,
	EventTicketAssigned,
	EventTicketReassigned,
	EventTicketGroupAssigned,
	EventTicketStageAdvanced,
	EventTicketStatusChanged,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string           `json:"id"`
	Type      EventType        `json:"type"`
	TicketID  string           `json:"ticket_id"`
	Actor     domain.PersonRef `json:"actor"`
	Timestamp time.Time        `json:"timestamp"`
	Payload   interface{}      `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	FunctionalityID string                `json:"functionality_id"`
	Priority        domain.TicketPriority `json:"priority"`
	Title           string                `json:"title"`
	Contributors    []string              `json:"contributors"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	Assignee        domain.PersonRef       `json:"assignee"`
	ContributorType domain.ContributorType `json:"contributor_type"`
}

// TicketReassignedPayload payload.
type TicketReassignedPayload struct {
	FromUserID      string                 `json:"from_user_id"`
	To              []domain.PersonRef     `json:"to"`
	ContributorType domain.ContributorType `json:"contributor_type"`
}

// TicketGroupAssignedPayload payload.
type TicketGroupAssignedPayload struct {
	GroupID     string `json:"group_id"`
	FirstNode   bool   `json:"first_node"`
	MemberCount int    `json:"member_count"`
}

// TicketStageAdvancedPayload payload.
type TicketStageAdvancedPayload struct {
	FromNode string `json:"from_node"`
	ToNode   string `json:"to_node"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}
