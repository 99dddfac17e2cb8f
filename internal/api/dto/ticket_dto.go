package dto

import (
	"time"

	"github.com/spec-kit/portal-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	FunctionalityID string                `json:"functionality_id"`
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Priority        domain.TicketPriority `json:"priority"`
	AssigneeID      *string               `json:"assignee_id"`
	GroupID         *string               `json:"group_id"`
}

// AssignRequest payload.
type AssignRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// ReassignTarget is one incoming assignee.
type ReassignTarget struct {
	UserID string                 `json:"user_id"`
	Role   domain.ContributorRole `json:"role"`
}

// ReassignRequest payload.
type ReassignRequest struct {
	FromUserID string           `json:"from_user_id"`
	Assignees  []ReassignTarget `json:"assignees"`
}

// AssignGroupRequest payload.
type AssignGroupRequest struct {
	GroupID string `json:"group_id"`
}

// AdvanceRequest payload.
type AdvanceRequest struct {
	ToNode         string `json:"to_node"`
	Comment        string `json:"comment"`
	GroupCompleted bool   `json:"group_completed"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status  domain.TicketStatus `json:"status"`
	Comment string              `json:"comment"`
}

// TicketSummary response.
type TicketSummary struct {
	ID              string                `json:"id"`
	Key             string                `json:"key"`
	FunctionalityID string                `json:"functionality_id"`
	Title           string                `json:"title"`
	Status          domain.TicketStatus   `json:"status"`
	Priority        domain.TicketPriority `json:"priority"`
	WorkflowStage   string                `json:"workflow_stage"`
	RaisedBy        domain.PersonRef      `json:"raised_by"`
	Assignees       []domain.PersonRef    `json:"assignees"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info including its ledger.
type TicketDetailResponse struct {
	TicketSummary
	Description     string                        `json:"description"`
	GroupID         *string                       `json:"group_id,omitempty"`
	PrimaryCredit   *domain.Contributor           `json:"primary_credit,omitempty"`
	Contributors    []domain.Contributor          `json:"contributors"`
	WorkflowHistory []domain.WorkflowHistoryEntry `json:"workflow_history"`
	Version         int64                         `json:"version"`
}

// NewTicketSummary maps a ticket to its list view.
func NewTicketSummary(t *domain.Ticket) TicketSummary {
	assignees := t.Assignees
	if assignees == nil {
		assignees = []domain.PersonRef{}
	}
	return TicketSummary{
		ID:              t.ID,
		Key:             t.Key,
		FunctionalityID: t.FunctionalityID,
		Title:           t.Title,
		Status:          t.Status,
		Priority:        t.Priority,
		WorkflowStage:   t.WorkflowStage,
		RaisedBy:        t.RaisedBy,
		Assignees:       assignees,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

// NewTicketDetail maps a ticket to its detail view.
func NewTicketDetail(t *domain.Ticket) TicketDetailResponse {
	detail := TicketDetailResponse{
		TicketSummary:   NewTicketSummary(t),
		Description:     t.Description,
		GroupID:         t.GroupID,
		Contributors:    t.Contributors,
		WorkflowHistory: t.WorkflowHistory,
		Version:         t.Version,
	}
	if primary, ok := t.PrimaryCredit(); ok {
		detail.PrimaryCredit = &primary
	}
	return detail
}
