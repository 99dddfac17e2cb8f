package domain

import "time"

// ContributorRole describes what a person did on a ticket when credit was granted.
type ContributorRole string

const (
	ContributorRoleAssignee    ContributorRole = "assignee"
	ContributorRoleGroupLead   ContributorRole = "group_lead"
	ContributorRoleGroupMember ContributorRole = "group_member"
)

// ContributorType is the credit tier of a contributor entry.
type ContributorType string

const (
	ContributorPrimary   ContributorType = "primary"
	ContributorSecondary ContributorType = "secondary"
)

// Contributor is one entry of a ticket's contributor ledger.
// Entries with LeftAt set are historical and never removed.
type Contributor struct {
	UserID          string          `json:"user_id"`
	Name            string          `json:"name"`
	Role            ContributorRole `json:"role"`
	ContributorType ContributorType `json:"contributor_type,omitempty"`
	JoinedAt        time.Time       `json:"joined_at"`
	LeftAt          *time.Time      `json:"left_at,omitempty"`
}

// Active reports whether the contributor still holds the work.
func (c Contributor) Active() bool {
	return c.LeftAt == nil
}
