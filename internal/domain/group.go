package domain

import "time"

// Group is a set of employees that can be assigned a ticket together.
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LeadID    string    `json:"lead_id"`
	MemberIDs []string  `json:"member_ids"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasMember reports whether userID is the lead or a member of the group.
func (g *Group) HasMember(userID string) bool {
	if g.LeadID == userID {
		return true
	}
	for _, id := range g.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}
