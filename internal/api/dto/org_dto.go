package dto

// CreateGroupRequest payload.
type CreateGroupRequest struct {
	Name      string   `json:"name"`
	LeadID    string   `json:"lead_id"`
	MemberIDs []string `json:"member_ids"`
}
