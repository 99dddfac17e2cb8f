package credit

import (
	"time"

	"github.com/spec-kit/portal-service/internal/domain"
)

// Backfill repairs a legacy ledger. Entries without a tier get one
// reconstructed from the audit trail; entries that carry a tier are left
// alone. A ticket with no entries at all is seeded from its assignees.
// It returns the repaired ledger and how many entries changed.
func Backfill(ticket *domain.Ticket, firstNodeID string, now time.Time) (Ledger, int) {
	tierFor := func(userID string) domain.ContributorType {
		if WasContributorAtFirstNode(userID, firstNodeID, ticket.WorkflowHistory, ticket) {
			return domain.ContributorPrimary
		}
		return domain.ContributorSecondary
	}

	if len(ticket.Contributors) == 0 {
		joined := ticket.CreatedAt
		if joined.IsZero() {
			joined = now
		}
		out := Ledger{}
		for _, a := range ticket.Assignees {
			if a.UserID == ticket.RaisedBy.UserID {
				continue
			}
			out = out.AddOrUpdate(a.UserID, a.Name, domain.ContributorRoleAssignee, tierFor(a.UserID), joined)
		}
		return out, len(out)
	}

	out := Ledger(ticket.Contributors).clone()
	changed := 0
	for i := range out {
		if out[i].ContributorType != "" {
			continue
		}
		out[i].ContributorType = tierFor(out[i].UserID)
		changed++
	}
	return out, changed
}
