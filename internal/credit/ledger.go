package credit

import (
	"time"

	"github.com/spec-kit/portal-service/internal/domain"
)

// Ledger is the contributor list of one ticket. Operations return a new
// ledger and leave the receiver untouched.
type Ledger []domain.Contributor

// GroupMember is one person of a group assignment.
type GroupMember struct {
	UserID string
	Name   string
	IsLead bool
}

// Assignee is one person receiving work on reassignment.
type Assignee struct {
	UserID string
	Name   string
	Role   domain.ContributorRole
}

func (l Ledger) clone() Ledger {
	out := make(Ledger, len(l), len(l)+1)
	copy(out, l)
	return out
}

func (l Ledger) activeIndex(userID string) int {
	for i := range l {
		if l[i].UserID == userID && l[i].Active() {
			return i
		}
	}
	return -1
}

// Active returns the active entry for userID.
func (l Ledger) Active(userID string) (domain.Contributor, bool) {
	if i := l.activeIndex(userID); i >= 0 {
		return l[i], true
	}
	return domain.Contributor{}, false
}

// ActiveEntries returns entries without LeftAt, in ledger order.
func (l Ledger) ActiveEntries() []domain.Contributor {
	out := make([]domain.Contributor, 0, len(l))
	for _, c := range l {
		if c.Active() {
			out = append(out, c)
		}
	}
	return out
}

// AddOrUpdate updates the active entry for userID or appends a new one.
// Role always overwrites; the tier only moves secondary -> primary.
func (l Ledger) AddOrUpdate(userID, name string, role domain.ContributorRole, tier domain.ContributorType, now time.Time) Ledger {
	out := l.clone()
	if i := out.activeIndex(userID); i >= 0 {
		out[i].Role = role
		switch {
		case out[i].ContributorType == "":
			out[i].ContributorType = tier
		case tier == domain.ContributorPrimary:
			out[i].ContributorType = domain.ContributorPrimary
		}
		return out
	}
	return append(out, domain.Contributor{
		UserID:          userID,
		Name:            name,
		Role:            role,
		ContributorType: tier,
		JoinedAt:        now,
	})
}

// MarkLeft stamps LeftAt on the active entry for userID. Missing entries are ignored.
func (l Ledger) MarkLeft(userID string, now time.Time) Ledger {
	out := l.clone()
	if i := out.activeIndex(userID); i >= 0 {
		left := now
		out[i].LeftAt = &left
	}
	return out
}

// AddGroup folds AddOrUpdate over members in order. Only the lead at the
// first node earns primary.
func (l Ledger) AddGroup(members []GroupMember, isFirstNode bool, now time.Time) Ledger {
	out := l.clone()
	for _, m := range members {
		role := domain.ContributorRoleGroupMember
		tier := domain.ContributorSecondary
		if m.IsLead {
			role = domain.ContributorRoleGroupLead
			if isFirstNode {
				tier = domain.ContributorPrimary
			}
		}
		out = out.AddOrUpdate(m.UserID, m.Name, role, tier, now)
	}
	return out
}

// Replace retires oldUserID and credits each new assignee with tier.
func (l Ledger) Replace(oldUserID string, assignees []Assignee, tier domain.ContributorType, now time.Time) Ledger {
	out := l.MarkLeft(oldUserID, now)
	for _, a := range assignees {
		role := a.Role
		if role == "" {
			role = domain.ContributorRoleAssignee
		}
		out = out.AddOrUpdate(a.UserID, a.Name, role, tier, now)
	}
	return out
}
