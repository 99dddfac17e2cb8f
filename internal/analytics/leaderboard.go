package analytics

import (
	"sort"

	"github.com/spec-kit/portal-service/internal/domain"
)

// LeaderboardEntry is one ranked employee.
type LeaderboardEntry struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Primary   int    `json:"primary"`
	Secondary int    `json:"secondary"`
	Total     int    `json:"total"`
}

// Leaderboard tallies active credit per employee.
type Leaderboard struct {
	entries map[string]*LeaderboardEntry
}

// NewLeaderboard returns an empty tally.
func NewLeaderboard() *Leaderboard {
	return &Leaderboard{entries: make(map[string]*LeaderboardEntry)}
}

// Add credits each employee at most once per ticket, using the same rules as Classify.
func (l *Leaderboard) Add(ticket *domain.Ticket) {
	seen := make(map[string]struct{})
	for _, c := range ticket.Contributors {
		if !c.Active() {
			continue
		}
		if _, done := seen[c.UserID]; done {
			continue
		}
		tier, _, ok := Classify(ticket, c.UserID)
		if !ok {
			continue
		}
		seen[c.UserID] = struct{}{}
		entry, exists := l.entries[c.UserID]
		if !exists {
			entry = &LeaderboardEntry{UserID: c.UserID, Name: c.Name}
			l.entries[c.UserID] = entry
		}
		if tier == domain.ContributorPrimary {
			entry.Primary++
		} else {
			entry.Secondary++
		}
		entry.Total++
	}
}

// Ranked orders by primary, then secondary, then user id.
func (l *Leaderboard) Ranked(limit int) []LeaderboardEntry {
	out := make([]LeaderboardEntry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Primary != out[j].Primary {
			return out[i].Primary > out[j].Primary
		}
		if out[i].Secondary != out[j].Secondary {
			return out[i].Secondary > out[j].Secondary
		}
		return out[i].UserID < out[j].UserID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
