// Package analytics answers "what has employee X contributed" over the
// contributor ledgers of every ticket.
package analytics

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/spec-kit/portal-service/internal/domain"
)

// DefaultRecentLimit caps the recent ticket list of each bucket.
const DefaultRecentLimit = 10

// StatusShare is one histogram cell.
type StatusShare struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// TicketSummary is the dashboard view of a contributed ticket.
type TicketSummary struct {
	ID        string                 `json:"id"`
	Key       string                 `json:"key"`
	Title     string                 `json:"title"`
	Status    domain.TicketStatus    `json:"status"`
	Priority  domain.TicketPriority  `json:"priority"`
	Role      domain.ContributorRole `json:"role"`
	RaisedBy  domain.PersonRef       `json:"raised_by"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// Bucket aggregates the tickets of one credit tier.
type Bucket struct {
	Count           int                                 `json:"count"`
	StatusBreakdown map[domain.TicketStatus]StatusShare `json:"status_breakdown"`
	Recent          []TicketSummary                     `json:"recent"`
}

// Contributions is the partitioned result for one employee.
type Contributions struct {
	EmployeeID string `json:"employee_id"`
	Primary    Bucket `json:"primary"`
	Secondary  Bucket `json:"secondary"`
}

// Classify returns the tier under which ticket counts for employeeID.
// The raiser never gets credit, and left entries never count.
func Classify(ticket *domain.Ticket, employeeID string) (domain.ContributorType, domain.ContributorRole, bool) {
	if employeeID == "" || ticket.RaisedBy.UserID == employeeID {
		return "", "", false
	}
	var secondary *domain.Contributor
	for i := range ticket.Contributors {
		c := &ticket.Contributors[i]
		if c.UserID != employeeID || !c.Active() {
			continue
		}
		switch c.ContributorType {
		case domain.ContributorPrimary:
			return domain.ContributorPrimary, c.Role, true
		case domain.ContributorSecondary:
			if secondary == nil {
				secondary = c
			}
		}
	}
	if secondary != nil {
		return domain.ContributorSecondary, secondary.Role, true
	}
	return "", "", false
}

type bucketAcc struct {
	statuses map[domain.TicketStatus]int
	tickets  []TicketSummary
}

func newBucketAcc() *bucketAcc {
	return &bucketAcc{statuses: make(map[domain.TicketStatus]int)}
}

func (b *bucketAcc) add(ticket *domain.Ticket, role domain.ContributorRole) {
	b.statuses[ticket.Status]++
	b.tickets = append(b.tickets, TicketSummary{
		ID:        ticket.ID,
		Key:       ticket.Key,
		Title:     ticket.Title,
		Status:    ticket.Status,
		Priority:  ticket.Priority,
		Role:      role,
		RaisedBy:  ticket.RaisedBy,
		CreatedAt: ticket.CreatedAt,
		UpdatedAt: ticket.UpdatedAt,
	})
}

func (b *bucketAcc) finish(limit int) Bucket {
	total := len(b.tickets)
	breakdown := make(map[domain.TicketStatus]StatusShare, len(domain.TicketStatuses))
	for _, status := range domain.TicketStatuses {
		breakdown[status] = share(b.statuses[status], total)
	}
	for status, count := range b.statuses {
		if _, known := breakdown[status]; !known {
			breakdown[status] = share(count, total)
		}
	}

	sort.SliceStable(b.tickets, func(i, j int) bool {
		if b.tickets[i].CreatedAt.Equal(b.tickets[j].CreatedAt) {
			return b.tickets[i].ID > b.tickets[j].ID
		}
		return b.tickets[i].CreatedAt.After(b.tickets[j].CreatedAt)
	})
	recent := b.tickets
	if limit > 0 && len(recent) > limit {
		recent = recent[:limit]
	}
	if recent == nil {
		recent = []TicketSummary{}
	}
	return Bucket{Count: total, StatusBreakdown: breakdown, Recent: recent}
}

func share(count, total int) StatusShare {
	if total == 0 {
		return StatusShare{Count: count}
	}
	pct := float64(count) * 100 / float64(total)
	return StatusShare{Count: count, Percentage: math.Round(pct*100) / 100}
}

// Accumulator folds tickets one at a time so callers can stream a full scan.
type Accumulator struct {
	employeeID string
	primary    *bucketAcc
	secondary  *bucketAcc
}

// NewAccumulator starts an aggregation for employeeID.
func NewAccumulator(employeeID string) *Accumulator {
	return &Accumulator{employeeID: employeeID, primary: newBucketAcc(), secondary: newBucketAcc()}
}

// Add classifies one ticket.
func (a *Accumulator) Add(ticket *domain.Ticket) {
	tier, role, ok := Classify(ticket, a.employeeID)
	if !ok {
		return
	}
	if tier == domain.ContributorPrimary {
		a.primary.add(ticket, role)
		return
	}
	a.secondary.add(ticket, role)
}

// Result finalizes the aggregation.
func (a *Accumulator) Result(recentLimit int) Contributions {
	return Contributions{
		EmployeeID: a.employeeID,
		Primary:    a.primary.finish(recentLimit),
		Secondary:  a.secondary.finish(recentLimit),
	}
}

// Aggregate partitions tickets for employeeID.
func Aggregate(tickets []domain.Ticket, employeeID string, recentLimit int) Contributions {
	acc := NewAccumulator(employeeID)
	for i := range tickets {
		acc.Add(&tickets[i])
	}
	return acc.Result(recentLimit)
}

// TicketScanner streams every ticket in the system.
type TicketScanner interface {
	ForEach(ctx context.Context, fn func(*domain.Ticket) error) error
}

// Aggregator runs full scans against a ticket source.
type Aggregator struct {
	source      TicketScanner
	recentLimit int
}

// NewAggregator builds an aggregator. A non-positive limit uses DefaultRecentLimit.
func NewAggregator(source TicketScanner, recentLimit int) *Aggregator {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	return &Aggregator{source: source, recentLimit: recentLimit}
}

// GetEmployeeContributions scans all tickets and partitions them for employeeID.
func (a *Aggregator) GetEmployeeContributions(ctx context.Context, employeeID string) (Contributions, error) {
	acc := NewAccumulator(employeeID)
	err := a.source.ForEach(ctx, func(t *domain.Ticket) error {
		acc.Add(t)
		return nil
	})
	if err != nil {
		return Contributions{}, err
	}
	return acc.Result(a.recentLimit), nil
}

// Leaderboard ranks every credited employee across all tickets.
func (a *Aggregator) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	board := NewLeaderboard()
	if err := a.source.ForEach(ctx, func(t *domain.Ticket) error {
		board.Add(t)
		return nil
	}); err != nil {
		return nil, err
	}
	return board.Ranked(limit), nil
}
