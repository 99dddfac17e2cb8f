package analytics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/portal-service/internal/credit"
	"github.com/spec-kit/portal-service/internal/domain"
)

var base = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

type sliceScanner struct {
	tickets []domain.Ticket
	err     error
}

func (s sliceScanner) ForEach(_ context.Context, fn func(*domain.Ticket) error) error {
	if s.err != nil {
		return s.err
	}
	for i := range s.tickets {
		if err := fn(&s.tickets[i]); err != nil {
			return err
		}
	}
	return nil
}

func ticketWith(id string, status domain.TicketStatus, raiser string, ledger credit.Ledger) domain.Ticket {
	return domain.Ticket{
		ID:           id,
		Status:       status,
		RaisedBy:     domain.PersonRef{UserID: raiser},
		Contributors: ledger,
		CreatedAt:    base,
	}
}

func TestSingleAssigneeIsPrimary(t *testing.T) {
	l := credit.Ledger{}.AddOrUpdate("E1", "E1", domain.ContributorRoleAssignee, domain.ContributorPrimary, base)
	tickets := []domain.Ticket{ticketWith("t1", domain.TicketStatusPending, "R", l)}

	got := Aggregate(tickets, "E1", 10)
	assert.Equal(t, 1, got.Primary.Count)
	assert.Equal(t, 0, got.Secondary.Count)
}

func TestGroupLeadAndMember(t *testing.T) {
	l := credit.Ledger{}.AddGroup([]credit.GroupMember{{UserID: "L", IsLead: true}, {UserID: "M"}}, true, base)
	tickets := []domain.Ticket{ticketWith("t1", domain.TicketStatusInProgress, "R", l)}

	lead := Aggregate(tickets, "L", 10)
	member := Aggregate(tickets, "M", 10)
	assert.Equal(t, 1, lead.Primary.Count)
	assert.Equal(t, 0, lead.Secondary.Count)
	assert.Equal(t, 0, member.Primary.Count)
	assert.Equal(t, 1, member.Secondary.Count)
	assert.Equal(t, domain.ContributorRoleGroupMember, member.Secondary.Recent[0].Role)
}

func TestReassignedAwayLosesCredit(t *testing.T) {
	l := credit.Ledger{}.AddOrUpdate("E1", "E1", domain.ContributorRoleAssignee, domain.ContributorPrimary, base)
	l = l.Replace("E1", []credit.Assignee{{UserID: "E2"}}, domain.ContributorPrimary, base)
	tickets := []domain.Ticket{ticketWith("t1", domain.TicketStatusPending, "R", l)}

	e1 := Aggregate(tickets, "E1", 10)
	e2 := Aggregate(tickets, "E2", 10)
	assert.Equal(t, 0, e1.Primary.Count+e1.Secondary.Count)
	assert.Equal(t, 1, e2.Primary.Count)
}

func TestRaiserNeverCredited(t *testing.T) {
	l := credit.Ledger{}.AddGroup([]credit.GroupMember{{UserID: "L", IsLead: true}, {UserID: "R"}}, true, base)
	l = l.AddOrUpdate("R", "R", domain.ContributorRoleAssignee, domain.ContributorPrimary, base)
	tickets := []domain.Ticket{ticketWith("t1", domain.TicketStatusPending, "R", l)}

	got := Aggregate(tickets, "R", 10)
	assert.Equal(t, 0, got.Primary.Count)
	assert.Equal(t, 0, got.Secondary.Count)
	assert.Empty(t, got.Primary.Recent)
}

func TestBucketsAreMutuallyExclusive(t *testing.T) {
	ledger := credit.Ledger{
		{UserID: "E", ContributorType: domain.ContributorSecondary, JoinedAt: base},
		{UserID: "E", ContributorType: domain.ContributorPrimary, JoinedAt: base},
	}
	got := Aggregate([]domain.Ticket{ticketWith("t1", domain.TicketStatusPending, "R", ledger)}, "E", 10)
	assert.Equal(t, 1, got.Primary.Count)
	assert.Equal(t, 0, got.Secondary.Count)
}

func TestStatusBreakdownAndRecentCap(t *testing.T) {
	var tickets []domain.Ticket
	for i := 0; i < 12; i++ {
		status := domain.TicketStatusResolved
		if i%4 == 0 {
			status = domain.TicketStatusBlocked
		}
		l := credit.Ledger{}.AddOrUpdate("E", "E", domain.ContributorRoleAssignee, domain.ContributorPrimary, base)
		tk := ticketWith(fmt.Sprintf("t%02d", i), status, "R", l)
		tk.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		tickets = append(tickets, tk)
	}

	got := Aggregate(tickets, "E", 10)
	require.Equal(t, 12, got.Primary.Count)
	assert.Equal(t, StatusShare{Count: 3, Percentage: 25}, got.Primary.StatusBreakdown[domain.TicketStatusBlocked])
	assert.Equal(t, StatusShare{Count: 9, Percentage: 75}, got.Primary.StatusBreakdown[domain.TicketStatusResolved])
	assert.Equal(t, StatusShare{}, got.Primary.StatusBreakdown[domain.TicketStatusClosed])
	assert.Len(t, got.Primary.StatusBreakdown, len(domain.TicketStatuses))

	require.Len(t, got.Primary.Recent, 10)
	assert.Equal(t, "t11", got.Primary.Recent[0].ID)
	assert.Equal(t, "t02", got.Primary.Recent[9].ID)
}

func TestPercentageRounding(t *testing.T) {
	assert.Equal(t, 33.33, share(1, 3).Percentage)
	assert.Equal(t, 66.67, share(2, 3).Percentage)
	assert.Equal(t, 0.0, share(0, 0).Percentage)
}

func TestAggregatorScansSource(t *testing.T) {
	l := credit.Ledger{}.AddOrUpdate("E", "E", domain.ContributorRoleAssignee, domain.ContributorSecondary, base)
	agg := NewAggregator(sliceScanner{tickets: []domain.Ticket{
		ticketWith("a", domain.TicketStatusPending, "R", l),
		ticketWith("b", domain.TicketStatusClosed, "E", l),
	}}, 0)

	got, err := agg.GetEmployeeContributions(context.Background(), "E")
	require.NoError(t, err)
	assert.Equal(t, "E", got.EmployeeID)
	assert.Equal(t, 1, got.Secondary.Count)

	boom := errors.New("boom")
	_, err = NewAggregator(sliceScanner{err: boom}, 5).GetEmployeeContributions(context.Background(), "E")
	assert.ErrorIs(t, err, boom)
}

func TestLeaderboardRanking(t *testing.T) {
	t1 := credit.Ledger{}.AddGroup([]credit.GroupMember{{UserID: "L", Name: "Lea", IsLead: true}, {UserID: "M", Name: "Max"}}, true, base)
	t2 := credit.Ledger{}.AddOrUpdate("M", "Max", domain.ContributorRoleAssignee, domain.ContributorPrimary, base)
	t3 := credit.Ledger{}.AddOrUpdate("R", "Rae", domain.ContributorRoleAssignee, domain.ContributorPrimary, base)
	agg := NewAggregator(sliceScanner{tickets: []domain.Ticket{
		ticketWith("1", domain.TicketStatusPending, "X", t1),
		ticketWith("2", domain.TicketStatusPending, "X", t2),
		ticketWith("3", domain.TicketStatusPending, "R", t3),
	}}, 0)

	board, err := agg.Leaderboard(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, LeaderboardEntry{UserID: "M", Name: "Max", Primary: 1, Secondary: 1, Total: 2}, board[0])
	assert.Equal(t, LeaderboardEntry{UserID: "L", Name: "Lea", Primary: 1, Total: 1}, board[1])
}
