package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/portal-service/internal/domain"
	apperrors "github.com/spec-kit/portal-service/pkg/util/errorutil"
)

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

type fakeDB struct {
	queryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
	queryFunc    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	execFunc     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return f.queryRowFunc(ctx, sql, args...)
}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return f.queryFunc(ctx, sql, args...)
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return f.execFunc(ctx, sql, args...)
}

func noRows(...any) error { return pgx.ErrNoRows }

func TestTicketCreateAssignsIDAndNormalizes(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	var gotArgs []any
	db := &fakeDB{queryRowFunc: func(_ context.Context, sql string, args ...any) pgx.Row {
		require.Contains(t, sql, "INSERT INTO tickets")
		gotArgs = args
		return fakeRow{scan: func(dest ...any) error {
			*(dest[0].(*time.Time)) = created
			*(dest[1].(*time.Time)) = created
			return nil
		}}
	}}

	ticket := &domain.Ticket{Key: "TCK-1", Title: "Printer", RaisedBy: domain.PersonRef{UserID: "r", Name: "R"}}
	require.NoError(t, NewTicketRepository(db).Create(context.Background(), ticket))

	assert.NotEmpty(t, ticket.ID)
	assert.Equal(t, int64(1), ticket.Version)
	assert.Equal(t, created, ticket.CreatedAt)
	assert.NotNil(t, ticket.Contributors)
	assert.NotNil(t, ticket.Assignees)
	assert.NotNil(t, ticket.WorkflowHistory)
	assert.Equal(t, ticket.ID, gotArgs[0])
	assert.Equal(t, "r", gotArgs[5])
}

func TestTicketUpdateBumpsVersion(t *testing.T) {
	db := &fakeDB{queryRowFunc: func(_ context.Context, sql string, args ...any) pgx.Row {
		require.Contains(t, sql, "version=version+1")
		assert.Equal(t, int64(3), args[len(args)-1])
		return fakeRow{scan: func(dest ...any) error {
			*(dest[0].(*int64)) = 4
			*(dest[1].(*time.Time)) = time.Now()
			return nil
		}}
	}}

	ticket := &domain.Ticket{ID: "t1", Version: 3}
	require.NoError(t, NewTicketRepository(db).Update(context.Background(), ticket))
	assert.Equal(t, int64(4), ticket.Version)
}

func TestTicketUpdateVersionConflict(t *testing.T) {
	db := &fakeDB{queryRowFunc: func(_ context.Context, sql string, _ ...any) pgx.Row {
		if strings.HasPrefix(sql, "SELECT 1") {
			return fakeRow{scan: func(dest ...any) error {
				*(dest[0].(*int)) = 1
				return nil
			}}
		}
		return fakeRow{scan: noRows}
	}}

	err := NewTicketRepository(db).Update(context.Background(), &domain.Ticket{ID: "t1", Version: 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrVersionConflict))
}

func TestTicketUpdateMissing(t *testing.T) {
	db := &fakeDB{queryRowFunc: func(context.Context, string, ...any) pgx.Row {
		return fakeRow{scan: noRows}
	}}

	err := NewTicketRepository(db).Update(context.Background(), &domain.Ticket{ID: "t1", Version: 2})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestTicketGetByIDNotFound(t *testing.T) {
	db := &fakeDB{queryRowFunc: func(context.Context, string, ...any) pgx.Row {
		return fakeRow{scan: noRows}
	}}

	_, err := NewTicketRepository(db).GetByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestTicketListBuildsFilter(t *testing.T) {
	raiser := "r1"
	var gotSQL string
	var gotArgs []any
	db := &fakeDB{queryFunc: func(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
		gotSQL = sql
		gotArgs = args
		return nil, errors.New("stop")
	}}

	_, err := NewTicketRepository(db).List(context.Background(), TicketFilter{
		RaisedByID: &raiser,
		Statuses:   []domain.TicketStatus{domain.TicketStatusPending, domain.TicketStatusBlocked},
	})
	require.Error(t, err)
	assert.Contains(t, gotSQL, "raised_by_id=$1")
	assert.Contains(t, gotSQL, "status IN ($2,$3)")
	assert.Contains(t, gotSQL, "LIMIT 20 OFFSET 0")
	assert.Equal(t, []any{"r1", domain.TicketStatusPending, domain.TicketStatusBlocked}, gotArgs)
}

func TestEmployeeUpdateMissing(t *testing.T) {
	db := &fakeDB{execFunc: func(context.Context, string, ...any) (pgconn.CommandTag, error) {
		return pgconn.NewCommandTag("UPDATE 0"), nil
	}}

	err := NewEmployeeRepository(db).Update(context.Background(), &domain.Employee{ID: "e1"})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
