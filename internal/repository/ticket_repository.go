package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/portal-service/internal/domain"
	apperrors "github.com/spec-kit/portal-service/pkg/util/errorutil"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
	RaisedByID      *string
	AssigneeID      *string
	FunctionalityID *string
	Statuses        []domain.TicketStatus
	Limit           int
	Offset          int
}

// TicketRepository persists whole ticket documents, ledger included.
// Update is optimistic: it fails with ErrVersionConflict when ticket.Version
// no longer matches the stored document, and bumps Version on success.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	ForEach(ctx context.Context, fn func(*domain.Ticket) error) error
}

const ticketColumns = `id, ticket_key, title, description, functionality_id, raised_by_id, raised_by_name,
        status, priority, workflow_stage, assignees, group_id, contributors, workflow_history,
        version, created_at, updated_at`

type ticketRepository struct {
	db DBTX
}

// NewTicketRepository instantiates the postgres repository.
func NewTicketRepository(db DBTX) TicketRepository {
	return &ticketRepository{db: db}
}

// NormalizeTicket replaces nil collections so documents serialize as [] rather than null.
func NormalizeTicket(ticket *domain.Ticket) {
	if ticket.Assignees == nil {
		ticket.Assignees = []domain.PersonRef{}
	}
	if ticket.Contributors == nil {
		ticket.Contributors = []domain.Contributor{}
	}
	if ticket.WorkflowHistory == nil {
		ticket.WorkflowHistory = []domain.WorkflowHistoryEntry{}
	}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	NormalizeTicket(ticket)
	ticket.Version = 1
	const query = `
        INSERT INTO tickets (id, ticket_key, title, description, functionality_id, raised_by_id, raised_by_name,
            status, priority, workflow_stage, assignees, group_id, contributors, workflow_history, version)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
        RETURNING created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		ticket.ID,
		ticket.Key,
		ticket.Title,
		ticket.Description,
		ticket.FunctionalityID,
		ticket.RaisedBy.UserID,
		ticket.RaisedBy.Name,
		ticket.Status,
		ticket.Priority,
		ticket.WorkflowStage,
		ticket.Assignees,
		ticket.GroupID,
		ticket.Contributors,
		ticket.WorkflowHistory,
		ticket.Version,
	).Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	NormalizeTicket(ticket)
	const query = `
        UPDATE tickets SET title=$1, description=$2, status=$3, priority=$4, workflow_stage=$5,
            assignees=$6, group_id=$7, contributors=$8, workflow_history=$9,
            version=version+1, updated_at=NOW()
        WHERE id=$10 AND version=$11
        RETURNING version, updated_at`
	err := r.db.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.WorkflowStage,
		ticket.Assignees,
		ticket.GroupID,
		ticket.Contributors,
		ticket.WorkflowHistory,
		ticket.ID,
		ticket.Version,
	).Scan(&ticket.Version, &ticket.UpdatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	var exists int
	if err := r.db.QueryRow(ctx, `SELECT 1 FROM tickets WHERE id=$1`, ticket.ID).Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("ticket %s: %w", ticket.ID, apperrors.ErrNotFound)
		}
		return err
	}
	return fmt.Errorf("ticket %s at version %d: %w", ticket.ID, ticket.Version, apperrors.ErrVersionConflict)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	ticket, err := scanTicket(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ticket %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.RaisedByID != nil {
		args = append(args, *filter.RaisedByID)
		clauses = append(clauses, fmt.Sprintf("raised_by_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignees @> jsonb_build_array(jsonb_build_object('user_id', $%d::text))", len(args)))
	}
	if filter.FunctionalityID != nil {
		args = append(args, *filter.FunctionalityID)
		clauses = append(clauses, fmt.Sprintf("functionality_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	limit, offset := pageBounds(filter.Limit, filter.Offset, 20)
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) ForEach(ctx context.Context, fn func(*domain.Ticket) error) error {
	rows, err := r.db.Query(ctx, `SELECT `+ticketColumns+` FROM tickets ORDER BY created_at`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return err
		}
		if err := fn(ticket); err != nil {
			return err
		}
	}
	return rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Key,
		&ticket.Title,
		&ticket.Description,
		&ticket.FunctionalityID,
		&ticket.RaisedBy.UserID,
		&ticket.RaisedBy.Name,
		&ticket.Status,
		&ticket.Priority,
		&ticket.WorkflowStage,
		&ticket.Assignees,
		&ticket.GroupID,
		&ticket.Contributors,
		&ticket.WorkflowHistory,
		&ticket.Version,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func pageBounds(limit, offset, def int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
