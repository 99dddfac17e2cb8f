package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/portal-service/internal/domain"
	apperrors "github.com/spec-kit/portal-service/pkg/util/errorutil"
)

// GroupRepository persists employee groups.
type GroupRepository interface {
	Create(ctx context.Context, group *domain.Group) error
	GetByID(ctx context.Context, id string) (*domain.Group, error)
	List(ctx context.Context) ([]domain.Group, error)
}

const groupColumns = `id, name, lead_id, member_ids, created_at, updated_at`

type groupRepository struct {
	db DBTX
}

// NewGroupRepository instantiates the repository.
func NewGroupRepository(db DBTX) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, group *domain.Group) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	if group.MemberIDs == nil {
		group.MemberIDs = []string{}
	}
	const query = `
        INSERT INTO groups (id, name, lead_id, member_ids)
        VALUES ($1,$2,$3,$4)
        RETURNING created_at, updated_at`
	return r.db.QueryRow(ctx, query, group.ID, group.Name, group.LeadID, group.MemberIDs).
		Scan(&group.CreatedAt, &group.UpdatedAt)
}

func (r *groupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	group, err := scanGroup(r.db.QueryRow(ctx, `SELECT `+groupColumns+` FROM groups WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("group %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return group, nil
}

func (r *groupRepository) List(ctx context.Context) ([]domain.Group, error) {
	rows, err := r.db.Query(ctx, `SELECT `+groupColumns+` FROM groups ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Group{}
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *group)
	}
	return result, rows.Err()
}

func scanGroup(row pgx.Row) (*domain.Group, error) {
	var group domain.Group
	if err := row.Scan(&group.ID, &group.Name, &group.LeadID, &group.MemberIDs, &group.CreatedAt, &group.UpdatedAt); err != nil {
		return nil, err
	}
	return &group, nil
}
