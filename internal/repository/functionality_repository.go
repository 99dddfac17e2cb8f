package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/portal-service/internal/domain"
	apperrors "github.com/spec-kit/portal-service/pkg/util/errorutil"
)

// FunctionalityRepository stores functionalities and their workflow graphs.
type FunctionalityRepository interface {
	Save(ctx context.Context, functionality *domain.Functionality) error
	GetByID(ctx context.Context, id string) (*domain.Functionality, error)
	List(ctx context.Context) ([]domain.Functionality, error)
}

const functionalityColumns = `id, name, department, description, workflow, created_at, updated_at`

type functionalityRepository struct {
	db DBTX
}

// NewFunctionalityRepository instantiates the repository.
func NewFunctionalityRepository(db DBTX) FunctionalityRepository {
	return &functionalityRepository{db: db}
}

// Save inserts the functionality or replaces the stored definition.
func (r *functionalityRepository) Save(ctx context.Context, functionality *domain.Functionality) error {
	const query = `
        INSERT INTO functionalities (id, name, department, description, workflow)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (id) DO UPDATE
        SET name=EXCLUDED.name, department=EXCLUDED.department, description=EXCLUDED.description,
            workflow=EXCLUDED.workflow, updated_at=NOW()
        RETURNING created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		functionality.ID,
		functionality.Name,
		functionality.Department,
		functionality.Description,
		functionality.Workflow,
	).Scan(&functionality.CreatedAt, &functionality.UpdatedAt)
}

func (r *functionalityRepository) GetByID(ctx context.Context, id string) (*domain.Functionality, error) {
	functionality, err := scanFunctionality(r.db.QueryRow(ctx, `SELECT `+functionalityColumns+` FROM functionalities WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("functionality %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, err
	}
	return functionality, nil
}

func (r *functionalityRepository) List(ctx context.Context) ([]domain.Functionality, error) {
	rows, err := r.db.Query(ctx, `SELECT `+functionalityColumns+` FROM functionalities ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Functionality{}
	for rows.Next() {
		functionality, err := scanFunctionality(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *functionality)
	}
	return result, rows.Err()
}

func scanFunctionality(row pgx.Row) (*domain.Functionality, error) {
	var f domain.Functionality
	if err := row.Scan(&f.ID, &f.Name, &f.Department, &f.Description, &f.Workflow, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}
