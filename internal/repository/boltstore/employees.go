package boltstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	bolt "github.com/boltdb/bolt"
	"github.com/google/uuid"

	"github.com/spec-kit/portal-service/internal/domain"
	"github.com/spec-kit/portal-service/internal/persistence"
	"github.com/spec-kit/portal-service/internal/repository"
	apperrors "github.com/spec-kit/portal-service/pkg/util/errorutil"
)

// EmployeeRepository stores employee documents keyed by id.
type EmployeeRepository struct {
	db *bolt.DB
}

var _ repository.EmployeeRepository = (*EmployeeRepository)(nil)

func (r *EmployeeRepository) Create(_ context.Context, employee *domain.Employee) error {
	if employee.ID == "" {
		employee.ID = uuid.NewString()
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		if _, err := findByEmail(tx, employee.Email); err == nil {
			return apperrors.NewConflict("email already registered", map[string]any{"email": employee.Email})
		}
		now := time.Now().UTC()
		employee.CreatedAt = now
		employee.UpdatedAt = now
		return putDoc(tx, persistence.BucketEmployees, employee.ID, employee)
	})
}

func (r *EmployeeRepository) Update(_ context.Context, employee *domain.Employee) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		stored, err := getDoc[domain.Employee](tx, persistence.BucketEmployees, "employee", employee.ID)
		if err != nil {
			return err
		}
		employee.CreatedAt = stored.CreatedAt
		employee.UpdatedAt = time.Now().UTC()
		return putDoc(tx, persistence.BucketEmployees, employee.ID, employee)
	})
}

func (r *EmployeeRepository) GetByID(_ context.Context, id string) (*domain.Employee, error) {
	var employee *domain.Employee
	err := r.db.View(func(tx *bolt.Tx) error {
		var err error
		employee, err = getDoc[domain.Employee](tx, persistence.BucketEmployees, "employee", id)
		return err
	})
	return employee, err
}

func (r *EmployeeRepository) GetByEmail(_ context.Context, email string) (*domain.Employee, error) {
	var employee *domain.Employee
	err := r.db.View(func(tx *bolt.Tx) error {
		var err error
		employee, err = findByEmail(tx, email)
		return err
	})
	return employee, err
}

func (r *EmployeeRepository) List(_ context.Context, filter repository.EmployeeFilter) ([]domain.Employee, error) {
	all, err := listDocs[domain.Employee](r.db, persistence.BucketEmployees)
	if err != nil {
		return nil, err
	}
	matched := make([]domain.Employee, 0, len(all))
	for _, e := range all {
		if filter.Role != nil && e.Role != *filter.Role {
			continue
		}
		if filter.Department != nil && e.Department != *filter.Department {
			continue
		}
		if filter.Active != nil && e.Active != *filter.Active {
			continue
		}
		matched = append(matched, e)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	return page(matched, filter.Limit, filter.Offset, 50), nil
}

func findByEmail(tx *bolt.Tx, email string) (*domain.Employee, error) {
	var found *domain.Employee
	err := forEachDoc(tx, persistence.BucketEmployees, func(e *domain.Employee) error {
		if found == nil && strings.EqualFold(e.Email, email) {
			found = e
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("employee %s: %w", email, apperrors.ErrNotFound)
	}
	return found, nil
}
