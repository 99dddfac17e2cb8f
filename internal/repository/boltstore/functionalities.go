package boltstore

import (
	"context"
	"sort"
	"time"

	bolt "github.com/boltdb/bolt"

	"github.com/spec-kit/portal-service/internal/domain"
	"github.com/spec-kit/portal-service/internal/persistence"
	"github.com/spec-kit/portal-service/internal/repository"
)

// FunctionalityRepository stores functionality documents keyed by id.
type FunctionalityRepository struct {
	db *bolt.DB
}

var _ repository.FunctionalityRepository = (*FunctionalityRepository)(nil)

// Save inserts the functionality or replaces the stored definition.
func (r *FunctionalityRepository) Save(_ context.Context, functionality *domain.Functionality) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		now := time.Now().UTC()
		functionality.CreatedAt = now
		if stored, err := getDoc[domain.Functionality](tx, persistence.BucketFunctionalities, "functionality", functionality.ID); err == nil {
			functionality.CreatedAt = stored.CreatedAt
		}
		functionality.UpdatedAt = now
		return putDoc(tx, persistence.BucketFunctionalities, functionality.ID, functionality)
	})
}

func (r *FunctionalityRepository) GetByID(_ context.Context, id string) (*domain.Functionality, error) {
	var functionality *domain.Functionality
	err := r.db.View(func(tx *bolt.Tx) error {
		var err error
		functionality, err = getDoc[domain.Functionality](tx, persistence.BucketFunctionalities, "functionality", id)
		return err
	})
	return functionality, err
}

func (r *FunctionalityRepository) List(context.Context) ([]domain.Functionality, error) {
	items, err := listDocs[domain.Functionality](r.db, persistence.BucketFunctionalities)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}
