package boltstore

import (
	"context"
	"sort"
	"time"

	bolt "github.com/boltdb/bolt"
	"github.com/google/uuid"

	"github.com/spec-kit/portal-service/internal/domain"
	"github.com/spec-kit/portal-service/internal/persistence"
	"github.com/spec-kit/portal-service/internal/repository"
)

// GroupRepository stores group documents keyed by id.
type GroupRepository struct {
	db *bolt.DB
}

var _ repository.GroupRepository = (*GroupRepository)(nil)

func (r *GroupRepository) Create(_ context.Context, group *domain.Group) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	if group.MemberIDs == nil {
		group.MemberIDs = []string{}
	}
	now := time.Now().UTC()
	group.CreatedAt = now
	group.UpdatedAt = now
	return r.db.Update(func(tx *bolt.Tx) error {
		return putDoc(tx, persistence.BucketGroups, group.ID, group)
	})
}

func (r *GroupRepository) GetByID(_ context.Context, id string) (*domain.Group, error) {
	var group *domain.Group
	err := r.db.View(func(tx *bolt.Tx) error {
		var err error
		group, err = getDoc[domain.Group](tx, persistence.BucketGroups, "group", id)
		return err
	})
	return group, err
}

func (r *GroupRepository) List(context.Context) ([]domain.Group, error) {
	groups, err := listDocs[domain.Group](r.db, persistence.BucketGroups)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}
