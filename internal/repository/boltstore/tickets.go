package boltstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	bolt "github.com/boltdb/bolt"
	"github.com/google/uuid"

	"github.com/spec-kit/portal-service/internal/domain"
	"github.com/spec-kit/portal-service/internal/persistence"
	"github.com/spec-kit/portal-service/internal/repository"
	apperrors "github.com/spec-kit/portal-service/pkg/util/errorutil"
)

// TicketRepository stores whole ticket documents keyed by id.
type TicketRepository struct {
	db *bolt.DB
}

var _ repository.TicketRepository = (*TicketRepository)(nil)

func (r *TicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	repository.NormalizeTicket(ticket)
	return r.db.Update(func(tx *bolt.Tx) error {
		if exists(tx, persistence.BucketTickets, ticket.ID) {
			return apperrors.NewConflict("ticket already exists", map[string]any{"id": ticket.ID})
		}
		now := time.Now().UTC()
		ticket.Version = 1
		ticket.CreatedAt = now
		ticket.UpdatedAt = now
		return putDoc(tx, persistence.BucketTickets, ticket.ID, ticket)
	})
}

// Update writes the document when the stored version matches ticket.Version.
func (r *TicketRepository) Update(_ context.Context, ticket *domain.Ticket) error {
	repository.NormalizeTicket(ticket)
	return r.db.Update(func(tx *bolt.Tx) error {
		stored, err := getDoc[domain.Ticket](tx, persistence.BucketTickets, "ticket", ticket.ID)
		if err != nil {
			return err
		}
		if stored.Version != ticket.Version {
			return fmt.Errorf("ticket %s at version %d, stored %d: %w",
				ticket.ID, ticket.Version, stored.Version, apperrors.ErrVersionConflict)
		}
		next := *ticket
		next.Version++
		next.CreatedAt = stored.CreatedAt
		next.UpdatedAt = time.Now().UTC()
		if err := putDoc(tx, persistence.BucketTickets, ticket.ID, &next); err != nil {
			return err
		}
		*ticket = next
		return nil
	})
}

func (r *TicketRepository) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	err := r.db.View(func(tx *bolt.Tx) error {
		var err error
		ticket, err = getDoc[domain.Ticket](tx, persistence.BucketTickets, "ticket", id)
		return err
	})
	return ticket, err
}

func (r *TicketRepository) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	all, err := listDocs[domain.Ticket](r.db, persistence.BucketTickets)
	if err != nil {
		return nil, err
	}
	matched := make([]domain.Ticket, 0, len(all))
	for i := range all {
		if matchTicket(&all[i], filter) {
			matched = append(matched, all[i])
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})
	return page(matched, filter.Limit, filter.Offset, 20), nil
}

// ForEach streams every stored ticket inside one read transaction.
func (r *TicketRepository) ForEach(ctx context.Context, fn func(*domain.Ticket) error) error {
	return r.db.View(func(tx *bolt.Tx) error {
		return forEachDoc(tx, persistence.BucketTickets, func(ticket *domain.Ticket) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ticket)
		})
	})
}

func matchTicket(t *domain.Ticket, f repository.TicketFilter) bool {
	if f.RaisedByID != nil && t.RaisedBy.UserID != *f.RaisedByID {
		return false
	}
	if f.AssigneeID != nil && !t.IsAssignee(*f.AssigneeID) {
		return false
	}
	if f.FunctionalityID != nil && t.FunctionalityID != *f.FunctionalityID {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if t.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
