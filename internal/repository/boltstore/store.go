// Package boltstore implements the repository interfaces on an embedded
// BoltDB file, one JSON document per record.
package boltstore

import (
	"encoding/json"
	"fmt"

	bolt "github.com/boltdb/bolt"

	"github.com/spec-kit/portal-service/internal/persistence"
	apperrors "github.com/spec-kit/portal-service/pkg/util/errorutil"
)

// Store groups the bolt-backed repositories.
type Store struct {
	Tickets         *TicketRepository
	Employees       *EmployeeRepository
	Groups          *GroupRepository
	Functionalities *FunctionalityRepository
}

// New wires every repository onto the same database handle.
func New(db *persistence.Bolt) *Store {
	return &Store{
		Tickets:         &TicketRepository{db: db.DB},
		Employees:       &EmployeeRepository{db: db.DB},
		Groups:          &GroupRepository{db: db.DB},
		Functionalities: &FunctionalityRepository{db: db.DB},
	}
}

func getDoc[T any](tx *bolt.Tx, bucket, kind, id string) (*T, error) {
	v := tx.Bucket([]byte(bucket)).Get([]byte(id))
	if v == nil {
		return nil, fmt.Errorf("%s %s: %w", kind, id, apperrors.ErrNotFound)
	}
	var doc T
	if err := json.Unmarshal(v, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func putDoc(tx *bolt.Tx, bucket, id string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return tx.Bucket([]byte(bucket)).Put([]byte(id), data)
}

func exists(tx *bolt.Tx, bucket, id string) bool {
	return tx.Bucket([]byte(bucket)).Get([]byte(id)) != nil
}

func forEachDoc[T any](tx *bolt.Tx, bucket string, fn func(*T) error) error {
	return tx.Bucket([]byte(bucket)).ForEach(func(_, v []byte) error {
		var doc T
		if err := json.Unmarshal(v, &doc); err != nil {
			return err
		}
		return fn(&doc)
	})
}

func listDocs[T any](db *bolt.DB, bucket string) ([]T, error) {
	items := []T{}
	err := db.View(func(tx *bolt.Tx) error {
		return forEachDoc(tx, bucket, func(doc *T) error {
			items = append(items, *doc)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func page[T any](items []T, limit, offset, def int) []T {
	if limit <= 0 {
		limit = def
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
