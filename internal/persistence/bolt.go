package persistence

import (
	"time"

	bolt "github.com/boltdb/bolt"
	"go.uber.org/zap"

	"github.com/spec-kit/portal-service/internal/config"
)

// Bucket names of the embedded document store.
const (
	BucketTickets         = "tickets"
	BucketEmployees       = "employees"
	BucketGroups          = "groups"
	BucketFunctionalities = "functionalities"
)

// Bolt wraps an embedded BoltDB file holding one JSON document per record.
type Bolt struct {
	DB *bolt.DB
}

// NewBolt opens (or creates) the database file and its buckets.
func NewBolt(cfg config.BoltConfig, logger *zap.Logger) (*Bolt, error) {
	db, err := bolt.Open(cfg.Path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{BucketTickets, BucketEmployees, BucketGroups, BucketFunctionalities} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("opened bolt store", zap.String("path", cfg.Path))
	return &Bolt{DB: db}, nil
}

// Close releases the file lock.
func (b *Bolt) Close() {
	if b != nil && b.DB != nil {
		_ = b.DB.Close()
	}
}

// Ping checks the database is still open.
func (b *Bolt) Ping() error {
	if b == nil || b.DB == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return b.DB.View(func(*bolt.Tx) error { return nil })
}
