// Package storage persists the router's durable records: the governance
// config (the only record the core owns) and the receipt audit trail.
package storage

import (
	"encoding/json"
	"errors"
	"time"

	bolt "go.etcd.io/bbolt"

	"dexroute/native/governance"
	"dexroute/native/router"
)

var (
	bucketGovernance = []byte("governance")
	bucketReceipts   = []byte("receipts")

	keyConfig = []byte("config")

	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("storage: record not found")
)

// Store persists governance state and route receipts in a Bolt database.
type Store struct {
	db *bolt.DB
}

// NewStore initialises (and migrates) the BoltDB-backed store.
func NewStore(path string, options *bolt.Options) (*Store, error) {
	if options == nil {
		options = &bolt.Options{Timeout: time.Second}
	} else if options.Timeout == 0 {
		options.Timeout = time.Second
	}
	db, err := bolt.Open(path, 0o600, options)
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketGovernance, bucketReceipts} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying Bolt database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// GovernanceConfig loads the governance record if one has been initialised.
func (s *Store) GovernanceConfig() (*governance.Config, bool, error) {
	var cfg *governance.Config
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketGovernance).Get(keyConfig)
		if raw == nil {
			return nil
		}
		decoded := &governance.Config{}
		if err := json.Unmarshal(raw, decoded); err != nil {
			return err
		}
		cfg = decoded
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return cfg, cfg != nil, nil
}

// PutGovernanceConfig writes the governance record.
func (s *Store) PutGovernanceConfig(cfg *governance.Config) error {
	if cfg == nil {
		return errors.New("storage: nil governance config")
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketGovernance).Put(keyConfig, raw)
	})
}

// PutReceipt appends a route receipt to the audit trail.
func (s *Store) PutReceipt(receipt *router.RouteReceipt) error {
	if receipt == nil || receipt.ID == "" {
		return errors.New("storage: receipt requires an id")
	}
	raw, err := json.Marshal(receipt)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketReceipts).Put([]byte(receipt.ID), raw)
	})
}

// Receipt loads one receipt by id.
func (s *Store) Receipt(id string) (*router.RouteReceipt, error) {
	var receipt *router.RouteReceipt
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketReceipts).Get([]byte(id))
		if raw == nil {
			return ErrNotFound
		}
		decoded := &router.RouteReceipt{}
		if err := json.Unmarshal(raw, decoded); err != nil {
			return err
		}
		receipt = decoded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// Receipts returns up to limit receipts in key order. A non-positive limit
// returns everything.
func (s *Store) Receipts(limit int) ([]*router.RouteReceipt, error) {
	var receipts []*router.RouteReceipt
	err := s.db.View(func(tx *bolt.Tx) error {
		cursor := tx.Bucket(bucketReceipts).Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			if limit > 0 && len(receipts) >= limit {
				break
			}
			decoded := &router.RouteReceipt{}
			if err := json.Unmarshal(v, decoded); err != nil {
				return err
			}
			receipts = append(receipts, decoded)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipts, nil
}
