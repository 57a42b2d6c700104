package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"go.etcd.io/bbolt"

	"github.com/xeptore/tunedl/media"
)

var collectionsBucketName = []byte("collections")

// Store persists catalog lookups between runs so repeated downloads of the same link skip the catalog.
type Store struct {
	db  *bbolt.DB
	ttl time.Duration
	now func() time.Time
}

type entry struct {
	StoredAt   time.Time        `json:"stored_at"`
	Collection media.Collection `json:"collection"`
}

func Open(path string, ttl time.Duration) (*Store, error) {
	opts := &bbolt.Options{ //nolint:exhaustruct
		NoFreelistSync: true,
		ReadOnly:       false,
		Timeout:        1 * time.Second,
		NoGrowSync:     false,
		FreelistType:   bbolt.FreelistArrayType,
	}
	db, err := bbolt.Open(path, 0o600, opts)
	if nil != err {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	if err := createBuckets(db); nil != err {
		return nil, errors.Join(err, db.Close())
	}

	return &Store{db: db, ttl: ttl, now: time.Now}, nil
}

func createBuckets(db *bbolt.DB) error {
	err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(collectionsBucketName); nil != err {
			return fmt.Errorf("failed to create collections bucket: %v", err)
		}

		return nil
	})
	if nil != err {
		return fmt.Errorf("failed to create buckets: %v", err)
	}

	return nil
}

func (s *Store) Close() error {
	if err := s.db.Close(); nil != err {
		return fmt.Errorf("failed to close database: %v", err)
	}

	return nil
}

func key(link media.Link) []byte {
	return []byte(link.String())
}

// Load returns the stored collection for link, or nil when there is none or it has expired.
func (s *Store) Load(_ context.Context, link media.Link) (*media.Collection, error) {
	var raw []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(collectionsBucketName).Get(key(link)); nil != v {
			raw = append([]byte(nil), v...)
		}

		return nil
	})
	if nil != err {
		return nil, fmt.Errorf("failed to load collection: %v", err)
	}

	if nil == raw {
		return nil, nil //nolint:nilnil
	}

	var e entry
	if err := json.Unmarshal(raw, &e); nil != err {
		return nil, fmt.Errorf("failed to decode stored collection: %v", err)
	}

	if s.ttl > 0 && s.now().Sub(e.StoredAt) > s.ttl {
		return nil, nil //nolint:nilnil
	}

	return &e.Collection, nil
}

func (s *Store) Save(_ context.Context, link media.Link, c *media.Collection) error {
	b, err := json.Marshal(entry{StoredAt: s.now().UTC(), Collection: *c})
	if nil != err {
		return fmt.Errorf("failed to encode collection: %v", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(collectionsBucketName).Put(key(link), b); nil != err {
			return fmt.Errorf("failed to store collection: %v", err)
		}

		return nil
	})
	if nil != err {
		return fmt.Errorf("failed to store collection: %v", err)
	}

	return nil
}
