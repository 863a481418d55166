package cache

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/boltdb/bolt"
)

var boltBucket = []byte("osm-cache")

// BoltStore keeps cached responses in a local file so they survive restarts
// of short lived processes such as the CLI.
type BoltStore struct {
	DB  *bolt.DB
	now func() time.Time
}

func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStore{DB: db, now: time.Now}, nil
}

// Close the database and release the file lock
func (b *BoltStore) Close() error {
	return b.DB.Close()
}

func (b *BoltStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	expired := false
	err := b.DB.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(boltBucket).Get([]byte(key))
		if len(raw) < 8 {
			return nil
		}
		expires := int64(binary.BigEndian.Uint64(raw[:8]))
		if expires != 0 && b.now().UnixNano() >= expires {
			expired = true
			return nil
		}
		// raw is only valid inside the transaction
		value = append([]byte(nil), raw[8:]...)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if expired {
		return nil, false, b.Delete(ctx, key)
	}
	return value, value != nil, nil
}

func (b *BoltStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	raw := make([]byte, 8, 8+len(value))
	if ttl > 0 {
		binary.BigEndian.PutUint64(raw, uint64(b.now().Add(ttl).UnixNano()))
	}
	raw = append(raw, value...)
	return b.DB.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put([]byte(key), raw)
	})
}

func (b *BoltStore) Delete(ctx context.Context, key string) error {
	return b.DB.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Delete([]byte(key))
	})
}
