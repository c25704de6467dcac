package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	callBucket = "calls"
	// keys are the record start time in unix nanos followed by a sequence
	// number, so cursor order is chronological.
	keyBytes = 16
)

// storedRecord is the on-disk envelope.
type storedRecord struct {
	ExpiresAt int64      `json:"expires_at"`
	Record    CallRecord `json:"record"`
}

// boltStore implements a Store backed by BoltDB.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	recordTTL       time.Duration
	cleanupInterval time.Duration
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(callBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		recordTTL:       opts.RecordTTL,
		cleanupInterval: opts.CleanupInterval,
	}
	store.lastCleanup.Store(time.Now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Record appends a call record with the configured TTL.
func (b *boltStore) Record(rec CallRecord) error {
	if b == nil || b.db == nil {
		return nil
	}

	now := time.Now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = now
	}

	value, err := json.Marshal(storedRecord{
		ExpiresAt: now.Add(b.recordTTL).Unix(),
		Record:    rec,
	})
	if err != nil {
		return fmt.Errorf("encode call record: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(callBucket))
		if bucket == nil {
			return fmt.Errorf("call bucket missing")
		}
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		return bucket.Put(encodeKey(rec.StartedAt, seq), value)
	})
}

// Recent returns up to limit unexpired records, newest first. A non-positive
// limit returns everything.
func (b *boltStore) Recent(limit int) ([]CallRecord, error) {
	if b == nil || b.db == nil {
		return nil, nil
	}

	now := time.Now()
	var out []CallRecord
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(callBucket))
		if bucket == nil {
			return fmt.Errorf("call bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.Last(); k != nil; k, v = cursor.Prev() {
			stored, ok := decodeRecord(v)
			if !ok || !time.Unix(stored.ExpiresAt, 0).After(now) {
				continue
			}
			out = append(out, stored.Record)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
		return nil
	})
	return out, err
}

// maybeCleanupExpired removes expired records on a fixed cadence to avoid unbounded growth.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(callBucket))
		if bucket == nil {
			return fmt.Errorf("call bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; {
			stored, ok := decodeRecord(v)
			if !ok || !time.Unix(stored.ExpiresAt, 0).After(now) {
				key := append([]byte(nil), k...)
				if err := cursor.Delete(); err != nil {
					return err
				}
				// Next after Delete skips an entry; seek past the removed key instead.
				k, v = cursor.Seek(key)
				continue
			}
			k, v = cursor.Next()
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

func encodeKey(t time.Time, seq uint64) []byte {
	key := make([]byte, keyBytes)
	binary.BigEndian.PutUint64(key[:8], uint64(t.UnixNano()))
	binary.BigEndian.PutUint64(key[8:], seq)
	return key
}

// decodeRecord decodes the stored envelope.
func decodeRecord(value []byte) (storedRecord, bool) {
	var stored storedRecord
	if err := json.Unmarshal(value, &stored); err != nil {
		return storedRecord{}, false
	}
	if stored.ExpiresAt <= 0 {
		return storedRecord{}, false
	}
	return stored, true
}
