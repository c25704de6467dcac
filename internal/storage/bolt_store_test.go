package storage

import (
	"testing"
	"time"

	bolt "go.etcd.io/bbolt"
)

func openTestStore(t *testing.T, opts Options) *boltStore {
	t.Helper()
	storeRaw, err := openBolt(t.TempDir()+"/history.db", normalizeOptions(opts))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBoltStoreRecentReturnsNewestFirst(t *testing.T) {
	store := openTestStore(t, Options{})
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	calls := []string{"health", "info", "welcome"}
	for i, call := range calls {
		rec := CallRecord{Call: call, URL: "http://b/" + call, StartedAt: base.Add(time.Duration(i) * time.Second)}
		if err := store.Record(rec); err != nil {
			t.Fatalf("Record %s: %v", call, err)
		}
	}

	recent, err := store.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recent))
	}
	if recent[0].Call != "welcome" || recent[1].Call != "info" {
		t.Fatalf("unexpected order %#v", recent)
	}

	all, err := store.Recent(0)
	if err != nil || len(all) != 3 {
		t.Fatalf("Recent(0) = %d records, err=%v", len(all), err)
	}
}

func TestBoltStoreKeepsRecordsWithSameTimestamp(t *testing.T) {
	store := openTestStore(t, Options{})
	at := time.Now()

	for _, call := range []string{"health", "health"} {
		if err := store.Record(CallRecord{Call: call, StartedAt: at}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	recent, err := store.Recent(0)
	if err != nil || len(recent) != 2 {
		t.Fatalf("expected 2 records, got %d err=%v", len(recent), err)
	}
}

func TestBoltStoreExpiresRecords(t *testing.T) {
	store := openTestStore(t, Options{
		RecordTTL:       1 * time.Second,
		CleanupInterval: 1 * time.Second,
	})

	if err := store.Record(CallRecord{Call: "health", Error: "Request failed with status 500"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	recent, err := store.Recent(10)
	if err != nil || len(recent) != 1 || !recent[0].Failed() {
		t.Fatalf("expected one failed record, got %#v err=%v", recent, err)
	}

	// Fast-forward cleanup cadence and trigger expiry.
	store.lastCleanup.Store(time.Now().Add(-2 * time.Second).Unix())
	time.Sleep(1100 * time.Millisecond)

	recent, err = store.Recent(10)
	if err != nil {
		t.Fatalf("Recent after expiry: %v", err)
	}
	if len(recent) != 0 {
		t.Fatalf("expected expired record to be hidden, got %#v", recent)
	}

	if err := store.maybeCleanupExpired(time.Now()); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	var remaining int
	if err := store.db.View(func(tx *bolt.Tx) error {
		remaining = tx.Bucket([]byte(callBucket)).Stats().KeyN
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected cleanup to delete expired keys, %d left", remaining)
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.Record(CallRecord{Call: "x"}); err != nil {
		t.Fatalf("noop store Record: %v", err)
	}
	if recs, err := store.Recent(5); err != nil || recs != nil {
		t.Fatalf("noop store Recent = %v, %v", recs, err)
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for missing path")
	}
}
