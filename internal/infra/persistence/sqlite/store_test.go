package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"poms/pkg/domain"
)

func TestSQLiteStorePersistAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := NewStore(path, domain.NewRulesEngine(), nil)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	if store.Loaded() {
		t.Fatalf("fresh database should not report loaded state")
	}
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, e := tx.CreateDoctor(domain.Doctor{Name: "Dr. Meena", Specialization: "Oncology"}); e != nil {
			return e
		}
		_, e := tx.CreateRoom(domain.Room{RoomType: domain.RoomICU, CostPerDay: 30000})
		return e
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reloaded, err := NewStore(path, domain.NewRulesEngine(), nil)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	t.Cleanup(func() { _ = reloaded.Close() })
	if !reloaded.Loaded() {
		t.Fatalf("expected loaded state")
	}
	if got := len(reloaded.ListDoctors()); got != 1 {
		t.Fatalf("expected 1 doctor, got %d", got)
	}
	rooms := reloaded.ListRooms()
	if len(rooms) != 1 || rooms[0].Occupancy != domain.Vacant {
		t.Fatalf("unexpected rooms %+v", rooms)
	}
}

func TestSQLiteStoreWritesEveryBucket(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "state.db"), nil, nil)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	var count int
	if err := store.DB().QueryRow(`SELECT COUNT(*) FROM state`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 8 {
		t.Fatalf("expected 8 buckets, got %d", count)
	}
}

func TestSQLiteStoreCorruptBucketIsReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := NewStore(path, nil, nil)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	if _, err := store.DB().Exec(`INSERT INTO state(bucket,payload) VALUES('rooms', ?)`, []byte("{broken")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_ = store.Close()

	reopened, err := NewStore(path, nil, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	if reopened.Loaded() || reopened.LoadError() == nil {
		t.Fatalf("expected corrupt state to be reported, loaded=%v err=%v", reopened.Loaded(), reopened.LoadError())
	}
}
