package stores

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/openfroyo/refdata/pkg/refdata"
)

// setupTestStore creates an initialized memory store for testing
func setupTestStore(t *testing.T) *MemoryStore {
	t.Helper()

	store, err := NewMemoryStore(Config{HistorySize: 3})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	return store
}

func snapshotWithStores(revision string, ids ...string) *refdata.Snapshot {
	var c refdata.Collections
	for _, id := range ids {
		c.ProductStores = append(c.ProductStores, refdata.ProductStore{ProductStoreID: id})
	}
	return refdata.NewSnapshot(c, refdata.WithRevision(revision), refdata.WithSource("test"))
}

// TestStoreLifecycle tests initialization and closure
func TestStoreLifecycle(t *testing.T) {
	store, err := NewMemoryStore(Config{})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.HealthCheck(ctx); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized before Init, got %v", err)
	}

	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	if err := store.HealthCheck(ctx); err != nil {
		t.Fatalf("health check failed: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}

	if _, err := store.Publish(ctx, snapshotWithStores("r1", "10000")); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized after Close, got %v", err)
	}
}

func TestNewMemoryStoreRejectsNegativeHistory(t *testing.T) {
	if _, err := NewMemoryStore(Config{HistorySize: -1}); err == nil {
		t.Fatal("expected error for negative history size")
	}
}

func TestCurrentBeforePublishIsEmpty(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	if store.Current() != nil {
		t.Fatal("expected no snapshot before first publish")
	}

	acc := refdata.NewAccessor(store)
	if _, ok := acc.ProductStore("10000"); ok {
		t.Error("expected absent lookup before first publish")
	}
}

func TestPublishAndHistory(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := WithActor(context.Background(), "loader")

	rec, err := store.Publish(ctx, snapshotWithStores("r1", "10000", "10001"))
	if err != nil {
		t.Fatalf("failed to publish: %v", err)
	}
	if rec.Revision != "r1" || rec.PreviousRevision != "" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.Actor != "loader" {
		t.Errorf("expected actor loader, got %s", rec.Actor)
	}
	if rec.Counts[refdata.KindProductStores] != 2 {
		t.Errorf("expected 2 product stores counted, got %d", rec.Counts[refdata.KindProductStores])
	}

	rec, err = store.Publish(context.Background(), snapshotWithStores("r2", "20000"))
	if err != nil {
		t.Fatalf("failed to publish: %v", err)
	}
	if rec.PreviousRevision != "r1" {
		t.Errorf("expected previous revision r1, got %s", rec.PreviousRevision)
	}
	if rec.Actor != "system" {
		t.Errorf("expected default actor system, got %s", rec.Actor)
	}

	if got := store.Current().Revision(); got != "r2" {
		t.Errorf("expected current revision r2, got %s", got)
	}

	history := store.History(0)
	if len(history) != 2 {
		t.Fatalf("expected 2 history records, got %d", len(history))
	}
	if history[0].Revision != "r2" || history[1].Revision != "r1" {
		t.Errorf("expected newest first, got %s, %s", history[0].Revision, history[1].Revision)
	}

	if got := store.History(1); len(got) != 1 || got[0].Revision != "r2" {
		t.Errorf("expected only r2 with limit 1, got %v", got)
	}
}

func TestHistoryIsBounded(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		if _, err := store.Publish(ctx, snapshotWithStores(fmt.Sprintf("r%d", i))); err != nil {
			t.Fatalf("failed to publish r%d: %v", i, err)
		}
	}

	history := store.History(0)
	if len(history) != 3 {
		t.Fatalf("expected 3 retained records, got %d", len(history))
	}
	if history[2].Revision != "r3" {
		t.Errorf("expected oldest retained r3, got %s", history[2].Revision)
	}

	if _, err := store.GetPublish("r1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for evicted revision, got %v", err)
	}
	rec, err := store.GetPublish("r4")
	if err != nil {
		t.Fatalf("failed to get publish record: %v", err)
	}
	if rec.PreviousRevision != "r3" {
		t.Errorf("expected previous revision r3, got %s", rec.PreviousRevision)
	}
}

func TestPublishRejectsNil(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	if _, err := store.Publish(context.Background(), nil); err == nil {
		t.Fatal("expected error publishing nil snapshot")
	}
}

func TestPublishCancelledContext(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Publish(ctx, snapshotWithStores("r1")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if store.Current() != nil {
		t.Error("expected nothing published")
	}
}

// TestConcurrentReadersSeeWholeSnapshots checks that readers never observe a
// mix of two snapshots while publishers swap them.
func TestConcurrentReadersSeeWholeSnapshots(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	a := snapshotWithStores("a", "A1", "A2")
	b := snapshotWithStores("b", "B1", "B2")
	if _, err := store.Publish(ctx, a); err != nil {
		t.Fatalf("failed to publish: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				snap := store.Current()
				stores := snap.ProductStores()
				if len(stores) != 2 || stores[0].ProductStoreID[0] != stores[1].ProductStoreID[0] {
					errs <- fmt.Errorf("torn read: %v", stores)
					return
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			next := a
			if i%2 == 0 {
				next = b
			}
			if _, err := store.Publish(ctx, next); err != nil {
				errs <- err
				return
			}
		}
	}()

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
