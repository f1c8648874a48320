package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/openfroyo/refdata/pkg/config"
	"github.com/openfroyo/refdata/pkg/refdata"
	"github.com/openfroyo/refdata/pkg/stores"
	"github.com/openfroyo/refdata/pkg/telemetry"
)

const baseSeed = `
productStores:
  - productStoreId: "10000"
    storeName: Demo Store
countries:
  - geoId: USA
    geoCodeAlpha2: US
states:
  - geoId: USA_CA
    countryGeoId: USA
`

const duplicateSeed = `
productStores:
  - productStoreId: "10000"
    storeName: Demo Store
  - productStoreId: "10000"
    storeName: Shadowed Store
`

func writeSeed(t *testing.T, path, content string) {
	t.Helper()

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write seed: %v", err)
	}
}

func setupTestLoader(t *testing.T, mutate func(*config.Config)) (*Loader, *stores.MemoryStore, *telemetry.Telemetry, string) {
	t.Helper()

	dir := t.TempDir()
	seed := filepath.Join(dir, "base.yaml")
	writeSeed(t, seed, baseSeed)

	cfg := config.DefaultConfig()
	cfg.Seeds = []string{seed}
	if mutate != nil {
		mutate(cfg)
	}

	store, err := stores.NewMemoryStore(stores.Config{})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	tel := telemetry.NewNop()
	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })

	l, err := New(cfg, store, tel)
	if err != nil {
		t.Fatalf("failed to create loader: %v", err)
	}
	return l, store, tel, seed
}

func TestReloadPublishes(t *testing.T) {
	l, store, tel, seed := setupTestLoader(t, nil)

	var published []telemetry.Event
	tel.Events.Subscribe(func(e telemetry.Event) { published = append(published, e) },
		telemetry.FilterByType(telemetry.EventTypeSnapshotPublished))

	res, err := l.Reload(context.Background())
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if res.Status != telemetry.ReloadStatusPublished {
		t.Fatalf("expected published, got %s", res.Status)
	}
	if res.Publish == nil || res.Publish.Revision != store.Current().Revision() {
		t.Fatalf("publish record does not match current snapshot: %+v", res.Publish)
	}
	if store.Current().Source() != seed {
		t.Errorf("expected source %s, got %s", seed, store.Current().Source())
	}

	ps, ok := l.Accessor().ProductStore("10000")
	if !ok || ps.StoreName != "Demo Store" {
		t.Errorf("unexpected lookup result: %+v %v", ps, ok)
	}

	if n, err := testutil.GatherAndCount(tel.Metrics.Registry(), "refdata_snapshot_publishes_total"); err != nil || n != 1 {
		t.Errorf("expected publish counter, got %d (%v)", n, err)
	}
	if len(published) != 1 || published[0].Revision != res.Publish.Revision {
		t.Errorf("expected one published event, got %+v", published)
	}
}

func TestReloadUnchanged(t *testing.T) {
	l, store, _, _ := setupTestLoader(t, nil)

	if _, err := l.Reload(context.Background()); err != nil {
		t.Fatalf("first reload failed: %v", err)
	}
	first := store.Current().Revision()

	res, err := l.Reload(context.Background())
	if err != nil {
		t.Fatalf("second reload failed: %v", err)
	}
	if res.Status != telemetry.ReloadStatusUnchanged {
		t.Errorf("expected unchanged, got %s", res.Status)
	}
	if store.Current().Revision() != first {
		t.Error("unchanged reload replaced the snapshot")
	}
	if n := len(store.History(0)); n != 1 {
		t.Errorf("expected 1 publish, got %d", n)
	}
}

func TestReloadRejectedKeepsPrevious(t *testing.T) {
	l, store, _, seed := setupTestLoader(t, func(cfg *config.Config) {
		cfg.Policy.FailOn = "warning"
	})

	if _, err := l.Reload(context.Background()); err != nil {
		t.Fatalf("initial reload failed: %v", err)
	}
	before := store.Current()

	writeSeed(t, seed, duplicateSeed)

	res, err := l.Reload(context.Background())
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
	if res.Status != telemetry.ReloadStatusRejected {
		t.Errorf("expected rejected status, got %s", res.Status)
	}
	if res.Load == nil || len(res.Load.Policy.Blocking()) != 1 {
		t.Errorf("expected one blocking violation, got %+v", res.Load)
	}
	if store.Current() != before {
		t.Error("rejected reload replaced the current snapshot")
	}
}

func TestReloadWarningsDoNotBlock(t *testing.T) {
	l, store, _, seed := setupTestLoader(t, nil)
	writeSeed(t, seed, duplicateSeed)

	res, err := l.Reload(context.Background())
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if len(res.Load.Policy.Violations) != 1 {
		t.Errorf("expected one warning, got %+v", res.Load.Policy.Violations)
	}

	// First occurrence wins.
	ps, _ := refdata.NewAccessor(store).ProductStore("10000")
	if ps.StoreName != "Demo Store" {
		t.Errorf("expected first occurrence, got %+v", ps)
	}
}

func TestReloadFailureKeepsPrevious(t *testing.T) {
	l, store, tel, seed := setupTestLoader(t, nil)

	if _, err := l.Reload(context.Background()); err != nil {
		t.Fatalf("initial reload failed: %v", err)
	}
	before := store.Current()

	writeSeed(t, seed, "productStores:\n  - storeName: missing key\n")

	res, err := l.Reload(context.Background())
	if err == nil {
		t.Fatal("expected reload error")
	}
	if errors.Is(err, ErrRejected) {
		t.Error("seed errors should not be reported as policy rejections")
	}
	if res.Status != telemetry.ReloadStatusFailed {
		t.Errorf("expected failed status, got %s", res.Status)
	}
	if store.Current() != before {
		t.Error("failed reload replaced the current snapshot")
	}

	reg := tel.Metrics.Registry()
	if n, err := testutil.GatherAndCount(reg, "refdata_reloads_total"); err != nil || n != 2 {
		t.Errorf("expected 2 reload series, got %d (%v)", n, err)
	}
}

func TestLoadWithoutPolicies(t *testing.T) {
	l, store, _, _ := setupTestLoader(t, func(cfg *config.Config) {
		cfg.Policy.Enabled = false
	})

	if l.Policies() != nil {
		t.Fatal("expected no policy engine")
	}

	res, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if res.Policy != nil || !res.Allowed() {
		t.Errorf("expected unevaluated allowed result, got %+v", res.Policy)
	}
	if store.Current() != nil {
		t.Error("Load must not publish")
	}
}

func TestNewErrors(t *testing.T) {
	store, _ := stores.NewMemoryStore(stores.Config{})

	if _, err := New(nil, store, nil); err == nil {
		t.Error("expected error without config")
	}
	if _, err := New(config.DefaultConfig(), nil, nil); err == nil {
		t.Error("expected error without store")
	}

	cfg := config.DefaultConfig()
	cfg.Policy.FailOn = "sometimes"
	if _, err := New(cfg, store, nil); err == nil {
		t.Error("expected error for bad threshold")
	}

	cfg = config.DefaultConfig()
	cfg.Policy.Paths = []string{filepath.Join(t.TempDir(), "missing")}
	if _, err := New(cfg, store, nil); err == nil {
		t.Error("expected error for missing policy path")
	}
}

func TestRunWatchesSeeds(t *testing.T) {
	l, store, _, seed := setupTestLoader(t, func(cfg *config.Config) {
		cfg.Watch.Enabled = true
		cfg.Watch.Debounce = 20 * time.Millisecond
	})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	var runErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = l.Run(ctx)
	}()

	waitFor(t, func() bool { return store.Current() != nil })
	first := store.Current().Revision()

	// The watcher starts after the initial publish; rewrite until it notices.
	changed := baseSeed + "partyRoles:\n  - roleTypeId: CUSTOMER\n"
	lastWrite := time.Time{}
	waitFor(t, func() bool {
		if store.Current().Revision() != first {
			return true
		}
		if time.Since(lastWrite) > 250*time.Millisecond {
			writeSeed(t, seed, changed)
			lastWrite = time.Now()
		}
		return false
	})
	if got := len(store.Current().PartyRoles()); got != 1 {
		t.Errorf("expected reloaded party roles, got %d", got)
	}

	cancel()
	wg.Wait()
	if runErr != nil {
		t.Errorf("Run returned error: %v", runErr)
	}
}

func TestRunInitialFailure(t *testing.T) {
	l, _, _, seed := setupTestLoader(t, nil)
	if err := os.Remove(seed); err != nil {
		t.Fatal(err)
	}

	if err := l.Run(context.Background()); err == nil {
		t.Error("expected initial reload error")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for condition")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
