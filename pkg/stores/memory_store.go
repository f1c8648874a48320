package stores

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/openfroyo/refdata/pkg/refdata"
)

// Compile-time checks.
var (
	_ Store        = (*MemoryStore)(nil)
	_ refdata.View = (*MemoryStore)(nil)
)

// MemoryStore implements Store in process memory.
type MemoryStore struct {
	current     atomic.Pointer[refdata.Snapshot]
	initialized atomic.Bool

	mu          sync.Mutex // serialises publishers and guards history
	history     []*PublishRecord
	historySize int
}

// Config holds memory store configuration
type Config struct {
	// HistorySize bounds the number of publish records kept (default 16).
	HistorySize int
}

// NewMemoryStore creates a new memory store instance
func NewMemoryStore(cfg Config) (*MemoryStore, error) {
	if cfg.HistorySize < 0 {
		return nil, fmt.Errorf("history size must not be negative: %d", cfg.HistorySize)
	}

	// Set defaults
	if cfg.HistorySize == 0 {
		cfg.HistorySize = 16
	}

	return &MemoryStore{
		historySize: cfg.HistorySize,
	}, nil
}

// Init makes the store ready and publishes nothing: Current returns an
// empty snapshot until the first Publish.
func (s *MemoryStore) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.initialized.Store(true)
	return nil
}

// Close releases the current snapshot. Readers holding a snapshot keep it.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized.Store(false)
	s.current.Store(nil)
	s.history = nil
	return nil
}

// HealthCheck verifies the store is usable
func (s *MemoryStore) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.initialized.Load() {
		return ErrNotInitialized
	}
	return nil
}

// Current returns the most recently published snapshot. Before the first
// publish it returns nil, which refdata treats as an empty snapshot.
func (s *MemoryStore) Current() *refdata.Snapshot {
	return s.current.Load()
}

// Publish makes snapshot the current one.
func (s *MemoryStore) Publish(ctx context.Context, snapshot *refdata.Snapshot) (*PublishRecord, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("failed to publish: snapshot is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to publish: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized.Load() {
		return nil, fmt.Errorf("failed to publish: %w", ErrNotInitialized)
	}

	record := &PublishRecord{
		Revision:         snapshot.Revision(),
		PreviousRevision: s.current.Load().Revision(),
		Source:           snapshot.Source(),
		Actor:            actorFromContext(ctx),
		Counts:           snapshot.Counts(),
		PublishedAt:      time.Now().UTC(),
	}

	s.current.Store(snapshot)

	s.history = append(s.history, record)
	if over := len(s.history) - s.historySize; over > 0 {
		s.history = append([]*PublishRecord(nil), s.history[over:]...)
	}

	return record, nil
}

// History returns up to limit publish records, newest first. A limit of zero
// or less returns all retained records.
func (s *MemoryStore) History(limit int) []*PublishRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.history)
	if limit > 0 && limit < n {
		n = limit
	}

	records := make([]*PublishRecord, 0, n)
	for i := len(s.history) - 1; i >= 0 && len(records) < n; i-- {
		records = append(records, s.history[i])
	}
	return records
}

// GetPublish retrieves a retained publish record by revision
func (s *MemoryStore) GetPublish(revision string) (*PublishRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].Revision == revision {
			return s.history[i], nil
		}
	}
	return nil, fmt.Errorf("publish record %s: %w", revision, ErrNotFound)
}
