package stores

import (
	"context"
	"errors"
	"time"

	"github.com/openfroyo/refdata/pkg/refdata"
)

var (
	// ErrNotFound is returned when a publish record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotInitialized is returned when the store is used before Init or after Close.
	ErrNotInitialized = errors.New("store not initialized")
)

// PublishRecord describes one snapshot publication.
type PublishRecord struct {
	Revision         string               `json:"revision"`
	PreviousRevision string               `json:"previous_revision,omitempty"`
	Source           string               `json:"source,omitempty"`
	Actor            string               `json:"actor"`
	Counts           map[refdata.Kind]int `json:"counts"`
	PublishedAt      time.Time            `json:"published_at"`
}

// Store defines the interface for the snapshot store.
type Store interface {
	// Lifecycle
	Init(ctx context.Context) error
	Close() error
	HealthCheck(ctx context.Context) error

	// Reads
	Current() *refdata.Snapshot
	History(limit int) []*PublishRecord
	GetPublish(revision string) (*PublishRecord, error)

	// Writes
	Publish(ctx context.Context, snapshot *refdata.Snapshot) (*PublishRecord, error)
}

// actorContextKey carries the identity recorded on publish records.
type actorContextKey struct{}

// WithActor returns a context that attributes publishes to actor.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// actorFromContext returns the actor set by WithActor, or "system".
func actorFromContext(ctx context.Context) string {
	if actor, ok := ctx.Value(actorContextKey{}).(string); ok && actor != "" {
		return actor
	}
	return "system"
}
