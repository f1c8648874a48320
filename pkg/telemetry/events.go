package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is a notification about the reference data lifecycle.
type Event struct {
	// ID is the unique identifier for this event.
	ID string `json:"id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Type is the event type.
	Type string `json:"type"`

	// Source identifies where the event originated.
	Source string `json:"source"`

	// Revision is the snapshot revision the event concerns, if any.
	Revision string `json:"revision,omitempty"`

	// Message is a human-readable event message.
	Message string `json:"message"`

	// Level is the event severity level (info, warning, error).
	Level string `json:"level"`

	// Data contains additional event-specific data.
	Data map[string]interface{} `json:"data,omitempty"`
}

// Event types.
const (
	EventTypeSnapshotPublished = "snapshot.published"
	EventTypeReloadRejected    = "reload.rejected"
	EventTypeReloadFailed      = "reload.failed"
	EventTypePolicyViolation   = "policy.violation"
)

// Event levels.
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// EventSubscriber is a function that handles events.
type EventSubscriber func(event Event)

// EventFilter determines if an event should be delivered.
type EventFilter func(event Event) bool

// EventPublisher delivers lifecycle events to subscribers.
type EventPublisher struct {
	config      EventsConfig
	buffer      chan Event
	subscribers []subscriberEntry
	wg          sync.WaitGroup
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
}

type subscriberEntry struct {
	subscriber EventSubscriber
	filter     EventFilter
}

// NewEventPublisher creates a new event publisher with the given configuration.
func NewEventPublisher(cfg EventsConfig) (*EventPublisher, error) {
	ctx, cancel := context.WithCancel(context.Background())

	ep := &EventPublisher{
		config: cfg,
		ctx:    ctx,
		cancel: cancel,
	}

	if cfg.Enabled && cfg.EnableAsync {
		ep.buffer = make(chan Event, cfg.BufferSize)
		ep.wg.Add(1)
		go ep.processEvents()
	}

	return ep, nil
}

// Publish publishes an event to all subscribers. In async mode a full
// buffer drops the event and reports an error.
func (ep *EventPublisher) Publish(event Event) error {
	if !ep.config.Enabled {
		return nil
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if ep.config.EnableAsync {
		select {
		case <-ep.ctx.Done():
			return fmt.Errorf("event publisher stopped")
		default:
		}

		select {
		case ep.buffer <- event:
			return nil
		default:
			return fmt.Errorf("event buffer full, event dropped")
		}
	}

	ep.deliverEvent(event)
	return nil
}

// PublishSnapshotPublished publishes a snapshot published event.
func (ep *EventPublisher) PublishSnapshotPublished(revision, previous string, records int) error {
	return ep.Publish(Event{
		Type:     EventTypeSnapshotPublished,
		Source:   "loader",
		Revision: revision,
		Message:  fmt.Sprintf("Snapshot %s published with %d records", revision, records),
		Level:    EventLevelInfo,
		Data: map[string]interface{}{
			"previous_revision": previous,
			"records":           records,
		},
	})
}

// PublishReloadRejected publishes an event for a snapshot blocked by policy.
func (ep *EventPublisher) PublishReloadRejected(revision string, blocking int) error {
	return ep.Publish(Event{
		Type:     EventTypeReloadRejected,
		Source:   "loader",
		Revision: revision,
		Message:  fmt.Sprintf("Snapshot %s rejected by %d blocking violations", revision, blocking),
		Level:    EventLevelWarning,
		Data: map[string]interface{}{
			"blocking": blocking,
		},
	})
}

// PublishReloadFailed publishes an event for a reload that errored.
func (ep *EventPublisher) PublishReloadFailed(reason string) error {
	return ep.Publish(Event{
		Type:    EventTypeReloadFailed,
		Source:  "loader",
		Message: fmt.Sprintf("Reload failed: %s", reason),
		Level:   EventLevelError,
		Data: map[string]interface{}{
			"reason": reason,
		},
	})
}

// PublishPolicyViolation publishes a policy violation event.
func (ep *EventPublisher) PublishPolicyViolation(revision, policyName, resource, message, severity string) error {
	level := EventLevelWarning
	if severity == "error" || severity == "critical" {
		level = EventLevelError
	}
	return ep.Publish(Event{
		Type:     EventTypePolicyViolation,
		Source:   "policy_engine",
		Revision: revision,
		Message:  fmt.Sprintf("Policy %s: %s", policyName, message),
		Level:    level,
		Data: map[string]interface{}{
			"policy":   policyName,
			"resource": resource,
			"severity": severity,
		},
	})
}

// Subscribe adds a new event subscriber. A nil filter receives every event.
// Subscribers run on the delivering goroutine and must not block or
// subscribe further.
func (ep *EventPublisher) Subscribe(subscriber EventSubscriber, filter EventFilter) {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	ep.subscribers = append(ep.subscribers, subscriberEntry{
		subscriber: subscriber,
		filter:     filter,
	})
}

// processEvents delivers buffered events until shutdown, then drains the
// buffer.
func (ep *EventPublisher) processEvents() {
	defer ep.wg.Done()

	for {
		select {
		case event := <-ep.buffer:
			ep.deliverEvent(event)

		case <-ep.ctx.Done():
			for {
				select {
				case event := <-ep.buffer:
					ep.deliverEvent(event)
				default:
					return
				}
			}
		}
	}
}

// deliverEvent calls every matching subscriber in order.
func (ep *EventPublisher) deliverEvent(event Event) {
	ep.mu.RLock()
	defer ep.mu.RUnlock()

	for _, entry := range ep.subscribers {
		if entry.filter != nil && !entry.filter(event) {
			continue
		}
		entry.subscriber(event)
	}
}

// Shutdown stops the publisher after delivering buffered events.
func (ep *EventPublisher) Shutdown(ctx context.Context) error {
	ep.cancel()

	done := make(chan struct{})
	go func() {
		ep.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event publisher shutdown timeout")
	}
}

// FilterByLevel creates a filter that only allows events of a specific level or higher.
func FilterByLevel(minLevel string) EventFilter {
	levels := map[string]int{
		EventLevelInfo:    0,
		EventLevelWarning: 1,
		EventLevelError:   2,
	}

	minLevelValue := levels[minLevel]

	return func(event Event) bool {
		return levels[event.Level] >= minLevelValue
	}
}

// FilterByType creates a filter that only allows events of specific types.
func FilterByType(types ...string) EventFilter {
	typeSet := make(map[string]bool)
	for _, t := range types {
		typeSet[t] = true
	}

	return func(event Event) bool {
		return typeSet[event.Type]
	}
}
