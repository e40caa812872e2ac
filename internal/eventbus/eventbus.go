// Package eventbus fans the api.Event union (§6: ModelUpdated,
// SketchSolved, SelectionChanged, Error) out to host-side subscribers.
// internal/api.Service produces events synchronously as return values;
// a host that wants multiple independent consumers (a UI thread, a
// command-log writer, a remote collaboration relay) publishes each
// event here instead of threading subscriber lists through Service
// itself.
//
// Grounded on features/stream/pulse/sink.go's Envelope/Sink shape: an
// envelope carrying event type, project scope and a timestamp wraps the
// JSON-marshaled event, and Publish derives a destination stream name
// from the event rather than requiring the caller to name one.
package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/waffle-iron/core/internal/api"
)

// Envelope wraps an api.Event for transmission across a bus boundary.
type Envelope struct {
	Type      api.EventKind `json:"type"`
	ProjectID string        `json:"project_id"`
	Timestamp time.Time     `json:"timestamp"`
	Payload   api.Event     `json:"payload"`
}

// Publisher publishes events scoped to a project. Implementations must
// be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, projectID string, event api.Event) error
}

// Subscription delivers envelopes until Close is called. Events sent
// before a subscriber's Unsubscribe call may still be buffered in C;
// callers should drain C after calling Close if they need every
// already-queued event.
type Subscription struct {
	C <-chan Envelope

	unsubscribe func()
}

// Close stops delivery to this subscription.
func (s *Subscription) Close() {
	s.unsubscribe()
}

// ErrClosed is returned by Publish and Subscribe once the Bus has been
// closed.
var ErrClosed = errors.New("eventbus: bus is closed")

// Bus is an in-memory, single-process fan-out of events to
// subscribers, scoped per project. Suitable for a desktop host with one
// UI process, or for tests; a multi-host deployment should publish
// through a durable backend instead (see eventbus/pulse).
type Bus struct {
	mu          sync.Mutex
	subscribers map[string]map[int]chan Envelope
	nextID      int
	closed      bool
	bufferSize  int
}

var _ Publisher = (*Bus)(nil)

// New creates an empty in-memory event bus. bufferSize bounds the
// per-subscriber channel; a slow subscriber that falls behind by more
// than bufferSize events drops the oldest rather than blocking Publish.
func New(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = 32
	}
	return &Bus{
		subscribers: make(map[string]map[int]chan Envelope),
		bufferSize:  bufferSize,
	}
}

// Publish delivers event to every subscriber of projectID. Publish
// never blocks on a slow subscriber: if a subscriber's buffer is full,
// the oldest queued envelope is dropped to make room.
func (b *Bus) Publish(_ context.Context, projectID string, event api.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}

	env := Envelope{Type: event.Kind, ProjectID: projectID, Timestamp: time.Now().UTC(), Payload: event}
	for _, ch := range b.subscribers[projectID] {
		select {
		case ch <- env:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- env:
			default:
			}
		}
	}
	return nil
}

// Subscribe registers a new subscriber for projectID's events.
func (b *Bus) Subscribe(projectID string) (*Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}

	id := b.nextID
	b.nextID++
	ch := make(chan Envelope, b.bufferSize)
	if b.subscribers[projectID] == nil {
		b.subscribers[projectID] = make(map[int]chan Envelope)
	}
	b.subscribers[projectID][id] = ch

	return &Subscription{
		C: ch,
		unsubscribe: func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if subs, ok := b.subscribers[projectID]; ok {
				if c, ok := subs[id]; ok {
					delete(subs, id)
					close(c)
				}
				if len(subs) == 0 {
					delete(b.subscribers, projectID)
				}
			}
		},
	}, nil
}

// Close unsubscribes every subscriber and marks the bus closed.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, subs := range b.subscribers {
		for _, ch := range subs {
			close(ch)
		}
	}
	b.subscribers = nil
}

// MarshalEnvelope serializes env to JSON; exported so durable backends
// (eventbus/pulse) can reuse the exact same wire shape as the in-memory
// bus.
func MarshalEnvelope(env Envelope) ([]byte, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("eventbus: marshal envelope: %w", err)
	}
	return data, nil
}
