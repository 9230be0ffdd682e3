package calendar

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType names what happened on the engine.
type EventType string

const (
	// EventRefreshed follows every wholesale snapshot replacement.
	EventRefreshed EventType = "refreshed"
	// EventApplied is published when an optimistic change becomes visible.
	EventApplied EventType = "applied"
	// EventCommitted is published once the backend accepted a mutation.
	EventCommitted EventType = "committed"
	// EventReverted carries the rejection and its user-facing message.
	EventReverted EventType = "reverted"
	// EventSelected carries creation defaults for a range selection.
	EventSelected EventType = "selected"
)

// Event is delivered to subscribers.
type Event struct {
	Type          EventType
	MutationID    uuid.UUID
	AppointmentID int64
	Err           error
	Message       string
	Selection     *Selection
	At            time.Time
}

const subscriberBuffer = 16

// Bus fans events out to subscribers. Publishing never blocks: a subscriber
// whose buffer is full misses the event.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan Event)}
}

// Subscribe returns a channel of events and the function that ends the
// subscription and closes the channel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan Event, subscriberBuffer)
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
}

// Publish delivers ev to every subscriber that has room for it.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Len returns the number of live subscribers.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
