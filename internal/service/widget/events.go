package widget

import (
	"sync"
	"time"

	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/model/chat"
)

// EventType names what changed on a widget.
type EventType string

const (
	EventMessage      EventType = "message"
	EventComposing    EventType = "composing"
	EventNotification EventType = "notification"
	EventVisibility   EventType = "visibility"
	EventUnmounted    EventType = "unmounted"
)

// Notification is a short-lived toast shown next to the transcript.
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant"`
}

// Visibility mirrors the presentational flags of a widget.
type Visibility struct {
	Open      bool `json:"open"`
	Minimized bool `json:"minimized"`
}

// Event is delivered to subscribers in publish order.
type Event struct {
	Type         EventType     `json:"type"`
	WidgetID     string        `json:"widgetId"`
	Message      *chat.Message `json:"message,omitempty"`
	Composing    *bool         `json:"composing,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
	Visibility   *Visibility   `json:"visibility,omitempty"`
	Timestamp    int64         `json:"timestamp"`
}

// Bus fans widget events out to subscribers. Publishing never blocks: a
// subscriber whose buffer is full misses the event.
type Bus struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

// NewBus returns an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[*Subscription]struct{})}
}

// Subscription is one registered listener. Close releases it.
type Subscription struct {
	bus    *Bus
	events chan Event
	once   sync.Once
}

// Subscribe registers a listener with the given channel buffer. Subscribing
// to a closed bus yields an already-closed subscription.
func (b *Bus) Subscribe(buffer int) *Subscription {
	if buffer < 1 {
		buffer = 1
	}
	sub := &Subscription{bus: b, events: make(chan Event, buffer)}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		sub.once.Do(func() { close(sub.events) })
		return sub
	}
	b.subs[sub] = struct{}{}
	return sub
}

// Events returns the delivery channel. It is closed when the subscription or
// the bus is closed.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Close unregisters the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.bus.mu.Lock()
	delete(s.bus.subs, s)
	s.bus.mu.Unlock()
	s.once.Do(func() { close(s.events) })
}

// Publish stamps and delivers ev to every subscriber.
func (b *Bus) Publish(ev Event) {
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().UnixMilli()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for sub := range b.subs {
		select {
		case sub.events <- ev:
		default:
		}
	}
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close releases every subscription. Later publishes are dropped.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subs {
		sub.once.Do(func() { close(sub.events) })
		delete(b.subs, sub)
	}
}
