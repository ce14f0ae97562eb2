package sse

import (
	"context"
	"sync"
)

// AllKey subscribes to every event regardless of its key.
const AllKey = "*"

// Event represents an SSE event to be sent to subscribers
type Event struct {
	Key   string
	Event string
	Data  interface{}
}

// Keyed is implemented by payloads addressed to a single subscriber key.
type Keyed interface {
	SubscriberKey() string
}

// Hub manages SSE subscribers and event broadcasting
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	bufferSize  int
}

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
		bufferSize:  16,
	}
}

// Subscribe registers a subscriber for key (AllKey for every event) and
// returns the event channel and cleanup function
func (h *Hub) Subscribe(key string) (<-chan Event, func()) {
	if key == "" {
		key = AllKey
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.bufferSize)
	if h.subscribers[key] == nil {
		h.subscribers[key] = make(map[chan Event]struct{})
	}
	h.subscribers[key][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[key], ch)
			close(ch)
			if len(h.subscribers[key]) == 0 {
				delete(h.subscribers, key)
			}
		})
	}

	return ch, cleanup
}

// Send delivers an event to subscribers of its key and to AllKey subscribers.
func (h *Hub) Send(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	h.deliver(AllKey, event)
	if event.Key != "" && event.Key != AllKey {
		h.deliver(event.Key, event)
	}
}

func (h *Hub) deliver(key string, event Event) {
	for ch := range h.subscribers[key] {
		select {
		case ch <- event:
		default:
			// slow subscriber, drop
		}
	}
}

// Publish implements broker.Publisher so the hub can sit next to the message
// broker in a fanout.
func (h *Hub) Publish(_ context.Context, routingKey string, payload any) error {
	event := Event{Event: routingKey, Data: payload}
	if k, ok := payload.(Keyed); ok {
		event.Key = k.SubscriberKey()
	}
	h.Send(event)
	return nil
}

// Close implements broker.Publisher.
func (h *Hub) Close() error {
	return nil
}

// TotalSubscribers returns the total number of active subscribers across all keys
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}
