/*
hub.go - Connection registry and room-scoped fan-out

PURPOSE:
  Tracks which live connections belong to which rooms and delivers events
  to every subscriber of a room. Replaces implicit socket-library room
  state with an explicit registry: membership is created at subscribe time
  and torn down explicitly at unsubscribe time.

DELIVERY SEMANTICS:
  Publish never blocks. Each subscription has a small buffered channel; a
  subscriber that cannot keep up has the event dropped (and the drop is
  logged). If a room has no subscribers the event simply disappears; the
  notification row is the durable record.

CONCURRENCY:
  A single RWMutex guards the room map. Publish takes the read lock, so
  concurrent publishes to different (or the same) rooms do not serialize
  behind subscribes.

SEE ALSO:
  - events.go: Event names, payloads, room naming
  - api/stream.go: SSE transport draining subscriptions
*/
package notify

import (
	"log/slog"
	"sync"
)

// subscriberBuffer is the per-connection event buffer. Sized for bursts of
// a few near-simultaneous submissions, not for slow consumers.
const subscriberBuffer = 16

// Subscription is one live connection's membership in a set of rooms.
// Receive events from C; call Hub.Unsubscribe when the connection ends.
type Subscription struct {
	C     chan Event
	rooms []string
}

// Rooms returns the rooms this subscription was registered with.
func (s *Subscription) Rooms() []string { return s.rooms }

// Hub is the in-process connection registry.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Subscription]struct{}
	logger *slog.Logger
}

// NewHub creates an empty hub. A nil logger falls back to slog.Default.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		rooms:  make(map[string]map[*Subscription]struct{}),
		logger: logger,
	}
}

// Subscribe registers a new connection in the given rooms and returns its
// subscription. The connected event is queued immediately so transports
// can acknowledge the stream without a separate handshake.
func (h *Hub) Subscribe(rooms ...string) *Subscription {
	sub := &Subscription{
		C:     make(chan Event, subscriberBuffer),
		rooms: rooms,
	}

	h.mu.Lock()
	for _, room := range rooms {
		members, ok := h.rooms[room]
		if !ok {
			members = make(map[*Subscription]struct{})
			h.rooms[room] = members
		}
		members[sub] = struct{}{}
	}
	h.mu.Unlock()

	sub.C <- Event{
		Name: EventConnected,
		Data: map[string]string{"message": "Connected to real-time updates"},
	}
	return sub
}

// Unsubscribe removes the connection from all its rooms. Empty rooms are
// deleted so the registry does not accumulate abandoned keys.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	for _, room := range sub.rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, sub)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	h.mu.Unlock()
}

// Publish delivers an event to every current subscriber of the room.
// Non-blocking: full subscriber buffers drop the event.
func (h *Hub) Publish(room string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.rooms[room] {
		select {
		case sub.C <- event:
		default:
			h.logger.Warn("dropping event for slow subscriber",
				"room", room, "event", event.Name)
		}
	}
}

// SubscriberCount returns how many connections are currently in a room.
func (h *Hub) SubscriberCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
