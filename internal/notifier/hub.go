package notifier

import (
	"context"
	"sync"
)

// Subscription is one viewer's feed for a single event.
type Subscription struct {
	hub     *Hub
	eventID string
	ch      chan Envelope
}

// C delivers this subscriber's notifications.
func (s *Subscription) C() <-chan Envelope {
	return s.ch
}

// Close leaves the event room.
func (s *Subscription) Close() {
	s.hub.unsubscribe(s)
}

// Hub fans notifications out to viewers connected to this instance. Rooms
// are keyed by event id. Sends never block: a subscriber that cannot keep
// up misses messages (at-most-once, no replay) and is expected to re-fetch
// the seat map on reconnect.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Subscription]struct{}
	buffer int
}

// NewHub creates a hub whose subscribers buffer up to buffer messages.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		rooms:  make(map[string]map[*Subscription]struct{}),
		buffer: buffer,
	}
}

// Subscribe joins an event's room.
func (h *Hub) Subscribe(eventID string) *Subscription {
	sub := &Subscription{
		hub:     h,
		eventID: eventID,
		ch:      make(chan Envelope, h.buffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[eventID]
	if !ok {
		room = make(map[*Subscription]struct{})
		h.rooms[eventID] = room
	}
	room[sub] = struct{}{}
	return sub
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[sub.eventID]
	if !ok {
		return
	}
	if _, member := room[sub]; !member {
		return
	}
	delete(room, sub)
	close(sub.ch)
	if len(room) == 0 {
		delete(h.rooms, sub.eventID)
	}
}

// SubscriberCount reports how many viewers are in an event's room.
func (h *Hub) SubscriberCount(eventID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[eventID])
}

func (h *Hub) broadcast(msgType, eventID string, payload interface{}) {
	envelope, err := newEnvelope(msgType, eventID, payload)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.rooms[eventID] {
		select {
		case sub.ch <- envelope:
		default:
			// Slow subscriber: drop rather than block the core.
		}
	}
}

func (h *Hub) SeatStatusChanged(_ context.Context, eventID string, update SeatUpdate) {
	h.broadcast(TypeSeatStatusChanged, eventID, update)
}

func (h *Hub) BulkSeatUpdate(_ context.Context, eventID string, updates []SeatUpdate) {
	h.broadcast(TypeBulkSeatUpdate, eventID, updates)
}

func (h *Hub) CapacityUpdate(_ context.Context, eventID string, summary CapacitySummary) {
	h.broadcast(TypeCapacityUpdate, eventID, summary)
}

func (h *Hub) SellingFast(_ context.Context, eventID string, summary CapacitySummary) {
	h.broadcast(TypeSellingFast, eventID, summary)
}

func (h *Hub) HoldExpiryWarning(_ context.Context, eventID string, warning ExpiryWarning) {
	h.broadcast(TypeHoldExpiryWarning, eventID, warning)
}
