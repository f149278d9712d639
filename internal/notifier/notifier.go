// Package notifier broadcasts per-seat status transitions to interested
// viewers. It is a pure sink from the core's perspective: delivery is
// at-most-once, ordered only within a single subscriber, with no replay
// buffer; reconnecting clients re-fetch the seat map instead.
package notifier

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Message types pushed to event viewers.
const (
	TypeSeatStatusChanged = "seatStatusChanged"
	TypeBulkSeatUpdate    = "bulkSeatUpdate"
	TypeCapacityUpdate    = "capacityUpdate"
	TypeSellingFast       = "sellingFast"
	TypeHoldExpiryWarning = "holdExpiryWarning"
)

// SeatUpdate is one seat's new status.
type SeatUpdate struct {
	SeatID string `json:"seat_id"`
	Status string `json:"status"`
}

// CapacitySummary is an event-level availability snapshot.
type CapacitySummary struct {
	Total     int `json:"total"`
	Sold      int `json:"sold"`
	Blocked   int `json:"blocked"`
	Remaining int `json:"remaining"`
}

// ExpiryWarning warns viewers that durable holds are about to lapse.
type ExpiryWarning struct {
	SeatIDs   []string  `json:"seat_ids"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Envelope is the wire form of one notification.
type Envelope struct {
	ID      uuid.UUID       `json:"id"`
	Type    string          `json:"type"`
	EventID string          `json:"event_id"`
	Payload json.RawMessage `json:"payload"`
	At      time.Time       `json:"at"`
}

// Notifier is the change-notification channel. Implementations must never
// block request handling; failures are logged, not surfaced.
type Notifier interface {
	SeatStatusChanged(ctx context.Context, eventID string, update SeatUpdate)
	BulkSeatUpdate(ctx context.Context, eventID string, updates []SeatUpdate)
	CapacityUpdate(ctx context.Context, eventID string, summary CapacitySummary)
	SellingFast(ctx context.Context, eventID string, summary CapacitySummary)
	HoldExpiryWarning(ctx context.Context, eventID string, warning ExpiryWarning)
}

// newEnvelope marshals payload into a typed envelope.
func newEnvelope(msgType, eventID string, payload interface{}) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		ID:      uuid.New(),
		Type:    msgType,
		EventID: eventID,
		Payload: raw,
		At:      time.Now().UTC(),
	}, nil
}

// Nop discards every notification; used when no sink is configured.
type Nop struct{}

func (Nop) SeatStatusChanged(context.Context, string, SeatUpdate)    {}
func (Nop) BulkSeatUpdate(context.Context, string, []SeatUpdate)     {}
func (Nop) CapacityUpdate(context.Context, string, CapacitySummary)  {}
func (Nop) SellingFast(context.Context, string, CapacitySummary)     {}
func (Nop) HoldExpiryWarning(context.Context, string, ExpiryWarning) {}

// Fanout forwards every notification to all configured sinks.
type Fanout []Notifier

func (f Fanout) SeatStatusChanged(ctx context.Context, eventID string, update SeatUpdate) {
	for _, n := range f {
		n.SeatStatusChanged(ctx, eventID, update)
	}
}

func (f Fanout) BulkSeatUpdate(ctx context.Context, eventID string, updates []SeatUpdate) {
	for _, n := range f {
		n.BulkSeatUpdate(ctx, eventID, updates)
	}
}

func (f Fanout) CapacityUpdate(ctx context.Context, eventID string, summary CapacitySummary) {
	for _, n := range f {
		n.CapacityUpdate(ctx, eventID, summary)
	}
}

func (f Fanout) SellingFast(ctx context.Context, eventID string, summary CapacitySummary) {
	for _, n := range f {
		n.SellingFast(ctx, eventID, summary)
	}
}

func (f Fanout) HoldExpiryWarning(ctx context.Context, eventID string, warning ExpiryWarning) {
	for _, n := range f {
		n.HoldExpiryWarning(ctx, eventID, warning)
	}
}
