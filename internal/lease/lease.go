// Package lease arbitrates seat contention with short-lived, TTL-bounded
// exclusive claims held in a shared low-latency store. It is the only
// place mutual exclusion is enforced: every mutation is a single atomic
// operation against the store, never a read followed by a write.
package lease

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrConflict is returned when a seat's lease is held by another party.
var ErrConflict = errors.New("seat is locked by another customer")

// ConflictError names the first seat that failed a multi-seat operation,
// so the client knows which seat to re-select.
type ConflictError struct {
	SeatKey string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("seat %s is no longer locked by you", e.SeatKey)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Manager is the seat lease store. Keys are content-addressed seat
// identities; values are holder ids. Leases self-expire after their TTL,
// which is how abandoned seat selections heal without any sweeping.
type Manager interface {
	// Acquire atomically creates the lease for holderID with the given
	// TTL, or refreshes the TTL when holderID already holds it (idempotent
	// re-acquire, e.g. on reconnect). Returns ErrConflict when another
	// holder owns the lease.
	Acquire(ctx context.Context, eventID, seatKey, holderID string, ttl time.Duration) error

	// Release deletes the lease only when holderID currently owns it.
	// Returns false (and no error) when the seat is not held by the caller.
	Release(ctx context.Context, eventID, seatKey, holderID string) (bool, error)

	// ExtendAll atomically extends every key's TTL, all-or-nothing: when
	// any key is missing or held by someone else, nothing is extended and
	// a ConflictError naming the first offending key is returned.
	ExtendAll(ctx context.Context, eventID string, seatKeys []string, holderID string, ttl time.Duration) error

	// Holders returns the current holder per key in one round trip, with
	// "" for seats that carry no lease.
	Holders(ctx context.Context, seatKeys []string) ([]string, error)

	// HolderKeys lists the seat keys holderID currently holds for an
	// event, verified against live lease state.
	HolderKeys(ctx context.Context, eventID, holderID string) ([]string, error)
}

// holderIndexKey is the per-holder reverse index set. It only serves the
// "my held seats" view; lease keys themselves stay authoritative.
func holderIndexKey(eventID, holderID string) string {
	return fmt.Sprintf("holder_leases:%s:%s", eventID, holderID)
}
