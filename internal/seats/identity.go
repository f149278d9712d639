package seats

import (
	"fmt"
	"strings"

	"boxoffice/internal/shared/apperr"

	"github.com/google/uuid"
)

// SeatIdentity addresses one seat of one event deterministically, with no
// database lookup. It doubles as the lease-store key and, when no durable
// record exists, as the seat's externally visible "virtual" id.
type SeatIdentity struct {
	EventID    uuid.UUID
	SectionID  uuid.UUID
	Row        string
	SeatNumber string
}

// LeaseKey is the seat's key in the lease store.
func (id SeatIdentity) LeaseKey() string {
	return fmt.Sprintf("lease:%s:%s:%s:%s", id.EventID, id.SectionID, id.Row, id.SeatNumber)
}

// VirtualID is the seat's externally visible reference, scoped to its
// event: section:row:number.
func (id SeatIdentity) VirtualID() string {
	return fmt.Sprintf("%s:%s:%s", id.SectionID, id.Row, id.SeatNumber)
}

// ParseVirtualID resolves a virtual id back into a SeatIdentity for the
// given event.
func ParseVirtualID(eventID uuid.UUID, virtualID string) (SeatIdentity, error) {
	parts := strings.SplitN(virtualID, ":", 3)
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return SeatIdentity{}, apperr.BadRequest("invalid seat id: %s", virtualID)
	}

	sectionID, err := uuid.Parse(parts[0])
	if err != nil {
		return SeatIdentity{}, apperr.BadRequest("invalid section in seat id: %s", virtualID)
	}

	return SeatIdentity{
		EventID:    eventID,
		SectionID:  sectionID,
		Row:        parts[1],
		SeatNumber: parts[2],
	}, nil
}

// ParseLeaseKey recovers the SeatIdentity encoded in a lease-store key.
func ParseLeaseKey(key string) (SeatIdentity, error) {
	parts := strings.Split(key, ":")
	if len(parts) != 5 || parts[0] != "lease" {
		return SeatIdentity{}, fmt.Errorf("malformed lease key: %s", key)
	}

	eventID, err := uuid.Parse(parts[1])
	if err != nil {
		return SeatIdentity{}, fmt.Errorf("malformed lease key event: %s", key)
	}
	sectionID, err := uuid.Parse(parts[2])
	if err != nil {
		return SeatIdentity{}, fmt.Errorf("malformed lease key section: %s", key)
	}

	return SeatIdentity{
		EventID:    eventID,
		SectionID:  sectionID,
		Row:        parts[3],
		SeatNumber: parts[4],
	}, nil
}
