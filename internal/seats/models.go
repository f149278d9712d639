package seats

import (
	"time"

	"github.com/google/uuid"
)

// Seat statuses. AVAILABLE, LOCKED and HELD are derived at read time;
// only SOLD and BLOCKED (plus legacy persisted HELD) ever reach the
// durable store.
const (
	StatusAvailable = "AVAILABLE"
	StatusLocked    = "LOCKED"
	StatusHeld      = "HELD"
	StatusSold      = "SOLD"
	StatusBlocked   = "BLOCKED"
)

// SeatRecord is the sparse durable seat state: a row exists only while a
// seat is SOLD or BLOCKED (or on the legacy persisted-hold path, HELD
// until the sweeper reclaims it). Available seats have no row.
type SeatRecord struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventID    uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_event_seat" json:"event_id"`
	SectionID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_event_seat" json:"section_id"`
	Row        string    `gorm:"not null;uniqueIndex:idx_event_seat" json:"row"`
	SeatNumber string    `gorm:"not null;uniqueIndex:idx_event_seat" json:"seat_number"`
	Status     string    `gorm:"type:varchar(20);not null;check:status IN ('SOLD', 'BLOCKED', 'HELD')" json:"status"`
	// CustomerID is the buyer (SOLD) or holder (legacy HELD).
	CustomerID *string `gorm:"type:varchar(64)" json:"customer_id,omitempty"`
	// Price is the zone price captured at time of sale.
	Price         float64    `gorm:"not null;default:0" json:"price"`
	HoldExpiresAt *time.Time `gorm:"index" json:"hold_expires_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (SeatRecord) TableName() string {
	return "seat_records"
}

// Identity recovers the record's deterministic seat address.
func (r *SeatRecord) Identity() SeatIdentity {
	return SeatIdentity{
		EventID:    r.EventID,
		SectionID:  r.SectionID,
		Row:        r.Row,
		SeatNumber: r.SeatNumber,
	}
}

// recordKey indexes records by identity within one event.
type recordKey struct {
	sectionID  uuid.UUID
	row        string
	seatNumber string
}

func keyOf(id SeatIdentity) recordKey {
	return recordKey{sectionID: id.SectionID, row: id.Row, seatNumber: id.SeatNumber}
}
