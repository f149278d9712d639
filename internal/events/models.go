package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is a timed sale of seats at a venue. CRUD lives elsewhere; the
// seat-inventory core only reads hold timing and pricing from it.
type Event struct {
	ID                 uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	VenueID            uuid.UUID `gorm:"type:uuid;index;not null" json:"venue_id"`
	Name               string    `gorm:"not null" json:"name"`
	StartsAt           time.Time `gorm:"not null" json:"starts_at"`
	Status             string    `gorm:"type:varchar(20);default:'ON_SALE'" json:"status"`
	BasePrice          float64   `gorm:"not null;default:0" json:"base_price"`
	HoldTimeoutMinutes int       `gorm:"not null;default:0" json:"hold_timeout_minutes"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// ZonePrice overrides the event's base price for one section (zone).
type ZonePrice struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_event_zone" json:"event_id"`
	SectionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_event_zone" json:"section_id"`
	Price     float64   `gorm:"not null" json:"price"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Event) TableName() string {
	return "events"
}

func (ZonePrice) TableName() string {
	return "event_zone_prices"
}

// HoldDuration returns the event's configured checkout window, falling
// back to defaultMinutes when the event carries none.
func (e *Event) HoldDuration(defaultMinutes int) time.Duration {
	minutes := e.HoldTimeoutMinutes
	if minutes <= 0 {
		minutes = defaultMinutes
	}
	return time.Duration(minutes) * time.Minute
}
