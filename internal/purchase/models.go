package purchase

import (
	"time"

	"github.com/google/uuid"
)

// Ticket is the durable proof of one sold seat, created in the same
// transaction that flips the seat record to SOLD. Price is the zone price
// captured at time of sale.
type Ticket struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventID    uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_ticket_seat" json:"event_id"`
	SectionID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ticket_seat" json:"section_id"`
	Row        string    `gorm:"not null;uniqueIndex:idx_ticket_seat" json:"row"`
	SeatNumber string    `gorm:"not null;uniqueIndex:idx_ticket_seat" json:"seat_number"`
	CustomerID string    `gorm:"type:varchar(64);index;not null" json:"customer_id"`
	Price      float64   `gorm:"not null" json:"price"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Ticket) TableName() string {
	return "tickets"
}
