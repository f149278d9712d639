package venues

import (
	"time"

	"github.com/google/uuid"
)

// Venue is the physical location an event sells seats in. Layout editing
// belongs to venue management; this service only reads it.
type Venue struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Sections []VenueSection `json:"sections,omitempty" gorm:"foreignKey:VenueID;constraint:OnDelete:CASCADE;"`
}

// VenueSection is one ordered block of seats; sections double as pricing
// zones for events held at the venue.
type VenueSection struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	VenueID   uuid.UUID `gorm:"type:uuid;index;not null" json:"venue_id"`
	Name      string    `gorm:"not null" json:"name"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Seats []SeatDescriptor `json:"seats,omitempty" gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE;"`
}

// SeatDescriptor describes one physical seat in the layout. It carries no
// sale state; availability is derived at read time.
type SeatDescriptor struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SectionID    uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_section_row_seat" json:"section_id"`
	Row          string    `gorm:"not null;uniqueIndex:idx_section_row_seat" json:"row"`
	SeatNumber   string    `gorm:"not null;uniqueIndex:idx_section_row_seat" json:"seat_number"`
	Position     int       `gorm:"not null" json:"position"`
	IsAccessible bool      `gorm:"not null;default:false" json:"is_accessible"`
	IsAisle      bool      `gorm:"not null;default:false" json:"is_aisle"`
}

func (Venue) TableName() string {
	return "venues"
}

func (VenueSection) TableName() string {
	return "venue_sections"
}

func (SeatDescriptor) TableName() string {
	return "seat_descriptors"
}

// Layout is a venue with its ordered sections and their seats, as the
// resolver consumes it.
type Layout struct {
	Venue    Venue
	Sections []VenueSection
}

// TotalSeats counts every seat in the layout.
func (l *Layout) TotalSeats() int {
	total := 0
	for _, section := range l.Sections {
		total += len(section.Seats)
	}
	return total
}

// Section returns the section with the given id, or nil.
func (l *Layout) Section(sectionID uuid.UUID) *VenueSection {
	for i := range l.Sections {
		if l.Sections[i].ID == sectionID {
			return &l.Sections[i]
		}
	}
	return nil
}
