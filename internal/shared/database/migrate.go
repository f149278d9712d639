package database

import (
	"fmt"
	"log"

	"boxoffice/internal/events"
	"boxoffice/internal/purchase"
	"boxoffice/internal/seats"
	"boxoffice/internal/venues"

	"gorm.io/gorm"
)

// Migrate runs auto-migration for the durable store. The seat-records
// table stays sparse: rows exist only for SOLD/BLOCKED (and legacy HELD)
// seats, never for available ones.
func Migrate(db *gorm.DB) error {
	// uuid_generate_v4 defaults need the extension
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to create uuid extension: %w", err)
	}

	models := []interface{}{
		&venues.Venue{},
		&venues.VenueSection{},
		&venues.SeatDescriptor{},
		&events.Event{},
		&events.ZonePrice{},
		&seats.SeatRecord{},
		&purchase.Ticket{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	log.Println("✅ Database migrations completed")
	return nil
}
