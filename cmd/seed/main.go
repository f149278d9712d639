// Command seed populates a development database with one venue, its seat
// layout and a couple of on-sale events, so the API has something to sell.
package main

import (
	"fmt"
	"log"
	"time"

	"boxoffice/internal/events"
	"boxoffice/internal/purchase"
	"boxoffice/internal/seats"
	"boxoffice/internal/shared/config"
	"boxoffice/internal/shared/database"
	"boxoffice/internal/venues"

	"gorm.io/gorm"
)

type Seeder struct {
	db *gorm.DB
}

func main() {
	fmt.Println("🌱 Starting boxoffice database seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db.GetPostgreSQL()}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in dependency order.
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		purchase.Ticket{}.TableName(),
		seats.SeatRecord{}.TableName(),
		events.ZonePrice{}.TableName(),
		events.Event{}.TableName(),
		venues.SeatDescriptor{}.TableName(),
		venues.VenueSection{}.TableName(),
		venues.Venue{}.TableName(),
	}
	for _, table := range tables {
		if err := s.db.Exec("TRUNCATE TABLE " + table + " CASCADE").Error; err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}

func (s *Seeder) SeedAll() error {
	venue, err := s.seedVenue()
	if err != nil {
		return err
	}
	return s.seedEvents(venue)
}

// seedVenue creates one venue with three sections of different sizes.
func (s *Seeder) seedVenue() (*venues.Venue, error) {
	venue := &venues.Venue{
		Name:    "Grand Theatre",
		Address: "1 Playhouse Square",
		City:    "Amsterdam",
	}
	if err := s.db.Create(venue).Error; err != nil {
		return nil, fmt.Errorf("failed to create venue: %w", err)
	}

	sections := []struct {
		name string
		rows []string
		cols int
	}{
		{"Stalls", []string{"A", "B", "C", "D", "E", "F"}, 20},
		{"Dress Circle", []string{"A", "B", "C", "D"}, 16},
		{"Balcony", []string{"A", "B", "C"}, 12},
	}

	for order, layout := range sections {
		section := &venues.VenueSection{
			VenueID:   venue.ID,
			Name:      layout.name,
			SortOrder: order,
		}
		if err := s.db.Create(section).Error; err != nil {
			return nil, fmt.Errorf("failed to create section %s: %w", layout.name, err)
		}

		descriptors := make([]venues.SeatDescriptor, 0, len(layout.rows)*layout.cols)
		for _, row := range layout.rows {
			for col := 1; col <= layout.cols; col++ {
				descriptors = append(descriptors, venues.SeatDescriptor{
					SectionID:  section.ID,
					Row:        row,
					SeatNumber: fmt.Sprintf("%d", col),
					Position:   col,
					IsAisle:    col == 1 || col == layout.cols,
				})
			}
		}
		if err := s.db.CreateInBatches(descriptors, 100).Error; err != nil {
			return nil, fmt.Errorf("failed to create seats for %s: %w", layout.name, err)
		}
		fmt.Printf("  ✅ %s: %d seats\n", layout.name, len(descriptors))
	}

	return venue, nil
}

// seedEvents creates two on-sale events with zone pricing on the first.
func (s *Seeder) seedEvents(venue *venues.Venue) error {
	var sections []venues.VenueSection
	if err := s.db.Where("venue_id = ?", venue.ID).Order("sort_order").Find(&sections).Error; err != nil {
		return fmt.Errorf("failed to load sections: %w", err)
	}

	shows := []events.Event{
		{
			VenueID:            venue.ID,
			Name:               "Opening Night",
			StartsAt:           time.Now().AddDate(0, 0, 14),
			Status:             "ON_SALE",
			BasePrice:          45,
			HoldTimeoutMinutes: 10,
		},
		{
			VenueID:            venue.ID,
			Name:               "Saturday Matinee",
			StartsAt:           time.Now().AddDate(0, 0, 21),
			Status:             "ON_SALE",
			BasePrice:          30,
		},
	}

	for i := range shows {
		if err := s.db.Create(&shows[i]).Error; err != nil {
			return fmt.Errorf("failed to create event %s: %w", shows[i].Name, err)
		}
	}

	// Zone pricing for the premiere: stalls cost the most.
	premierePrices := []float64{95, 70, 50}
	for i, section := range sections {
		price := events.ZonePrice{
			EventID:   shows[0].ID,
			SectionID: section.ID,
			Price:     premierePrices[i%len(premierePrices)],
			IsActive:  true,
		}
		if err := s.db.Create(&price).Error; err != nil {
			return fmt.Errorf("failed to create zone price: %w", err)
		}
	}

	fmt.Printf("  ✅ %d events (venue %s)\n", len(shows), venue.ID)
	return nil
}
