package venues

import (
	"context"
	"errors"
	"fmt"

	"boxoffice/internal/shared/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	GetVenue(ctx context.Context, id uuid.UUID) (*Venue, error)
	GetLayout(ctx context.Context, venueID uuid.UUID) (*Layout, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetVenue(ctx context.Context, id uuid.UUID) (*Venue, error) {
	var venue Venue
	err := r.db.WithContext(ctx).First(&venue, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("venue %s not found", id)
		}
		return nil, fmt.Errorf("failed to get venue: %w", err)
	}
	return &venue, nil
}

// GetLayout loads the venue with its sections and seat descriptors in
// layout order.
func (r *repository) GetLayout(ctx context.Context, venueID uuid.UUID) (*Layout, error) {
	venue, err := r.GetVenue(ctx, venueID)
	if err != nil {
		return nil, err
	}

	var sections []VenueSection
	err = r.db.WithContext(ctx).
		Preload("Seats", func(db *gorm.DB) *gorm.DB {
			return db.Order("row ASC, position ASC")
		}).
		Where("venue_id = ?", venueID).
		Order("sort_order ASC, name ASC").
		Find(&sections).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load venue sections: %w", err)
	}

	return &Layout{
		Venue:    *venue,
		Sections: sections,
	}, nil
}
