package events

import (
	"context"
	"errors"
	"fmt"

	"boxoffice/internal/shared/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*Event, error)
	// ZonePrices returns the active per-section price overrides for an
	// event. Sections without an override sell at the event base price.
	ZonePrices(ctx context.Context, eventID uuid.UUID) (map[uuid.UUID]float64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetEvent(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("event %s not found", id)
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &event, nil
}

func (r *repository) ZonePrices(ctx context.Context, eventID uuid.UUID) (map[uuid.UUID]float64, error) {
	var rows []ZonePrice
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND is_active = true", eventID).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load zone prices: %w", err)
	}

	prices := make(map[uuid.UUID]float64, len(rows))
	for _, row := range rows {
		prices[row.SectionID] = row.Price
	}
	return prices, nil
}

// PriceFor resolves the sale price of one section: the zone override when
// present, otherwise the event base price.
func PriceFor(event *Event, zonePrices map[uuid.UUID]float64, sectionID uuid.UUID) float64 {
	if price, ok := zonePrices[sectionID]; ok {
		return price
	}
	return event.BasePrice
}
