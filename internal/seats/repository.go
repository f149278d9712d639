package seats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// Reads
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]SeatRecord, error)
	GetBySeat(ctx context.Context, id SeatIdentity) (*SeatRecord, error)
	CountByStatus(ctx context.Context, eventID uuid.UUID, status string) (int64, error)

	// Admin block path: the only writer of BLOCKED records.
	Block(ctx context.Context, ids []SeatIdentity) error
	Unblock(ctx context.Context, ids []SeatIdentity) error

	// Legacy persisted-hold path.
	ListExpiredHeld(ctx context.Context, eventID *uuid.UUID, before time.Time) ([]SeatRecord, error)
	ListHeldExpiringBefore(ctx context.Context, now, deadline time.Time) ([]SeatRecord, error)
	DeleteHeld(ctx context.Context, recordID uuid.UUID) (bool, error)
	ReleaseHeld(ctx context.Context, id SeatIdentity) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]SeatRecord, error) {
	var records []SeatRecord
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list seat records: %w", err)
	}
	return records, nil
}

func (r *repository) GetBySeat(ctx context.Context, id SeatIdentity) (*SeatRecord, error) {
	var record SeatRecord
	err := r.db.WithContext(ctx).
		Where("event_id = ? AND section_id = ? AND row = ? AND seat_number = ?",
			id.EventID, id.SectionID, id.Row, id.SeatNumber).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get seat record: %w", err)
	}
	return &record, nil
}

func (r *repository) CountByStatus(ctx context.Context, eventID uuid.UUID, status string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&SeatRecord{}).
		Where("event_id = ? AND status = ?", eventID, status).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count seat records: %w", err)
	}
	return count, nil
}

// Block upserts BLOCKED records for the given seats. Blocking an already
// blocked seat is a no-op; sold seats are not overwritten.
func (r *repository) Block(ctx context.Context, ids []SeatIdentity) error {
	records := make([]SeatRecord, 0, len(ids))
	for _, id := range ids {
		records = append(records, SeatRecord{
			EventID:    id.EventID,
			SectionID:  id.SectionID,
			Row:        id.Row,
			SeatNumber: id.SeatNumber,
			Status:     StatusBlocked,
		})
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "event_id"}, {Name: "section_id"}, {Name: "row"}, {Name: "seat_number"},
			},
			DoNothing: true,
		}).
		Create(&records).Error
}

// Unblock deletes BLOCKED records, returning the seats to the sparse
// AVAILABLE state (no row).
func (r *repository) Unblock(ctx context.Context, ids []SeatIdentity) error {
	for _, id := range ids {
		err := r.db.WithContext(ctx).
			Where("event_id = ? AND section_id = ? AND row = ? AND seat_number = ? AND status = ?",
				id.EventID, id.SectionID, id.Row, id.SeatNumber, StatusBlocked).
			Delete(&SeatRecord{}).Error
		if err != nil {
			return fmt.Errorf("failed to unblock seat %s: %w", id.VirtualID(), err)
		}
	}
	return nil
}

func (r *repository) ListExpiredHeld(ctx context.Context, eventID *uuid.UUID, before time.Time) ([]SeatRecord, error) {
	query := r.db.WithContext(ctx).
		Where("status = ? AND hold_expires_at IS NOT NULL AND hold_expires_at < ?", StatusHeld, before)
	if eventID != nil {
		query = query.Where("event_id = ?", *eventID)
	}

	var records []SeatRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list expired holds: %w", err)
	}
	return records, nil
}

// ListHeldExpiringBefore returns live HELD records expiring inside
// [now, deadline). Both bounds come from the caller's clock.
func (r *repository) ListHeldExpiringBefore(ctx context.Context, now, deadline time.Time) ([]SeatRecord, error) {
	var records []SeatRecord
	err := r.db.WithContext(ctx).
		Where("status = ? AND hold_expires_at IS NOT NULL AND hold_expires_at < ? AND hold_expires_at >= ?",
			StatusHeld, deadline, now).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring holds: %w", err)
	}
	return records, nil
}

// DeleteHeld removes one HELD record by primary key, guarded on status so
// a concurrent confirmation that flipped the row to SOLD is never undone.
// Returns whether a row was actually deleted.
func (r *repository) DeleteHeld(ctx context.Context, recordID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", recordID, StatusHeld).
		Delete(&SeatRecord{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete held record: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// ReleaseHeld deletes one seat's HELD record (the durable release path),
// returning whether a row was actually released.
func (r *repository) ReleaseHeld(ctx context.Context, id SeatIdentity) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("event_id = ? AND section_id = ? AND row = ? AND seat_number = ? AND status = ?",
			id.EventID, id.SectionID, id.Row, id.SeatNumber, StatusHeld).
		Delete(&SeatRecord{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to release seat %s: %w", id.VirtualID(), result.Error)
	}
	return result.RowsAffected > 0, nil
}
