package seats

import (
	"context"
	"sync"
	"time"

	"boxoffice/internal/events"
	"boxoffice/internal/notifier"
	"boxoffice/internal/venues"

	"github.com/google/uuid"
)

type fakeLayouts struct {
	layout *venues.Layout
}

func (f *fakeLayouts) GetLayout(_ context.Context, _ uuid.UUID) (*venues.Layout, error) {
	return f.layout, nil
}

type fakeDirectory struct {
	event  *events.Event
	prices map[uuid.UUID]float64
}

func (f *fakeDirectory) GetEvent(_ context.Context, _ uuid.UUID) (*events.Event, error) {
	return f.event, nil
}

func (f *fakeDirectory) ZonePrices(_ context.Context, _ uuid.UUID) (map[uuid.UUID]float64, error) {
	return f.prices, nil
}

// fakeRecords is an in-memory Repository good enough for resolver and
// service tests: single event, no persistence concerns.
type fakeRecords struct {
	mu   sync.Mutex
	rows map[SeatIdentity]*SeatRecord
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{rows: make(map[SeatIdentity]*SeatRecord)}
}

func (f *fakeRecords) put(id SeatIdentity, status string, price float64, expiresAt *time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[id] = &SeatRecord{
		ID:            uuid.New(),
		EventID:       id.EventID,
		SectionID:     id.SectionID,
		Row:           id.Row,
		SeatNumber:    id.SeatNumber,
		Status:        status,
		Price:         price,
		HoldExpiresAt: expiresAt,
	}
}

func (f *fakeRecords) ListByEvent(_ context.Context, eventID uuid.UUID) ([]SeatRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []SeatRecord
	for _, row := range f.rows {
		if row.EventID == eventID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeRecords) GetBySeat(_ context.Context, id SeatIdentity) (*SeatRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (f *fakeRecords) CountByStatus(_ context.Context, eventID uuid.UUID, status string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, row := range f.rows {
		if row.EventID == eventID && row.Status == status {
			count++
		}
	}
	return count, nil
}

func (f *fakeRecords) Block(_ context.Context, ids []SeatIdentity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		if _, exists := f.rows[id]; exists {
			continue
		}
		f.rows[id] = &SeatRecord{
			ID:         uuid.New(),
			EventID:    id.EventID,
			SectionID:  id.SectionID,
			Row:        id.Row,
			SeatNumber: id.SeatNumber,
			Status:     StatusBlocked,
		}
	}
	return nil
}

func (f *fakeRecords) Unblock(_ context.Context, ids []SeatIdentity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		if row, ok := f.rows[id]; ok && row.Status == StatusBlocked {
			delete(f.rows, id)
		}
	}
	return nil
}

func (f *fakeRecords) ListExpiredHeld(_ context.Context, eventID *uuid.UUID, before time.Time) ([]SeatRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []SeatRecord
	for _, row := range f.rows {
		if row.Status != StatusHeld || row.HoldExpiresAt == nil || !row.HoldExpiresAt.Before(before) {
			continue
		}
		if eventID != nil && row.EventID != *eventID {
			continue
		}
		out = append(out, *row)
	}
	return out, nil
}

func (f *fakeRecords) ListHeldExpiringBefore(_ context.Context, now, deadline time.Time) ([]SeatRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []SeatRecord
	for _, row := range f.rows {
		if row.Status == StatusHeld && row.HoldExpiresAt != nil &&
			!row.HoldExpiresAt.Before(now) && row.HoldExpiresAt.Before(deadline) {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeRecords) DeleteHeld(_ context.Context, recordID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, row := range f.rows {
		if row.ID == recordID && row.Status == StatusHeld {
			delete(f.rows, id)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRecords) ReleaseHeld(_ context.Context, id SeatIdentity) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row, ok := f.rows[id]; ok && row.Status == StatusHeld {
		delete(f.rows, id)
		return true, nil
	}
	return false, nil
}

// recordingNotifier captures every notification for assertions.
type recordingNotifier struct {
	mu       sync.Mutex
	statuses []notifier.SeatUpdate
	bulks    [][]notifier.SeatUpdate
}

func (r *recordingNotifier) SeatStatusChanged(_ context.Context, _ string, update notifier.SeatUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, update)
}

func (r *recordingNotifier) BulkSeatUpdate(_ context.Context, _ string, updates []notifier.SeatUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bulks = append(r.bulks, updates)
}

func (r *recordingNotifier) CapacityUpdate(context.Context, string, notifier.CapacitySummary)  {}
func (r *recordingNotifier) SellingFast(context.Context, string, notifier.CapacitySummary)    {}
func (r *recordingNotifier) HoldExpiryWarning(context.Context, string, notifier.ExpiryWarning) {}
