package sweeper

import (
	"context"
	"sync"
	"testing"
	"time"

	"boxoffice/internal/notifier"
	"boxoffice/internal/seats"
	"boxoffice/pkg/clock"

	"github.com/google/uuid"
)

var (
	testEventID   = uuid.MustParse("dddddddd-0000-0000-0000-000000000001")
	testSectionID = uuid.MustParse("dddddddd-0000-0000-0000-000000000002")
)

type fakeStore struct {
	mu          sync.Mutex
	rows        map[uuid.UUID]*seats.SeatRecord
	warnWindows [][2]time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[uuid.UUID]*seats.SeatRecord)}
}

func (f *fakeStore) addHeld(row, number string, expiresAt time.Time) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.rows[id] = &seats.SeatRecord{
		ID:            id,
		EventID:       testEventID,
		SectionID:     testSectionID,
		Row:           row,
		SeatNumber:    number,
		Status:        seats.StatusHeld,
		HoldExpiresAt: &expiresAt,
	}
	return id
}

func (f *fakeStore) promoteToSold(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[id].Status = seats.StatusSold
	f.rows[id].HoldExpiresAt = nil
}

func (f *fakeStore) ListExpiredHeld(_ context.Context, _ *uuid.UUID, before time.Time) ([]seats.SeatRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []seats.SeatRecord
	for _, row := range f.rows {
		if row.Status == seats.StatusHeld && row.HoldExpiresAt != nil && row.HoldExpiresAt.Before(before) {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeStore) ListHeldExpiringBefore(_ context.Context, now, deadline time.Time) ([]seats.SeatRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.warnWindows = append(f.warnWindows, [2]time.Time{now, deadline})
	var out []seats.SeatRecord
	for _, row := range f.rows {
		if row.Status == seats.StatusHeld && row.HoldExpiresAt != nil &&
			!row.HoldExpiresAt.Before(now) && row.HoldExpiresAt.Before(deadline) {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteHeld(_ context.Context, recordID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[recordID]
	if !ok || row.Status != seats.StatusHeld {
		return false, nil
	}
	delete(f.rows, recordID)
	return true, nil
}

type nopInvalidator struct{}

func (nopInvalidator) InvalidateZone(context.Context, uuid.UUID, uuid.UUID) {}

type recordingNotifier struct {
	mu       sync.Mutex
	statuses []notifier.SeatUpdate
	warnings []notifier.ExpiryWarning
}

func (r *recordingNotifier) SeatStatusChanged(_ context.Context, _ string, update notifier.SeatUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, update)
}

func (r *recordingNotifier) HoldExpiryWarning(_ context.Context, _ string, warning notifier.ExpiryWarning) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, warning)
}

func (r *recordingNotifier) BulkSeatUpdate(context.Context, string, []notifier.SeatUpdate)     {}
func (r *recordingNotifier) CapacityUpdate(context.Context, string, notifier.CapacitySummary)  {}
func (r *recordingNotifier) SellingFast(context.Context, string, notifier.CapacitySummary)     {}

func newTestSweeper() (*Sweeper, *fakeStore, *recordingNotifier, *clock.Fixed) {
	fixedClock := clock.NewFixed(time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC))
	store := newFakeStore()
	recorder := &recordingNotifier{}
	s := New(store, nopInvalidator{}, recorder, fixedClock, Config{
		Interval:      time.Minute,
		WarningWindow: 2 * time.Minute,
	})
	return s, store, recorder, fixedClock
}

func TestSweeper_Sweep(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("reclaims an expired hold exactly once", func(t *testing.T) {
		s, store, recorder, clk := newTestSweeper()
		store.addHeld("A", "1", clk.Now().Add(5*time.Minute))

		// Not yet expired: nothing happens.
		s.sweep(ctx)
		if len(recorder.statuses) != 0 {
			t.Fatalf("premature reclaim: %+v", recorder.statuses)
		}

		clk.Advance(6 * time.Minute)
		s.sweep(ctx)
		if len(recorder.statuses) != 1 || recorder.statuses[0].Status != seats.StatusAvailable {
			t.Fatalf("expected one AVAILABLE transition, got %+v", recorder.statuses)
		}

		// A second sweep finds nothing: the flip happened exactly once.
		s.sweep(ctx)
		if len(recorder.statuses) != 1 {
			t.Fatalf("hold reclaimed twice: %+v", recorder.statuses)
		}
	})

	t.Run("skips a record promoted to sold mid-sweep", func(t *testing.T) {
		s, store, recorder, clk := newTestSweeper()
		id := store.addHeld("A", "1", clk.Now().Add(time.Minute))
		clk.Advance(2 * time.Minute)

		// Simulates a confirmation racing the sweep.
		store.promoteToSold(id)

		s.sweep(ctx)
		if len(recorder.statuses) != 0 {
			t.Fatalf("sold seat must not be reclaimed, got %+v", recorder.statuses)
		}
	})

	t.Run("warns about holds inside the warning window", func(t *testing.T) {
		s, store, recorder, clk := newTestSweeper()
		store.addHeld("A", "1", clk.Now().Add(90*time.Second))
		store.addHeld("A", "2", clk.Now().Add(30*time.Minute))

		s.sweep(ctx)
		if len(recorder.warnings) != 1 {
			t.Fatalf("expected one warning, got %+v", recorder.warnings)
		}
		w := recorder.warnings[0]
		if len(w.SeatIDs) != 1 {
			t.Fatalf("expected warning for 1 seat, got %v", w.SeatIDs)
		}
		if want := clk.Now().Add(90 * time.Second); !w.ExpiresAt.Equal(want) {
			t.Fatalf("ExpiresAt = %v, want %v", w.ExpiresAt, want)
		}
		if len(recorder.statuses) != 0 {
			t.Fatalf("warning pass must not reclaim, got %+v", recorder.statuses)
		}
	})

	t.Run("warning window bounds come from the sweeper clock", func(t *testing.T) {
		s, store, _, clk := newTestSweeper()
		store.addHeld("A", "1", clk.Now().Add(90*time.Second))
		clk.Advance(30 * time.Minute)

		s.sweep(ctx)

		store.mu.Lock()
		windows := append([][2]time.Time(nil), store.warnWindows...)
		store.mu.Unlock()
		if len(windows) != 1 {
			t.Fatalf("expected one expiring-holds query, got %d", len(windows))
		}
		if !windows[0][0].Equal(clk.Now()) {
			t.Fatalf("window lower bound = %v, want the sweep time %v", windows[0][0], clk.Now())
		}
		if want := clk.Now().Add(2 * time.Minute); !windows[0][1].Equal(want) {
			t.Fatalf("window deadline = %v, want %v", windows[0][1], want)
		}
	})
}
