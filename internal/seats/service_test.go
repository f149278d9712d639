package seats

import (
	"context"
	"sort"
	"testing"
	"time"

	"boxoffice/internal/shared/apperr"
	"boxoffice/internal/shared/config"
)

func newTestService(f *testFixture) (Service, *recordingNotifier) {
	recorder := &recordingNotifier{}
	cfg := config.InventoryConfig{
		LeaseTTL:           2 * time.Minute,
		DefaultHoldMinutes: 10,
	}
	return NewService(f.resolver, f.records, f.leases, recorder, cfg, f.clock), recorder
}

func TestService_LockSeat(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("locks an available seat and reports expiry", func(t *testing.T) {
		f := newTestFixture()
		svc, recorder := newTestService(f)

		id := seatID("A", "1")
		result, err := svc.LockSeat(ctx, testEventID, LockSeatRequest{SeatID: id.VirtualID(), UserID: "cust-1"})
		if err != nil {
			t.Fatalf("LockSeat: %v", err)
		}
		if !result.Success {
			t.Fatal("expected success")
		}
		if want := f.clock.Now().Add(2 * time.Minute); !result.ExpiresAt.Equal(want) {
			t.Fatalf("ExpiresAt = %v, want %v", result.ExpiresAt, want)
		}

		seat, err := f.resolver.Seat(ctx, testEventID, id.VirtualID())
		if err != nil {
			t.Fatalf("Seat: %v", err)
		}
		if seat.Status != StatusLocked {
			t.Fatalf("seat status = %s, want LOCKED", seat.Status)
		}

		if len(recorder.statuses) != 1 || recorder.statuses[0].Status != StatusLocked {
			t.Fatalf("expected one LOCKED notification, got %+v", recorder.statuses)
		}
	})

	t.Run("conflicts when another customer holds the seat", func(t *testing.T) {
		f := newTestFixture()
		svc, recorder := newTestService(f)

		id := seatID("A", "1")
		if _, err := svc.LockSeat(ctx, testEventID, LockSeatRequest{SeatID: id.VirtualID(), UserID: "cust-1"}); err != nil {
			t.Fatalf("first lock: %v", err)
		}

		_, err := svc.LockSeat(ctx, testEventID, LockSeatRequest{SeatID: id.VirtualID(), UserID: "cust-2"})
		if !apperr.IsKind(err, apperr.KindConflict) {
			t.Fatalf("expected conflict, got %v", err)
		}
		if len(recorder.statuses) != 1 {
			t.Fatalf("conflicting lock must not notify, got %+v", recorder.statuses)
		}
	})

	t.Run("re-lock by the same customer refreshes and succeeds", func(t *testing.T) {
		f := newTestFixture()
		svc, _ := newTestService(f)

		id := seatID("A", "1")
		if _, err := svc.LockSeat(ctx, testEventID, LockSeatRequest{SeatID: id.VirtualID(), UserID: "cust-1"}); err != nil {
			t.Fatalf("first lock: %v", err)
		}
		f.clock.Advance(time.Minute)

		result, err := svc.LockSeat(ctx, testEventID, LockSeatRequest{SeatID: id.VirtualID(), UserID: "cust-1"})
		if err != nil {
			t.Fatalf("re-lock: %v", err)
		}
		if want := f.clock.Now().Add(2 * time.Minute); !result.ExpiresAt.Equal(want) {
			t.Fatalf("refresh did not extend expiry: %v, want %v", result.ExpiresAt, want)
		}
	})

	t.Run("lock succeeds after the previous lease expires", func(t *testing.T) {
		f := newTestFixture()
		svc, _ := newTestService(f)

		id := seatID("A", "1")
		if _, err := svc.LockSeat(ctx, testEventID, LockSeatRequest{SeatID: id.VirtualID(), UserID: "cust-1"}); err != nil {
			t.Fatalf("first lock: %v", err)
		}
		f.clock.Advance(3 * time.Minute)

		if _, err := svc.LockSeat(ctx, testEventID, LockSeatRequest{SeatID: id.VirtualID(), UserID: "cust-2"}); err != nil {
			t.Fatalf("lock after expiry: %v", err)
		}
	})

	t.Run("refuses sold and blocked seats", func(t *testing.T) {
		f := newTestFixture()
		svc, _ := newTestService(f)

		f.records.put(seatID("A", "1"), StatusSold, 120, nil)
		f.records.put(seatID("A", "2"), StatusBlocked, 0, nil)

		for _, seat := range []string{seatID("A", "1").VirtualID(), seatID("A", "2").VirtualID()} {
			_, err := svc.LockSeat(ctx, testEventID, LockSeatRequest{SeatID: seat, UserID: "cust-1"})
			if !apperr.IsKind(err, apperr.KindConflict) {
				t.Fatalf("expected conflict for %s, got %v", seat, err)
			}
		}
	})

	t.Run("unknown seat is not found", func(t *testing.T) {
		f := newTestFixture()
		svc, _ := newTestService(f)

		ghost := SeatIdentity{EventID: testEventID, SectionID: testSectionID, Row: "Z", SeatNumber: "1"}
		_, err := svc.LockSeat(ctx, testEventID, LockSeatRequest{SeatID: ghost.VirtualID(), UserID: "cust-1"})
		if !apperr.IsKind(err, apperr.KindNotFound) {
			t.Fatalf("expected not-found, got %v", err)
		}
	})
}

func TestService_UnlockSeat(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("holder releases early", func(t *testing.T) {
		f := newTestFixture()
		svc, recorder := newTestService(f)

		id := seatID("A", "1")
		if _, err := svc.LockSeat(ctx, testEventID, LockSeatRequest{SeatID: id.VirtualID(), UserID: "cust-1"}); err != nil {
			t.Fatalf("lock: %v", err)
		}

		result, err := svc.UnlockSeat(ctx, testEventID, UnlockSeatRequest{SeatID: id.VirtualID(), UserID: "cust-1"})
		if err != nil {
			t.Fatalf("UnlockSeat: %v", err)
		}
		if !result.Success {
			t.Fatal("expected release to succeed")
		}

		seat, err := f.resolver.Seat(ctx, testEventID, id.VirtualID())
		if err != nil {
			t.Fatalf("Seat: %v", err)
		}
		if seat.Status != StatusAvailable {
			t.Fatalf("seat status = %s, want AVAILABLE", seat.Status)
		}

		last := recorder.statuses[len(recorder.statuses)-1]
		if last.Status != StatusAvailable {
			t.Fatalf("expected AVAILABLE notification, got %+v", last)
		}
	})

	t.Run("non-holder release is a quiet no-op", func(t *testing.T) {
		f := newTestFixture()
		svc, recorder := newTestService(f)

		id := seatID("A", "1")
		if _, err := svc.LockSeat(ctx, testEventID, LockSeatRequest{SeatID: id.VirtualID(), UserID: "cust-1"}); err != nil {
			t.Fatalf("lock: %v", err)
		}
		notifications := len(recorder.statuses)

		result, err := svc.UnlockSeat(ctx, testEventID, UnlockSeatRequest{SeatID: id.VirtualID(), UserID: "cust-2"})
		if err != nil {
			t.Fatalf("UnlockSeat: %v", err)
		}
		if result.Success {
			t.Fatal("expected success=false for non-holder")
		}
		if len(recorder.statuses) != notifications {
			t.Fatal("no-op release must not notify")
		}

		seat, _ := f.resolver.Seat(ctx, testEventID, id.VirtualID())
		if seat.Status != StatusLocked {
			t.Fatalf("seat must stay LOCKED, got %s", seat.Status)
		}
	})
}

func TestService_BlockUnblock(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("block then unblock round-trips through the sparse store", func(t *testing.T) {
		f := newTestFixture()
		svc, recorder := newTestService(f)

		req := SeatListRequest{
			EventID: testEventID.String(),
			SeatIDs: []string{seatID("A", "1").VirtualID(), seatID("A", "2").VirtualID()},
		}
		if err := svc.BlockSeats(ctx, req); err != nil {
			t.Fatalf("BlockSeats: %v", err)
		}

		for _, id := range req.SeatIDs {
			seat, err := f.resolver.Seat(ctx, testEventID, id)
			if err != nil {
				t.Fatalf("Seat: %v", err)
			}
			if seat.Status != StatusBlocked {
				t.Fatalf("seat %s = %s, want BLOCKED", id, seat.Status)
			}
		}
		if len(recorder.bulks) != 1 || len(recorder.bulks[0]) != 2 {
			t.Fatalf("expected one bulk update with 2 seats, got %+v", recorder.bulks)
		}

		if err := svc.UnblockSeats(ctx, req); err != nil {
			t.Fatalf("UnblockSeats: %v", err)
		}
		seat, _ := f.resolver.Seat(ctx, testEventID, req.SeatIDs[0])
		if seat.Status != StatusAvailable {
			t.Fatalf("unblocked seat = %s, want AVAILABLE", seat.Status)
		}
	})

	t.Run("refuses to block a sold seat", func(t *testing.T) {
		f := newTestFixture()
		svc, _ := newTestService(f)

		f.records.put(seatID("A", "1"), StatusSold, 120, nil)
		err := svc.BlockSeats(ctx, SeatListRequest{
			EventID: testEventID.String(),
			SeatIDs: []string{seatID("A", "1").VirtualID()},
		})
		if !apperr.IsKind(err, apperr.KindConflict) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})
}

func TestService_ReleaseHeldSeats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newTestFixture()
	svc, recorder := newTestService(f)

	expires := f.clock.Now().Add(10 * time.Minute)
	f.records.put(seatID("A", "1"), StatusHeld, 80, &expires)

	resp, err := svc.ReleaseHeldSeats(ctx, SeatListRequest{
		EventID: testEventID.String(),
		SeatIDs: []string{seatID("A", "1").VirtualID(), seatID("A", "2").VirtualID()},
	})
	if err != nil {
		t.Fatalf("ReleaseHeldSeats: %v", err)
	}

	// Only the held seat is released; the already-available one is skipped.
	if len(resp.Released) != 1 || resp.Released[0] != seatID("A", "1").VirtualID() {
		t.Fatalf("Released = %v, want just A1", resp.Released)
	}
	if len(recorder.statuses) != 1 || recorder.statuses[0].Status != StatusAvailable {
		t.Fatalf("expected one AVAILABLE notification, got %+v", recorder.statuses)
	}

	seat, _ := f.resolver.Seat(ctx, testEventID, seatID("A", "1").VirtualID())
	if seat.Status != StatusAvailable {
		t.Fatalf("released seat = %s, want AVAILABLE", seat.Status)
	}
}

func TestService_GetCustomerHolds(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newTestFixture()
	svc, _ := newTestService(f)

	for _, seat := range []string{seatID("A", "1").VirtualID(), seatID("A", "3").VirtualID()} {
		if _, err := svc.LockSeat(ctx, testEventID, LockSeatRequest{SeatID: seat, UserID: "cust-1"}); err != nil {
			t.Fatalf("lock %s: %v", seat, err)
		}
	}
	if _, err := svc.LockSeat(ctx, testEventID, LockSeatRequest{SeatID: seatID("A", "2").VirtualID(), UserID: "cust-2"}); err != nil {
		t.Fatalf("lock for other customer: %v", err)
	}

	holds, err := svc.GetCustomerHolds(ctx, testEventID, "cust-1")
	if err != nil {
		t.Fatalf("GetCustomerHolds: %v", err)
	}

	sort.Strings(holds.SeatIDs)
	want := []string{seatID("A", "1").VirtualID(), seatID("A", "3").VirtualID()}
	sort.Strings(want)
	if len(holds.SeatIDs) != 2 || holds.SeatIDs[0] != want[0] || holds.SeatIDs[1] != want[1] {
		t.Fatalf("SeatIDs = %v, want %v", holds.SeatIDs, want)
	}

	t.Run("expired leases drop out of the view", func(t *testing.T) {
		f.clock.Advance(5 * time.Minute)
		holds, err := svc.GetCustomerHolds(ctx, testEventID, "cust-1")
		if err != nil {
			t.Fatalf("GetCustomerHolds: %v", err)
		}
		if len(holds.SeatIDs) != 0 {
			t.Fatalf("expected no live holds after expiry, got %v", holds.SeatIDs)
		}
	})
}
