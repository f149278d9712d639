package purchase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"boxoffice/internal/events"
	"boxoffice/internal/holds"
	"boxoffice/internal/lease"
	"boxoffice/internal/notifier"
	"boxoffice/internal/seats"
	"boxoffice/internal/shared/apperr"
	"boxoffice/internal/shared/config"
	"boxoffice/pkg/clock"

	"github.com/google/uuid"
)

var (
	testEventID   = uuid.MustParse("cccccccc-0000-0000-0000-000000000001")
	testSectionID = uuid.MustParse("cccccccc-0000-0000-0000-000000000002")
)

func seatID(row, number string) seats.SeatIdentity {
	return seats.SeatIdentity{EventID: testEventID, SectionID: testSectionID, Row: row, SeatNumber: number}
}

type fakeDirectory struct{}

func (fakeDirectory) GetEvent(context.Context, uuid.UUID) (*events.Event, error) {
	return &events.Event{ID: testEventID, BasePrice: 50}, nil
}

func (fakeDirectory) ZonePrices(context.Context, uuid.UUID) (map[uuid.UUID]float64, error) {
	return map[uuid.UUID]float64{testSectionID: 80}, nil
}

// fakeRepo records committed sales and can be told to fail.
type fakeRepo struct {
	mu    sync.Mutex
	sales []Sale
	fail  error
}

func (f *fakeRepo) ConfirmSale(_ context.Context, sale Sale) ([]Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	f.sales = append(f.sales, sale)

	tickets := make([]Ticket, len(sale.Seats))
	for i, seat := range sale.Seats {
		tickets[i] = Ticket{
			ID:         uuid.New(),
			EventID:    seat.Identity.EventID,
			SectionID:  seat.Identity.SectionID,
			Row:        seat.Identity.Row,
			SeatNumber: seat.Identity.SeatNumber,
			CustomerID: sale.CustomerID,
			Price:      seat.Price,
		}
	}
	return tickets, nil
}

type fakeCapacity struct {
	total, sold, blocked int64
}

func (f *fakeCapacity) CapacityCounts(context.Context, uuid.UUID) (int64, int64, int64, error) {
	return f.total, f.sold, f.blocked, nil
}

func (f *fakeCapacity) InvalidateZone(context.Context, uuid.UUID, uuid.UUID) {}

type recordingNotifier struct {
	mu         sync.Mutex
	statuses   []notifier.SeatUpdate
	bulks      [][]notifier.SeatUpdate
	capacities []notifier.CapacitySummary
	selling    []notifier.CapacitySummary
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

func (r *recordingNotifier) CapacityUpdate(_ context.Context, _ string, summary notifier.CapacitySummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capacities = append(r.capacities, summary)
}

func (r *recordingNotifier) SellingFast(_ context.Context, _ string, summary notifier.CapacitySummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selling = append(r.selling, summary)
}

func (r *recordingNotifier) HoldExpiryWarning(context.Context, string, notifier.ExpiryWarning) {}

type confirmFixture struct {
	service  Service
	leases   *lease.MemoryManager
	issuer   *holds.TokenIssuer
	repo     *fakeRepo
	capacity *fakeCapacity
	recorder *recordingNotifier
	clock    *clock.Fixed
}

func newConfirmFixture() *confirmFixture {
	fixedClock := clock.NewFixed(time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC))
	leases := lease.NewMemoryManager(fixedClock)
	issuer := holds.NewTokenIssuer("test-secret", fixedClock)
	repo := &fakeRepo{}
	capacity := &fakeCapacity{total: 100, sold: 10, blocked: 5}
	recorder := &recordingNotifier{}
	cfg := config.InventoryConfig{SellingFastThreshold: 0.1}

	return &confirmFixture{
		service:  NewService(issuer, fakeDirectory{}, leases, repo, capacity, recorder, cfg),
		leases:   leases,
		issuer:   issuer,
		repo:     repo,
		capacity: capacity,
		recorder: recorder,
		clock:    fixedClock,
	}
}

// heldRequest leases the seats for the customer and mints a matching token.
func (f *confirmFixture) heldRequest(t *testing.T, customerID string, ids ...seats.SeatIdentity) ConfirmRequest {
	t.Helper()
	ctx := context.Background()

	seatIDs := make([]string, len(ids))
	for i, id := range ids {
		seatIDs[i] = id.VirtualID()
		if err := f.leases.Acquire(ctx, testEventID.String(), id.LeaseKey(), customerID, 10*time.Minute); err != nil {
			t.Fatalf("acquire %s: %v", id.VirtualID(), err)
		}
	}

	token, err := f.issuer.Mint(customerID, testEventID.String(), seatIDs, f.clock.Now().Add(10*time.Minute))
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	return ConfirmRequest{
		EventID:    testEventID.String(),
		SeatIDs:    seatIDs,
		CustomerID: customerID,
		HoldToken:  token,
	}
}

func TestService_Confirm(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("commits the sale and tears down the leases", func(t *testing.T) {
		f := newConfirmFixture()
		a1, a2 := seatID("A", "1"), seatID("A", "2")
		req := f.heldRequest(t, "cust-1", a1, a2)

		resp, err := f.service.Confirm(ctx, req)
		if err != nil {
			t.Fatalf("Confirm: %v", err)
		}

		if len(f.repo.sales) != 1 || len(f.repo.sales[0].Seats) != 2 {
			t.Fatalf("expected one sale of 2 seats, got %+v", f.repo.sales)
		}
		if f.repo.sales[0].Seats[0].Price != 80 {
			t.Fatalf("sale price = %v, want zone price 80", f.repo.sales[0].Seats[0].Price)
		}
		if len(resp.Tickets) != 2 || resp.TotalPrice != 160 {
			t.Fatalf("tickets=%d total=%v, want 2/160", len(resp.Tickets), resp.TotalPrice)
		}

		holders, err := f.leases.Holders(ctx, []string{a1.LeaseKey(), a2.LeaseKey()})
		if err != nil {
			t.Fatalf("Holders: %v", err)
		}
		if holders[0] != "" || holders[1] != "" {
			t.Fatalf("leases must be released after sale, got %v", holders)
		}

		if len(f.recorder.statuses) != 2 || f.recorder.statuses[0].Status != seats.StatusSold {
			t.Fatalf("expected 2 SOLD notifications, got %+v", f.recorder.statuses)
		}
		if len(f.recorder.bulks) != 1 || len(f.recorder.capacities) != 1 {
			t.Fatalf("expected bulk and capacity broadcasts, got bulks=%d capacities=%d",
				len(f.recorder.bulks), len(f.recorder.capacities))
		}
		// 85 remaining of 100 is nowhere near the 10% threshold.
		if len(f.recorder.selling) != 0 {
			t.Fatalf("unexpected sellingFast: %+v", f.recorder.selling)
		}
	})

	t.Run("emits sellingFast under the threshold", func(t *testing.T) {
		f := newConfirmFixture()
		f.capacity.total, f.capacity.sold, f.capacity.blocked = 100, 93, 2

		req := f.heldRequest(t, "cust-1", seatID("A", "1"))
		if _, err := f.service.Confirm(ctx, req); err != nil {
			t.Fatalf("Confirm: %v", err)
		}
		if len(f.recorder.selling) != 1 || f.recorder.selling[0].Remaining != 5 {
			t.Fatalf("expected sellingFast with 5 remaining, got %+v", f.recorder.selling)
		}
	})

	t.Run("token for another customer is unauthorized", func(t *testing.T) {
		f := newConfirmFixture()
		req := f.heldRequest(t, "cust-1", seatID("A", "1"))
		req.CustomerID = "cust-2"

		_, err := f.service.Confirm(ctx, req)
		if !apperr.IsKind(err, apperr.KindUnauthorized) {
			t.Fatalf("expected unauthorized, got %v", err)
		}
		if len(f.repo.sales) != 0 {
			t.Fatal("no sale may be committed")
		}
	})

	t.Run("expired token is a bad request", func(t *testing.T) {
		f := newConfirmFixture()
		req := f.heldRequest(t, "cust-1", seatID("A", "1"))
		f.clock.Advance(11 * time.Minute)

		_, err := f.service.Confirm(ctx, req)
		if !apperr.IsKind(err, apperr.KindBadRequest) {
			t.Fatalf("expected bad-request, got %v", err)
		}
	})

	t.Run("seat outside the token is a bad request", func(t *testing.T) {
		f := newConfirmFixture()
		req := f.heldRequest(t, "cust-1", seatID("A", "1"))
		req.SeatIDs = append(req.SeatIDs, seatID("A", "2").VirtualID())

		_, err := f.service.Confirm(ctx, req)
		if !apperr.IsKind(err, apperr.KindBadRequest) {
			t.Fatalf("expected bad-request, got %v", err)
		}
	})

	t.Run("lapsed lease conflicts even with a valid token", func(t *testing.T) {
		f := newConfirmFixture()
		a1 := seatID("A", "1")
		req := f.heldRequest(t, "cust-1", a1)

		// Lease expires but the token (10m) is still valid for a few minutes
		// less; simulate the lease being stolen after expiry instead.
		if _, err := f.leases.Release(ctx, testEventID.String(), a1.LeaseKey(), "cust-1"); err != nil {
			t.Fatalf("release: %v", err)
		}
		if err := f.leases.Acquire(ctx, testEventID.String(), a1.LeaseKey(), "cust-2", time.Minute); err != nil {
			t.Fatalf("re-acquire: %v", err)
		}

		_, err := f.service.Confirm(ctx, req)
		if !apperr.IsKind(err, apperr.KindConflict) {
			t.Fatalf("expected conflict, got %v", err)
		}
		if len(f.repo.sales) != 0 {
			t.Fatal("no sale may be committed")
		}
	})

	t.Run("transaction failure leaves the leases intact", func(t *testing.T) {
		f := newConfirmFixture()
		a1 := seatID("A", "1")
		req := f.heldRequest(t, "cust-1", a1)
		f.repo.fail = errors.New("db down")

		_, err := f.service.Confirm(ctx, req)
		if err == nil {
			t.Fatal("expected error")
		}

		holders, holderErr := f.leases.Holders(ctx, []string{a1.LeaseKey()})
		if holderErr != nil {
			t.Fatalf("Holders: %v", holderErr)
		}
		if holders[0] != "cust-1" {
			t.Fatalf("lease must survive a failed confirmation, got %q", holders[0])
		}
		if len(f.recorder.statuses) != 0 {
			t.Fatalf("failed confirmation must not notify, got %+v", f.recorder.statuses)
		}
	})
}
