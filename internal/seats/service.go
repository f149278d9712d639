package seats

import (
	"context"
	"errors"
	"fmt"

	"boxoffice/internal/lease"
	"boxoffice/internal/notifier"
	"boxoffice/internal/shared/apperr"
	"boxoffice/internal/shared/config"
	"boxoffice/pkg/clock"
	"boxoffice/pkg/logger"

	"github.com/google/uuid"
)

type Service interface {
	// Seat map reads
	GetEventSeatMap(ctx context.Context, eventID uuid.UUID) (*EventSeatMapView, error)
	GetZoneSeatMap(ctx context.Context, eventID, zoneID uuid.UUID) (*ZoneSeatMapView, error)
	GetSeat(ctx context.Context, eventID uuid.UUID, seatID string) (*SeatView, error)

	// Browse-time locking
	LockSeat(ctx context.Context, eventID uuid.UUID, req LockSeatRequest) (*LockSeatResponse, error)
	UnlockSeat(ctx context.Context, eventID uuid.UUID, req UnlockSeatRequest) (*UnlockSeatResponse, error)

	// Admin block path
	BlockSeats(ctx context.Context, req SeatListRequest) error
	UnblockSeats(ctx context.Context, req SeatListRequest) error

	// Legacy durable-hold release
	ReleaseHeldSeats(ctx context.Context, req SeatListRequest) (*ReleaseResponse, error)

	// Customer's live locked seats
	GetCustomerHolds(ctx context.Context, eventID uuid.UUID, customerID string) (*CustomerHoldsResponse, error)
}

type service struct {
	resolver *Resolver
	records  Repository
	leases   lease.Manager
	notify   notifier.Notifier
	cfg      config.InventoryConfig
	clock    clock.Clock
	logger   *logger.Logger
}

func NewService(resolver *Resolver, records Repository, leases lease.Manager, notify notifier.Notifier, cfg config.InventoryConfig, clk clock.Clock) Service {
	return &service{
		resolver: resolver,
		records:  records,
		leases:   leases,
		notify:   notify,
		cfg:      cfg,
		clock:    clk,
		logger:   logger.GetDefault(),
	}
}

func (s *service) GetEventSeatMap(ctx context.Context, eventID uuid.UUID) (*EventSeatMapView, error) {
	return s.resolver.EventSeatMap(ctx, eventID)
}

func (s *service) GetZoneSeatMap(ctx context.Context, eventID, zoneID uuid.UUID) (*ZoneSeatMapView, error) {
	return s.resolver.ZoneSeatMap(ctx, eventID, zoneID)
}

func (s *service) GetSeat(ctx context.Context, eventID uuid.UUID, seatID string) (*SeatView, error) {
	return s.resolver.Seat(ctx, eventID, seatID)
}

// LockSeat places a browse-time lease on one seat. The lease store is the
// arbiter; the durable-state check beforehand only produces a cleaner error
// for seats that could never be locked.
func (s *service) LockSeat(ctx context.Context, eventID uuid.UUID, req LockSeatRequest) (*LockSeatResponse, error) {
	identity, err := ParseVirtualID(eventID, req.SeatID)
	if err != nil {
		return nil, err
	}

	view, err := s.resolver.Seat(ctx, eventID, req.SeatID)
	if err != nil {
		return nil, err
	}
	switch view.Status {
	case StatusSold:
		return nil, apperr.Conflict("seat %s is already sold", req.SeatID)
	case StatusBlocked:
		return nil, apperr.Conflict("seat %s is blocked", req.SeatID)
	case StatusHeld:
		return nil, apperr.Conflict("seat %s is held", req.SeatID)
	}

	seatKey := identity.LeaseKey()
	if err := s.leases.Acquire(ctx, eventID.String(), seatKey, req.UserID, s.cfg.LeaseTTL); err != nil {
		if errors.Is(err, lease.ErrConflict) {
			s.logger.LogLeaseConflict(ctx, seatKey, req.UserID)
			return nil, apperr.Conflict("seat %s is locked by another customer", req.SeatID)
		}
		return nil, fmt.Errorf("failed to acquire seat lease: %w", err)
	}

	s.logger.LogLeaseAcquired(ctx, seatKey, req.UserID, s.cfg.LeaseTTL)
	s.notify.SeatStatusChanged(ctx, eventID.String(), notifier.SeatUpdate{SeatID: req.SeatID, Status: StatusLocked})
	s.resolver.InvalidateZone(ctx, eventID, identity.SectionID)

	return &LockSeatResponse{
		Success:   true,
		SeatID:    req.SeatID,
		ExpiresAt: s.clock.Now().Add(s.cfg.LeaseTTL),
	}, nil
}

// UnlockSeat releases the caller's lease early. Releasing a seat the caller
// does not hold is a no-op reported as success=false, never an error.
func (s *service) UnlockSeat(ctx context.Context, eventID uuid.UUID, req UnlockSeatRequest) (*UnlockSeatResponse, error) {
	identity, err := ParseVirtualID(eventID, req.SeatID)
	if err != nil {
		return nil, err
	}

	released, err := s.leases.Release(ctx, eventID.String(), identity.LeaseKey(), req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to release seat lease: %w", err)
	}

	if released {
		s.notify.SeatStatusChanged(ctx, eventID.String(), notifier.SeatUpdate{SeatID: req.SeatID, Status: StatusAvailable})
		s.resolver.InvalidateZone(ctx, eventID, identity.SectionID)
	}
	return &UnlockSeatResponse{Success: released, SeatID: req.SeatID}, nil
}

// BlockSeats takes seats off sale. Sold and held seats are refused so an
// admin action never shadows a customer's committed or in-flight purchase;
// a live browse-time lock is allowed to lapse underneath the block.
func (s *service) BlockSeats(ctx context.Context, req SeatListRequest) error {
	eventID, identities, err := s.parseSeatList(req)
	if err != nil {
		return err
	}

	for _, seatID := range req.SeatIDs {
		view, err := s.resolver.Seat(ctx, eventID, seatID)
		if err != nil {
			return err
		}
		if view.Status == StatusSold || view.Status == StatusHeld {
			return apperr.Conflict("seat %s is %s and cannot be blocked", seatID, view.Status)
		}
	}

	if err := s.records.Block(ctx, identities); err != nil {
		return fmt.Errorf("failed to block seats: %w", err)
	}

	s.broadcastBulk(ctx, eventID, identities, StatusBlocked)
	return nil
}

// UnblockSeats puts blocked seats back on sale by deleting their records.
func (s *service) UnblockSeats(ctx context.Context, req SeatListRequest) error {
	eventID, identities, err := s.parseSeatList(req)
	if err != nil {
		return err
	}

	if err := s.records.Unblock(ctx, identities); err != nil {
		return fmt.Errorf("failed to unblock seats: %w", err)
	}

	s.broadcastBulk(ctx, eventID, identities, StatusAvailable)
	return nil
}

// ReleaseHeldSeats returns durably held seats to the sparse AVAILABLE state.
// Seats that are not currently HELD are skipped, not errors, so retries of
// a partially applied release converge.
func (s *service) ReleaseHeldSeats(ctx context.Context, req SeatListRequest) (*ReleaseResponse, error) {
	eventID, identities, err := s.parseSeatList(req)
	if err != nil {
		return nil, err
	}

	resp := &ReleaseResponse{Released: []string{}}
	for i, identity := range identities {
		released, err := s.records.ReleaseHeld(ctx, identity)
		if err != nil {
			return nil, err
		}
		if !released {
			continue
		}
		resp.Released = append(resp.Released, req.SeatIDs[i])
		s.notify.SeatStatusChanged(ctx, eventID.String(), notifier.SeatUpdate{SeatID: req.SeatIDs[i], Status: StatusAvailable})
		s.resolver.InvalidateZone(ctx, eventID, identity.SectionID)
	}
	return resp, nil
}

// GetCustomerHolds lists the seats a customer currently holds live leases
// on, from the per-holder reverse index.
func (s *service) GetCustomerHolds(ctx context.Context, eventID uuid.UUID, customerID string) (*CustomerHoldsResponse, error) {
	keys, err := s.leases.HolderKeys(ctx, eventID.String(), customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list customer leases: %w", err)
	}

	resp := &CustomerHoldsResponse{
		EventID:    eventID.String(),
		CustomerID: customerID,
		SeatIDs:    []string{},
	}
	for _, key := range keys {
		identity, err := ParseLeaseKey(key)
		if err != nil {
			s.logger.Warn("skipping malformed lease key in holder index", "key", key, "error", err)
			continue
		}
		resp.SeatIDs = append(resp.SeatIDs, identity.VirtualID())
	}
	return resp, nil
}

func (s *service) parseSeatList(req SeatListRequest) (uuid.UUID, []SeatIdentity, error) {
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return uuid.Nil, nil, apperr.BadRequest("invalid event id: %s", req.EventID)
	}

	identities := make([]SeatIdentity, 0, len(req.SeatIDs))
	for _, seatID := range req.SeatIDs {
		identity, err := ParseVirtualID(eventID, seatID)
		if err != nil {
			return uuid.Nil, nil, err
		}
		identities = append(identities, identity)
	}
	return eventID, identities, nil
}

func (s *service) broadcastBulk(ctx context.Context, eventID uuid.UUID, identities []SeatIdentity, status string) {
	updates := make([]notifier.SeatUpdate, len(identities))
	touched := make(map[uuid.UUID]struct{})
	for i, identity := range identities {
		updates[i] = notifier.SeatUpdate{SeatID: identity.VirtualID(), Status: status}
		touched[identity.SectionID] = struct{}{}
	}

	s.notify.BulkSeatUpdate(ctx, eventID.String(), updates)
	for zoneID := range touched {
		s.resolver.InvalidateZone(ctx, eventID, zoneID)
	}
}
