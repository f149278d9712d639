// Package holds converts a customer's browse-time seat locks into one
// checkout hold: every lease is extended to the event's hold window in a
// single all-or-nothing step and a signed token is minted for the
// confirmation call.
package holds

import (
	"context"
	"errors"
	"fmt"

	"boxoffice/internal/events"
	"boxoffice/internal/lease"
	"boxoffice/internal/notifier"
	"boxoffice/internal/seats"
	"boxoffice/internal/shared/apperr"
	"boxoffice/internal/shared/config"
	"boxoffice/pkg/clock"
	"boxoffice/pkg/logger"

	"github.com/google/uuid"
)

// SeatViewer is the slice of the seat resolver the hold flow needs.
type SeatViewer interface {
	Seat(ctx context.Context, eventID uuid.UUID, virtualID string) (*seats.SeatView, error)
	InvalidateZone(ctx context.Context, eventID, zoneID uuid.UUID)
}

// EventGetter supplies the event's hold-window configuration.
type EventGetter interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*events.Event, error)
}

type Service interface {
	CreateHold(ctx context.Context, req CreateHoldRequest) (*HoldResponse, error)
}

type service struct {
	viewer SeatViewer
	events EventGetter
	leases lease.Manager
	issuer *TokenIssuer
	notify notifier.Notifier
	cfg    config.InventoryConfig
	clock  clock.Clock
	logger *logger.Logger
}

func NewService(viewer SeatViewer, events EventGetter, leases lease.Manager, issuer *TokenIssuer, notify notifier.Notifier, cfg config.InventoryConfig, clk clock.Clock) Service {
	return &service{
		viewer: viewer,
		events: events,
		leases: leases,
		issuer: issuer,
		notify: notify,
		cfg:    cfg,
		clock:  clk,
		logger: logger.GetDefault(),
	}
}

// CreateHold is all-or-nothing: when any requested seat is not currently
// locked by the customer, no lease is touched and the first offending seat
// is named in the error.
func (s *service) CreateHold(ctx context.Context, req CreateHoldRequest) (*HoldResponse, error) {
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, apperr.BadRequest("invalid event id: %s", req.EventID)
	}

	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	identities := make([]seats.SeatIdentity, len(req.SeatIDs))
	leaseKeys := make([]string, len(req.SeatIDs))
	for i, seatID := range req.SeatIDs {
		identity, err := seats.ParseVirtualID(eventID, seatID)
		if err != nil {
			return nil, err
		}
		identities[i] = identity
		leaseKeys[i] = identity.LeaseKey()
	}

	// Cheap pre-check for a precise error; ExtendAll re-verifies atomically.
	holders, err := s.leases.Holders(ctx, leaseKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to verify seat leases: %w", err)
	}
	for i, holder := range holders {
		if holder != req.CustomerID {
			return nil, apperr.Conflict("seat %s is not locked by you", req.SeatIDs[i])
		}
	}

	holdTTL := event.HoldDuration(s.cfg.DefaultHoldMinutes)
	expiresAt := s.clock.Now().Add(holdTTL)

	if err := s.leases.ExtendAll(ctx, req.EventID, leaseKeys, req.CustomerID, holdTTL); err != nil {
		var conflict *lease.ConflictError
		if errors.As(err, &conflict) {
			seatID := conflict.SeatKey
			if identity, parseErr := seats.ParseLeaseKey(conflict.SeatKey); parseErr == nil {
				seatID = identity.VirtualID()
			}
			return nil, apperr.Conflict("seat %s is not locked by you", seatID)
		}
		return nil, fmt.Errorf("failed to extend seat leases: %w", err)
	}

	response := &HoldResponse{
		EventID:    req.EventID,
		CustomerID: req.CustomerID,
		ExpiresAt:  expiresAt,
		Seats:      make([]seats.SeatView, 0, len(req.SeatIDs)),
	}
	for _, seatID := range req.SeatIDs {
		view, err := s.viewer.Seat(ctx, eventID, seatID)
		if err != nil {
			return nil, err
		}
		view.Status = seats.StatusHeld
		response.Seats = append(response.Seats, *view)
		response.TotalPrice += view.Price
	}

	token, err := s.issuer.Mint(req.CustomerID, req.EventID, req.SeatIDs, expiresAt)
	if err != nil {
		return nil, err
	}
	response.HoldToken = token

	s.logger.LogHoldCreated(ctx, req.EventID, req.CustomerID, len(req.SeatIDs), expiresAt)
	touched := make(map[uuid.UUID]struct{})
	for i, seatID := range req.SeatIDs {
		s.notify.SeatStatusChanged(ctx, req.EventID, notifier.SeatUpdate{SeatID: seatID, Status: seats.StatusHeld})
		touched[identities[i].SectionID] = struct{}{}
	}
	for zoneID := range touched {
		s.viewer.InvalidateZone(ctx, eventID, zoneID)
	}

	return response, nil
}
