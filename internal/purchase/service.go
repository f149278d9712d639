// Package purchase commits held seat selections: one database transaction
// flips every seat to SOLD and issues tickets, after which the leases are
// torn down and the sale is broadcast. Failure anywhere leaves the leases
// intact so the customer can retry before the hold lapses.
package purchase

import (
	"context"
	"fmt"

	"boxoffice/internal/events"
	"boxoffice/internal/holds"
	"boxoffice/internal/lease"
	"boxoffice/internal/notifier"
	"boxoffice/internal/seats"
	"boxoffice/internal/shared/apperr"
	"boxoffice/internal/shared/config"
	"boxoffice/pkg/logger"

	"github.com/google/uuid"
)

// TokenVerifier checks hold tokens. The token is advisory: live lease
// state is always re-verified afterwards.
type TokenVerifier interface {
	Verify(token string) (*holds.TokenClaims, error)
}

// EventDirectory supplies pricing for the seats being sold.
type EventDirectory interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*events.Event, error)
	ZonePrices(ctx context.Context, eventID uuid.UUID) (map[uuid.UUID]float64, error)
}

// CapacityReader reports event-level availability for the post-sale
// capacity broadcast.
type CapacityReader interface {
	CapacityCounts(ctx context.Context, eventID uuid.UUID) (total, sold, blocked int64, err error)
	InvalidateZone(ctx context.Context, eventID, zoneID uuid.UUID)
}

type Service interface {
	Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResponse, error)
}

type service struct {
	verifier TokenVerifier
	events   EventDirectory
	leases   lease.Manager
	repo     Repository
	capacity CapacityReader
	notify   notifier.Notifier
	cfg      config.InventoryConfig
	logger   *logger.Logger
}

func NewService(verifier TokenVerifier, directory EventDirectory, leases lease.Manager, repo Repository, capacity CapacityReader, notify notifier.Notifier, cfg config.InventoryConfig) Service {
	return &service{
		verifier: verifier,
		events:   directory,
		leases:   leases,
		repo:     repo,
		capacity: capacity,
		notify:   notify,
		cfg:      cfg,
		logger:   logger.GetDefault(),
	}
}

func (s *service) Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResponse, error) {
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, apperr.BadRequest("invalid event id: %s", req.EventID)
	}

	if err := s.checkToken(req); err != nil {
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

	// The authoritative check: every seat must still be leased by the buyer.
	holders, err := s.leases.Holders(ctx, leaseKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to verify seat leases: %w", err)
	}
	for i, holder := range holders {
		if holder != req.CustomerID {
			return nil, apperr.Conflict("hold on seat %s has lapsed", req.SeatIDs[i])
		}
	}

	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	zonePrices, err := s.events.ZonePrices(ctx, eventID)
	if err != nil {
		return nil, err
	}

	sale := Sale{CustomerID: req.CustomerID, Seats: make([]SaleSeat, len(identities))}
	for i, identity := range identities {
		sale.Seats[i] = SaleSeat{
			Identity: identity,
			Price:    events.PriceFor(event, zonePrices, identity.SectionID),
		}
	}

	tickets, err := s.repo.ConfirmSale(ctx, sale)
	if err != nil {
		// Leases are untouched; the customer can retry until the hold lapses.
		return nil, err
	}

	// Sale is durable; leases are now redundant and torn down best-effort
	// (an unreleased lease self-expires and the SOLD record shadows it).
	for _, key := range leaseKeys {
		if _, err := s.leases.Release(ctx, req.EventID, key, req.CustomerID); err != nil {
			s.logger.Warn("failed to release lease after sale", "key", key, "error", err)
		}
	}

	s.logger.LogPurchaseConfirmed(ctx, req.EventID, req.CustomerID, len(req.SeatIDs))

	response := &ConfirmResponse{
		EventID:    req.EventID,
		CustomerID: req.CustomerID,
		Tickets:    tickets,
		Seats:      make([]SoldSeat, len(sale.Seats)),
	}
	for i, seat := range sale.Seats {
		response.Seats[i] = SoldSeat{
			SeatID: seat.Identity.VirtualID(),
			Status: seats.StatusSold,
			Price:  seat.Price,
		}
		response.TotalPrice += seat.Price
	}

	s.broadcast(ctx, eventID, identities, response.Seats)
	return response, nil
}

// checkToken validates the advisory hold token: bad or expired tokens are
// bad requests; a token minted for someone else is unauthorized.
func (s *service) checkToken(req ConfirmRequest) error {
	claims, err := s.verifier.Verify(req.HoldToken)
	if err != nil {
		return err
	}
	if claims.CustomerID != req.CustomerID {
		return apperr.Unauthorized("hold token belongs to another customer")
	}
	if claims.EventID != req.EventID {
		return apperr.BadRequest("hold token is for another event")
	}

	held := make(map[string]struct{}, len(claims.SeatIDs))
	for _, seatID := range claims.SeatIDs {
		held[seatID] = struct{}{}
	}
	for _, seatID := range req.SeatIDs {
		if _, ok := held[seatID]; !ok {
			return apperr.BadRequest("seat %s is not covered by the hold token", seatID)
		}
	}
	return nil
}

func (s *service) broadcast(ctx context.Context, eventID uuid.UUID, identities []seats.SeatIdentity, sold []SoldSeat) {
	updates := make([]notifier.SeatUpdate, len(sold))
	touched := make(map[uuid.UUID]struct{})
	for i, seat := range sold {
		updates[i] = notifier.SeatUpdate{SeatID: seat.SeatID, Status: seats.StatusSold}
		s.notify.SeatStatusChanged(ctx, eventID.String(), updates[i])
		touched[identities[i].SectionID] = struct{}{}
	}
	s.notify.BulkSeatUpdate(ctx, eventID.String(), updates)

	for zoneID := range touched {
		s.capacity.InvalidateZone(ctx, eventID, zoneID)
	}

	total, soldCount, blocked, err := s.capacity.CapacityCounts(ctx, eventID)
	if err != nil {
		s.logger.Warn("failed to compute capacity after sale", "event_id", eventID, "error", err)
		return
	}

	summary := notifier.CapacitySummary{
		Total:     int(total),
		Sold:      int(soldCount),
		Blocked:   int(blocked),
		Remaining: int(total - soldCount - blocked),
	}
	s.notify.CapacityUpdate(ctx, eventID.String(), summary)

	if total > 0 && float64(summary.Remaining)/float64(total) < s.cfg.SellingFastThreshold {
		s.notify.SellingFast(ctx, eventID.String(), summary)
	}
}
