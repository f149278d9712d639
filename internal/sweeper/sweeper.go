// Package sweeper reclaims durable HELD seat records whose hold window has
// passed. Browse-time leases self-expire in the lease store and need no
// sweeping; only the legacy persisted-hold path requires this task.
package sweeper

import (
	"context"
	"time"

	"boxoffice/internal/notifier"
	"boxoffice/internal/seats"
	"boxoffice/pkg/clock"
	"boxoffice/pkg/logger"

	"github.com/google/uuid"
)

// RecordStore is the slice of the seat repository the sweeper consumes.
type RecordStore interface {
	ListExpiredHeld(ctx context.Context, eventID *uuid.UUID, before time.Time) ([]seats.SeatRecord, error)
	ListHeldExpiringBefore(ctx context.Context, now, deadline time.Time) ([]seats.SeatRecord, error)
	DeleteHeld(ctx context.Context, recordID uuid.UUID) (bool, error)
}

// ZoneInvalidator drops cached seat-map views after a reclaim.
type ZoneInvalidator interface {
	InvalidateZone(ctx context.Context, eventID, zoneID uuid.UUID)
}

// Config holds the sweeper's timing knobs.
type Config struct {
	// Interval between sweeps.
	Interval time.Duration
	// WarningWindow is how far ahead of expiry holdExpiryWarning fires.
	WarningWindow time.Duration
}

// Sweeper is the fixed-interval background reclaimer.
type Sweeper struct {
	records RecordStore
	zones   ZoneInvalidator
	notify  notifier.Notifier
	clock   clock.Clock
	cfg     Config
	logger  *logger.Logger
	done    chan struct{}
}

func New(records RecordStore, zones ZoneInvalidator, notify notifier.Notifier, clk clock.Clock, cfg Config) *Sweeper {
	return &Sweeper{
		records: records,
		zones:   zones,
		notify:  notify,
		clock:   clk,
		cfg:     cfg,
		logger:  logger.GetDefault(),
		done:    make(chan struct{}),
	}
}

// Start runs the sweep loop until Stop is called or ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go s.run(ctx)
	s.logger.Info("hold sweeper started", "interval", s.cfg.Interval)
}

// Stop terminates the sweep loop.
func (s *Sweeper) Stop() {
	close(s.done)
	s.logger.Info("hold sweeper stopped")
}

func (s *Sweeper) run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// sweep performs one iteration: warn about holds near expiry, then reclaim
// the expired ones. Failures are logged and never stop the loop.
func (s *Sweeper) sweep(ctx context.Context) {
	started := s.clock.Now()

	s.warnExpiring(ctx, started)
	reclaimed := s.reclaimExpired(ctx, started)

	s.logger.LogSweepResult(ctx, reclaimed, s.clock.Now().Sub(started))
}

func (s *Sweeper) warnExpiring(ctx context.Context, now time.Time) {
	if s.cfg.WarningWindow <= 0 {
		return
	}

	expiring, err := s.records.ListHeldExpiringBefore(ctx, now, now.Add(s.cfg.WarningWindow))
	if err != nil {
		s.logger.Error("failed to list expiring holds", "error", err)
		return
	}

	type warning struct {
		seatIDs  []string
		earliest time.Time
	}
	perEvent := make(map[uuid.UUID]*warning)
	for _, record := range expiring {
		// Already-expired records belong to the reclaim pass.
		if record.HoldExpiresAt == nil || !record.HoldExpiresAt.After(now) {
			continue
		}
		w, ok := perEvent[record.EventID]
		if !ok {
			w = &warning{earliest: *record.HoldExpiresAt}
			perEvent[record.EventID] = w
		}
		w.seatIDs = append(w.seatIDs, record.Identity().VirtualID())
		if record.HoldExpiresAt.Before(w.earliest) {
			w.earliest = *record.HoldExpiresAt
		}
	}

	for eventID, w := range perEvent {
		s.notify.HoldExpiryWarning(ctx, eventID.String(), notifier.ExpiryWarning{
			SeatIDs:   w.seatIDs,
			ExpiresAt: w.earliest,
		})
	}
}

func (s *Sweeper) reclaimExpired(ctx context.Context, now time.Time) int {
	expired, err := s.records.ListExpiredHeld(ctx, nil, now)
	if err != nil {
		s.logger.Error("failed to list expired holds", "error", err)
		return 0
	}

	reclaimed := 0
	for _, record := range expired {
		// The status-guarded delete makes the flip exactly-once: a record
		// already reclaimed, or promoted to SOLD by a racing confirmation,
		// reports no deletion and emits nothing.
		deleted, err := s.records.DeleteHeld(ctx, record.ID)
		if err != nil {
			s.logger.Error("failed to reclaim expired hold", "record_id", record.ID, "error", err)
			continue
		}
		if !deleted {
			continue
		}

		reclaimed++
		identity := record.Identity()
		s.notify.SeatStatusChanged(ctx, record.EventID.String(), notifier.SeatUpdate{
			SeatID: identity.VirtualID(),
			Status: seats.StatusAvailable,
		})
		s.zones.InvalidateZone(ctx, record.EventID, record.SectionID)
	}
	return reclaimed
}
