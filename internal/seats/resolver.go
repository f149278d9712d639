package seats

import (
	"context"
	"fmt"
	"time"

	"boxoffice/internal/events"
	"boxoffice/internal/shared/apperr"
	"boxoffice/internal/venues"
	"boxoffice/pkg/cache"
	"boxoffice/pkg/logger"

	"github.com/google/uuid"
)

// LayoutProvider supplies the static venue layout the resolver merges
// sale state onto.
type LayoutProvider interface {
	GetLayout(ctx context.Context, venueID uuid.UUID) (*venues.Layout, error)
}

// EventDirectory supplies event timing and zone pricing.
type EventDirectory interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*events.Event, error)
	ZonePrices(ctx context.Context, eventID uuid.UUID) (map[uuid.UUID]float64, error)
}

// LeaseReader is the read-only slice of the lease store the resolver
// needs. The resolver never writes leases.
type LeaseReader interface {
	Holders(ctx context.Context, seatKeys []string) ([]string, error)
}

// Resolver derives every seat's externally visible state without needing
// a durable record per seat: static layout, overridden by sparse durable
// records, overridden-for-availability by live leases.
type Resolver struct {
	layouts      LayoutProvider
	events       EventDirectory
	records      Repository
	leases       LeaseReader
	cacheService cache.Service
	cacheTTL     time.Duration
}

// NewResolver builds a resolver. cacheService may be nil, which disables
// the zone-map cache.
func NewResolver(layouts LayoutProvider, directory EventDirectory, records Repository, leases LeaseReader, cacheService cache.Service, cacheTTL time.Duration) *Resolver {
	return &Resolver{
		layouts:      layouts,
		events:       directory,
		records:      records,
		leases:       leases,
		cacheService: cacheService,
		cacheTTL:     cacheTTL,
	}
}

func zoneMapCacheKey(eventID, zoneID uuid.UUID) string {
	return fmt.Sprintf("seatmap:zone:%s:%s", eventID, zoneID)
}

// EventSeatMap returns the full merged seat list plus per-zone counts.
// Every lease in the view is read in a single batched round trip.
func (r *Resolver) EventSeatMap(ctx context.Context, eventID uuid.UUID) (*EventSeatMapView, error) {
	event, layout, zonePrices, err := r.loadEventContext(ctx, eventID)
	if err != nil {
		return nil, err
	}

	recordIndex, err := r.recordIndex(ctx, eventID)
	if err != nil {
		return nil, err
	}

	var identities []SeatIdentity
	offsets := make([]int, len(layout.Sections)+1)
	for i := range layout.Sections {
		identities = append(identities, sectionIdentities(eventID, &layout.Sections[i])...)
		offsets[i+1] = len(identities)
	}

	holders, err := r.readHolders(ctx, identities)
	if err != nil {
		return nil, err
	}

	view := &EventSeatMapView{EventID: eventID.String()}
	for i := range layout.Sections {
		lo, hi := offsets[i], offsets[i+1]
		seatViews, counts := resolveSection(event, &layout.Sections[i], zonePrices, recordIndex, identities[lo:hi], holders[lo:hi])
		view.Seats = append(view.Seats, seatViews...)
		view.Zones = append(view.Zones, counts)
	}
	return view, nil
}

// ZoneSeatMap returns one zone's merged seats and tallies, cache-aside
// with a short TTL because it is the hottest read under load.
func (r *Resolver) ZoneSeatMap(ctx context.Context, eventID, zoneID uuid.UUID) (*ZoneSeatMapView, error) {
	cacheKey := zoneMapCacheKey(eventID, zoneID)
	if r.cacheService != nil && r.cacheTTL > 0 {
		var cached ZoneSeatMapView
		if err := r.cacheService.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	event, layout, zonePrices, err := r.loadEventContext(ctx, eventID)
	if err != nil {
		return nil, err
	}

	section := layout.Section(zoneID)
	if section == nil {
		return nil, apperr.NotFound("zone %s not found in event %s", zoneID, eventID)
	}

	recordIndex, err := r.recordIndex(ctx, eventID)
	if err != nil {
		return nil, err
	}

	identities := sectionIdentities(eventID, section)
	holders, err := r.readHolders(ctx, identities)
	if err != nil {
		return nil, err
	}

	seatViews, counts := resolveSection(event, section, zonePrices, recordIndex, identities, holders)

	view := &ZoneSeatMapView{
		EventID: eventID.String(),
		ZoneID:  zoneID.String(),
		Seats:   seatViews,
		Counts:  counts,
	}

	if r.cacheService != nil && r.cacheTTL > 0 {
		if err := r.cacheService.Set(ctx, cacheKey, view, r.cacheTTL); err != nil {
			logger.GetDefault().Debug("failed to cache zone seat map", "key", cacheKey, "error", err)
		}
	}
	return view, nil
}

// Seat resolves one seat's merged state from its virtual id.
func (r *Resolver) Seat(ctx context.Context, eventID uuid.UUID, virtualID string) (*SeatView, error) {
	identity, err := ParseVirtualID(eventID, virtualID)
	if err != nil {
		return nil, err
	}

	event, layout, zonePrices, err := r.loadEventContext(ctx, eventID)
	if err != nil {
		return nil, err
	}

	section := layout.Section(identity.SectionID)
	if section == nil {
		return nil, apperr.NotFound("seat %s not found in event %s", virtualID, eventID)
	}

	var descriptor *venues.SeatDescriptor
	for i := range section.Seats {
		if section.Seats[i].Row == identity.Row && section.Seats[i].SeatNumber == identity.SeatNumber {
			descriptor = &section.Seats[i]
			break
		}
	}
	if descriptor == nil {
		return nil, apperr.NotFound("seat %s not found in event %s", virtualID, eventID)
	}

	record, err := r.records.GetBySeat(ctx, identity)
	if err != nil {
		return nil, err
	}

	holders, err := r.leases.Holders(ctx, []string{identity.LeaseKey()})
	if err != nil {
		return nil, fmt.Errorf("failed to read seat lease: %w", err)
	}

	view := mergeSeat(identity, descriptor, section.Name, record, holders[0],
		events.PriceFor(event, zonePrices, identity.SectionID))
	return &view, nil
}

// CapacityCounts reports total layout seats and durable sold/blocked
// counts for an event.
func (r *Resolver) CapacityCounts(ctx context.Context, eventID uuid.UUID) (total, sold, blocked int64, err error) {
	event, err := r.events.GetEvent(ctx, eventID)
	if err != nil {
		return 0, 0, 0, err
	}
	layout, err := r.layouts.GetLayout(ctx, event.VenueID)
	if err != nil {
		return 0, 0, 0, err
	}

	sold, err = r.records.CountByStatus(ctx, eventID, StatusSold)
	if err != nil {
		return 0, 0, 0, err
	}
	blocked, err = r.records.CountByStatus(ctx, eventID, StatusBlocked)
	if err != nil {
		return 0, 0, 0, err
	}
	return int64(layout.TotalSeats()), sold, blocked, nil
}

// InvalidateZone drops cached views touched by a seat mutation.
func (r *Resolver) InvalidateZone(ctx context.Context, eventID, zoneID uuid.UUID) {
	if r.cacheService == nil {
		return
	}
	if err := r.cacheService.Delete(ctx, zoneMapCacheKey(eventID, zoneID)); err != nil {
		logger.GetDefault().Debug("failed to invalidate zone seat map", "event_id", eventID, "zone_id", zoneID, "error", err)
	}
}

func (r *Resolver) loadEventContext(ctx context.Context, eventID uuid.UUID) (*events.Event, *venues.Layout, map[uuid.UUID]float64, error) {
	event, err := r.events.GetEvent(ctx, eventID)
	if err != nil {
		return nil, nil, nil, err
	}

	layout, err := r.layouts.GetLayout(ctx, event.VenueID)
	if err != nil {
		return nil, nil, nil, err
	}

	zonePrices, err := r.events.ZonePrices(ctx, eventID)
	if err != nil {
		return nil, nil, nil, err
	}
	return event, layout, zonePrices, nil
}

func (r *Resolver) recordIndex(ctx context.Context, eventID uuid.UUID) (map[recordKey]*SeatRecord, error) {
	records, err := r.records.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	index := make(map[recordKey]*SeatRecord, len(records))
	for i := range records {
		index[keyOf(records[i].Identity())] = &records[i]
	}
	return index, nil
}

// sectionIdentities derives the content-addressed identity of every seat
// in a section, in layout order.
func sectionIdentities(eventID uuid.UUID, section *venues.VenueSection) []SeatIdentity {
	identities := make([]SeatIdentity, len(section.Seats))
	for i, descriptor := range section.Seats {
		identities[i] = SeatIdentity{
			EventID:    eventID,
			SectionID:  section.ID,
			Row:        descriptor.Row,
			SeatNumber: descriptor.SeatNumber,
		}
	}
	return identities
}

// readHolders fetches the lease holder of every identity in one round
// trip. The result is positionally aligned with the input.
func (r *Resolver) readHolders(ctx context.Context, identities []SeatIdentity) ([]string, error) {
	if len(identities) == 0 {
		return nil, nil
	}
	keys := make([]string, len(identities))
	for i := range identities {
		keys[i] = identities[i].LeaseKey()
	}
	holders, err := r.leases.Holders(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to batch-read leases: %w", err)
	}
	return holders, nil
}

// resolveSection merges one section's layout seats with durable records
// and pre-fetched lease holders. No store reads happen here.
func resolveSection(event *events.Event, section *venues.VenueSection, zonePrices map[uuid.UUID]float64, recordIndex map[recordKey]*SeatRecord, identities []SeatIdentity, holders []string) ([]SeatView, ZoneAvailability) {
	price := events.PriceFor(event, zonePrices, section.ID)
	counts := ZoneAvailability{
		ZoneID: section.ID.String(),
		Name:   section.Name,
		Total:  len(section.Seats),
	}

	views := make([]SeatView, 0, len(section.Seats))
	for i := range section.Seats {
		view := mergeSeat(identities[i], &section.Seats[i], section.Name, recordIndex[keyOf(identities[i])], holders[i], price)
		views = append(views, view)

		switch view.Status {
		case StatusAvailable:
			counts.Available++
		case StatusLocked:
			counts.Locked++
		case StatusHeld:
			counts.Held++
		case StatusSold:
			counts.Sold++
		case StatusBlocked:
			counts.Blocked++
		}
	}
	return views, counts
}

// mergeSeat applies the precedence rule: durable record wins, then a live
// lease means LOCKED, else the seat is AVAILABLE.
func mergeSeat(identity SeatIdentity, descriptor *venues.SeatDescriptor, sectionName string, record *SeatRecord, leaseHolder string, zonePrice float64) SeatView {
	view := SeatView{
		SeatID:       identity.VirtualID(),
		SectionID:    identity.SectionID.String(),
		SectionName:  sectionName,
		Row:          identity.Row,
		SeatNumber:   identity.SeatNumber,
		Position:     descriptor.Position,
		Status:       StatusAvailable,
		Price:        zonePrice,
		IsAccessible: descriptor.IsAccessible,
		IsAisle:      descriptor.IsAisle,
	}

	if record != nil {
		view.Status = record.Status
		if record.Status == StatusSold && record.Price > 0 {
			view.Price = record.Price
		}
		return view
	}

	if leaseHolder != "" {
		view.Status = StatusLocked
	}
	return view
}
