package seats

import "time"

// SeatView is one seat's merged, externally visible state.
type SeatView struct {
	SeatID       string  `json:"seat_id"`
	SectionID    string  `json:"section_id"`
	SectionName  string  `json:"section_name"`
	Row          string  `json:"row"`
	SeatNumber   string  `json:"seat_number"`
	Position     int     `json:"position"`
	Status       string  `json:"status"` // AVAILABLE, LOCKED, HELD, SOLD, BLOCKED
	Price        float64 `json:"price"`
	IsAccessible bool    `json:"is_accessible"`
	IsAisle      bool    `json:"is_aisle"`
}

// ZoneAvailability tallies one zone's seats by status.
type ZoneAvailability struct {
	ZoneID    string `json:"zone_id"`
	Name      string `json:"name"`
	Total     int    `json:"total"`
	Available int    `json:"available"`
	Locked    int    `json:"locked"`
	Held      int    `json:"held"`
	Sold      int    `json:"sold"`
	Blocked   int    `json:"blocked"`
}

// EventSeatMapView is the full merged seat map for an event.
type EventSeatMapView struct {
	EventID string             `json:"event_id"`
	Seats   []SeatView         `json:"seats"`
	Zones   []ZoneAvailability `json:"zones"`
}

// ZoneSeatMapView is one zone's filtered seat map.
type ZoneSeatMapView struct {
	EventID string           `json:"event_id"`
	ZoneID  string           `json:"zone_id"`
	Seats   []SeatView       `json:"seats"`
	Counts  ZoneAvailability `json:"counts"`
}

// LockSeatResponse reports a lock attempt.
type LockSeatResponse struct {
	Success   bool      `json:"success"`
	SeatID    string    `json:"seat_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UnlockSeatResponse reports an unlock attempt; Success is false when the
// seat was not held by the caller.
type UnlockSeatResponse struct {
	Success bool   `json:"success"`
	SeatID  string `json:"seat_id"`
}

// ReleaseResponse reports how many durable holds were released.
type ReleaseResponse struct {
	Released []string `json:"released"`
}

// CustomerHoldsResponse lists the seats a customer currently has locked
// or held for an event.
type CustomerHoldsResponse struct {
	EventID    string   `json:"event_id"`
	CustomerID string   `json:"customer_id"`
	SeatIDs    []string `json:"seat_ids"`
}
