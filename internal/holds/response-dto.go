package holds

import (
	"time"

	"boxoffice/internal/seats"
)

// HoldResponse carries the minted token plus the held seats as the
// customer will see them at checkout.
type HoldResponse struct {
	HoldToken  string           `json:"hold_token"`
	EventID    string           `json:"event_id"`
	CustomerID string           `json:"customer_id"`
	ExpiresAt  time.Time        `json:"expires_at"`
	Seats      []seats.SeatView `json:"seats"`
	TotalPrice float64          `json:"total_price"`
}
