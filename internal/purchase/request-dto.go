package purchase

// ConfirmRequest commits a held selection as a purchase.
type ConfirmRequest struct {
	EventID    string   `json:"event_id" binding:"required,uuid"`
	SeatIDs    []string `json:"seat_ids" binding:"required,min=1,dive,required"`
	CustomerID string   `json:"customer_id" binding:"required"`
	HoldToken  string   `json:"hold_token" binding:"required"`
}
