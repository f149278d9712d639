package holds

// CreateHoldRequest converts a customer's browse-time locks into a single
// checkout hold.
type CreateHoldRequest struct {
	EventID    string   `json:"event_id" binding:"required,uuid"`
	SeatIDs    []string `json:"seat_ids" binding:"required,min=1,dive,required"`
	CustomerID string   `json:"customer_id" binding:"required"`
}
