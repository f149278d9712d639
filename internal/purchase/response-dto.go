package purchase

// SoldSeat is one seat as confirmed to the buyer.
type SoldSeat struct {
	SeatID string  `json:"seat_id"`
	Status string  `json:"status"`
	Price  float64 `json:"price"`
}

// ConfirmResponse reports a committed purchase.
type ConfirmResponse struct {
	EventID    string     `json:"event_id"`
	CustomerID string     `json:"customer_id"`
	Seats      []SoldSeat `json:"seats"`
	Tickets    []Ticket   `json:"tickets"`
	TotalPrice float64    `json:"total_price"`
}
