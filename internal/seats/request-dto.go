package seats

// LockSeatRequest asks for a browse-time lock on one seat.
type LockSeatRequest struct {
	SeatID string `json:"seat_id" binding:"required"`
	UserID string `json:"user_id" binding:"required"`
}

// UnlockSeatRequest gives a browse-time lock back early.
type UnlockSeatRequest struct {
	SeatID string `json:"seat_id" binding:"required"`
	UserID string `json:"user_id" binding:"required"`
}

// SeatListRequest names a batch of seats of one event; used by the admin
// block/unblock endpoints and the durable-hold release endpoint.
type SeatListRequest struct {
	EventID string   `json:"event_id" binding:"required,uuid"`
	SeatIDs []string `json:"seat_ids" binding:"required,min=1,dive,required"`
}
