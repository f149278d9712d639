package seats

import (
	"net/http"

	"boxoffice/internal/shared/apperr"
	"boxoffice/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// SEAT MAP READS

func (c *Controller) GetEventSeatMap(ctx *gin.Context) {
	eventID, ok := parseUUIDParam(ctx, "eventId")
	if !ok {
		return
	}

	view, err := c.service.GetEventSeatMap(ctx.Request.Context(), eventID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Seat map retrieved successfully", view, nil)
}

func (c *Controller) GetZoneSeatMap(ctx *gin.Context) {
	eventID, ok := parseUUIDParam(ctx, "eventId")
	if !ok {
		return
	}
	zoneID, ok := parseUUIDParam(ctx, "zoneId")
	if !ok {
		return
	}

	view, err := c.service.GetZoneSeatMap(ctx.Request.Context(), eventID, zoneID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Zone seat map retrieved successfully", view, nil)
}

func (c *Controller) GetSeat(ctx *gin.Context) {
	eventID, ok := parseUUIDParam(ctx, "eventId")
	if !ok {
		return
	}

	seat, err := c.service.GetSeat(ctx.Request.Context(), eventID, ctx.Param("seatId"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Seat retrieved successfully", seat, nil)
}

// BROWSE-TIME LOCKING

func (c *Controller) LockSeat(ctx *gin.Context) {
	eventID, ok := parseUUIDParam(ctx, "eventId")
	if !ok {
		return
	}

	var req LockSeatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	result, err := c.service.LockSeat(ctx.Request.Context(), eventID, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Seat locked successfully", result, nil)
}

func (c *Controller) UnlockSeat(ctx *gin.Context) {
	eventID, ok := parseUUIDParam(ctx, "eventId")
	if !ok {
		return
	}

	var req UnlockSeatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	result, err := c.service.UnlockSeat(ctx.Request.Context(), eventID, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Seat unlock processed", result, nil)
}

// ADMIN BLOCKING

func (c *Controller) BlockSeats(ctx *gin.Context) {
	var req SeatListRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	if err := c.service.BlockSeats(ctx.Request.Context(), req); err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Seats blocked successfully", nil, nil)
}

func (c *Controller) UnblockSeats(ctx *gin.Context) {
	var req SeatListRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	if err := c.service.UnblockSeats(ctx.Request.Context(), req); err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Seats unblocked successfully", nil, nil)
}

// DURABLE HOLD RELEASE

func (c *Controller) ReleaseHolds(ctx *gin.Context) {
	var req SeatListRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	result, err := c.service.ReleaseHeldSeats(ctx.Request.Context(), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Holds released", result, nil)
}

// CUSTOMER HOLDS

func (c *Controller) GetCustomerHolds(ctx *gin.Context) {
	customerID := ctx.Param("customerId")
	if customerID == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Customer ID is required", nil, "missing customer ID")
		return
	}

	eventID, err := uuid.Parse(ctx.Query("event_id"))
	if err != nil {
		response.RespondError(ctx, apperr.BadRequest("invalid or missing event_id query parameter"))
		return
	}

	holds, err := c.service.GetCustomerHolds(ctx.Request.Context(), eventID, customerID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.RespondJSON(ctx, "success", http.StatusOK, "Customer holds retrieved successfully", holds, nil)
}

func parseUUIDParam(ctx *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		response.RespondError(ctx, apperr.BadRequest("invalid %s: %s", name, ctx.Param(name)))
		return uuid.Nil, false
	}
	return id, true
}
