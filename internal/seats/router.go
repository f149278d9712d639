package seats

import (
	"github.com/gin-gonic/gin"
)

func SetupSeatRoutes(rg *gin.RouterGroup, controller *Controller) {

	// EVENT-SCOPED SEAT OPERATIONS

	events := rg.Group("/events/:eventId")
	{
		events.GET("/seats", controller.GetEventSeatMap)             // GET /api/v1/events/:eventId/seats
		events.GET("/seats/:seatId", controller.GetSeat)             // GET /api/v1/events/:eventId/seats/:seatId
		events.GET("/zones/:zoneId/seats", controller.GetZoneSeatMap) // GET /api/v1/events/:eventId/zones/:zoneId/seats

		events.POST("/seats/lock", controller.LockSeat)     // POST /api/v1/events/:eventId/seats/lock
		events.POST("/seats/unlock", controller.UnlockSeat) // POST /api/v1/events/:eventId/seats/unlock
	}

	// DURABLE HOLD RELEASE (legacy path)

	holds := rg.Group("/holds")
	{
		holds.POST("/release", controller.ReleaseHolds) // POST /api/v1/holds/release
	}

	// ADMIN SEAT OPERATIONS

	adminSeats := rg.Group("/admin/seats")
	{
		adminSeats.PUT("/block", controller.BlockSeats)     // PUT /api/v1/admin/seats/block
		adminSeats.PUT("/unblock", controller.UnblockSeats) // PUT /api/v1/admin/seats/unblock
	}

	// CUSTOMER HOLDS

	customers := rg.Group("/customers")
	{
		customers.GET("/:customerId/holds", controller.GetCustomerHolds) // GET /api/v1/customers/:customerId/holds?event_id=xxx
	}
}
