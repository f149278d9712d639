package purchase

import (
	"github.com/gin-gonic/gin"
)

func SetupPurchaseRoutes(rg *gin.RouterGroup, controller *Controller) {
	purchases := rg.Group("/purchases")
	{
		purchases.POST("/confirm", controller.Confirm) // POST /api/v1/purchases/confirm
	}
}
