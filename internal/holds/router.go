package holds

import (
	"github.com/gin-gonic/gin"
)

func SetupHoldRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.POST("/holds", controller.CreateHold) // POST /api/v1/holds
}
