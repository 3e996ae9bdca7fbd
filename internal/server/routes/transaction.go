package routes

import (
	"tari-sdk/internal/handler"

	"github.com/gin-gonic/gin"
)

func RegisterTransactionRoutes(rg *gin.RouterGroup, h *handler.TransactionHandler) {
	txGroup := rg.Group("/transactions")
	{
		txGroup.POST("/build", h.Build)
		txGroup.GET("/:hash", h.Get)
		txGroup.PUT("/:hash/result", h.RecordResult)
	}
}
