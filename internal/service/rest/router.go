package rest

import "github.com/gin-gonic/gin"

// NewRouter регистрирует маршруты API поверх собранного обработчика.
func NewRouter(handler *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	{
		api.POST("/orders", handler.PlaceOrder)
		api.GET("/orders", handler.ListOrders)
		api.GET("/orders/:orderId", handler.GetOrder)
		api.PATCH("/orders/:orderId/status", handler.UpdateOrderStatus)
		api.GET("/products/:id", handler.GetProduct)
	}

	return router
}
