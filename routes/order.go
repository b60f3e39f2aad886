package routes

import (
	"github.com/gin-gonic/gin"
	cartControllers "github.com/junaidrashid-git/storefront-api/controllers/cart"
	orderControllers "github.com/junaidrashid-git/storefront-api/controllers/order"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

func SetupOrderRoutes(r *gin.Engine, d Deps) {
	db := d.DB

	orders := r.Group("/user/orders")
	orders.Use(middleware.RequireSession)
	{
		// Create a new order from the cart
		orders.POST("", orderControllers.PlaceOrderHandler(db, d.Publisher))

		// Own order history
		orders.GET("", orderControllers.GetMyOrdersHandler(db))
		orders.GET("/:order_id", orderControllers.GetMyOrderHandler(db))

		// Copy a past order back into the cart
		orders.POST("/:order_id/reorder", cartControllers.ReorderHandler(d.Reconciler))
	}

	adminOrders := r.Group("/admin/orders")
	adminOrders.Use(middleware.RequireAdmin)
	{
		// Fetch all orders (admin)
		adminOrders.GET("", orderControllers.GetAllOrdersHandler(db))

		// websocket endpoint for real-time order updates
		adminOrders.GET("/ws", d.Hub.Handler)

		adminOrders.GET("/:order_id", orderControllers.GetOrderByIDHandler(db))

		// Update order status (e.g., shipped, cancelled)
		adminOrders.PUT("/:order_id/status", orderControllers.UpdateOrderStatusHandler(db, d.Publisher))
	}
}
