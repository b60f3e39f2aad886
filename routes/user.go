package routes

import (
	"github.com/gin-gonic/gin"
	adminController "github.com/junaidrashid-git/storefront-api/controllers/admin"
	cartControllers "github.com/junaidrashid-git/storefront-api/controllers/cart"
	productcontroller "github.com/junaidrashid-git/storefront-api/controllers/product"
	promoControllers "github.com/junaidrashid-git/storefront-api/controllers/promo"
	reviewControllers "github.com/junaidrashid-git/storefront-api/controllers/review"
	userControllers "github.com/junaidrashid-git/storefront-api/controllers/user"
	wishlistControllers "github.com/junaidrashid-git/storefront-api/controllers/wishlist"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

// SetupStoreRoutes registers the public catalog and promotion reads.
func SetupStoreRoutes(r *gin.Engine, d Deps) {
	db := d.DB

	// ──────────────── Browse Products ────────────────
	r.GET("/products", productcontroller.GetProducts(db))
	r.GET("/products/:id", productcontroller.GetProductByID(db))
	r.GET("/products/:id/reviews", reviewControllers.ListReviews(db))

	// ──────────────── Browse Categories + Products ────────────────
	r.GET("/categories", productcontroller.GetAllCategoriesWithProducts(db))
	r.GET("/categories/:id", productcontroller.GetCategoryByID(db))

	// ──────────────── Banners & Promotions ────────────────
	r.GET("/banners", adminController.GetBanners(db))
	r.GET("/promos/banner", promoControllers.ListActivePromoBanners(db))
	r.GET("/promos/trending", promoControllers.ListActiveTrendingPromos(db))
}

// SetupUserRoutes registers all “/user/*” endpoints.
func SetupUserRoutes(r *gin.Engine, d Deps) {
	db := d.DB
	userGroup := r.Group("/user")
	userGroup.Use(middleware.RequireSession)
	{
		// ──────────────── User Profile ────────────────
		userGroup.GET("", userControllers.GetUser(db))    // GET /user
		userGroup.PUT("", userControllers.UpdateUser(db)) // PUT /user

		// ──────────────── Shopping Cart ────────────────
		cartGroup := userGroup.Group("/cart")
		{
			cartGroup.GET("", cartControllers.GetUserCart(db))                           // GET /user/cart
			cartGroup.POST("", cartControllers.AddCartItem(db))                          // POST /user/cart
			cartGroup.DELETE("", cartControllers.ClearUserCart(db))                      // DELETE /user/cart
			cartGroup.PUT("/items/:item_id", cartControllers.UpdateCartItemQuantity(db)) // PUT /user/cart/items/:item_id
			cartGroup.DELETE("/items/:item_id", cartControllers.DeleteCartItem(db))      // DELETE /user/cart/items/:item_id
		}

		// ──────────────── Wishlist ────────────────
		wishlist := userGroup.Group("/wishlist")
		{
			wishlist.GET("", wishlistControllers.GetWishlist(db))
			wishlist.POST("/:product_id", wishlistControllers.AddToWishlist(db))
			wishlist.DELETE("/:product_id", wishlistControllers.RemoveFromWishlist(db))
		}

		// ──────────────── Reviews ────────────────
		userGroup.PUT("/products/:id/reviews", reviewControllers.UpsertReview(db))
		userGroup.DELETE("/products/:id/reviews/:review_id", reviewControllers.DeleteReview(db))
	}
}
