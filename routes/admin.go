package routes

import (
	"github.com/gin-gonic/gin"
	adminController "github.com/junaidrashid-git/storefront-api/controllers/admin"
	cartControllers "github.com/junaidrashid-git/storefront-api/controllers/cart"
	orderControllers "github.com/junaidrashid-git/storefront-api/controllers/order"
	productcontroller "github.com/junaidrashid-git/storefront-api/controllers/product"
	promoControllers "github.com/junaidrashid-git/storefront-api/controllers/promo"
	userControllers "github.com/junaidrashid-git/storefront-api/controllers/user"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

// SetupAdminRoutes registers all “/admin/*” endpoints. Requires an admin session.
func SetupAdminRoutes(r *gin.Engine, d Deps) {
	db := d.DB
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.RequireAdmin)
	{
		// ─────────── Admin & User Management ───────────
		adminGroup.GET("/admins", adminController.GetAllAdmins(db))
		adminGroup.GET("/users", userControllers.GetAllUsers(db))
		adminGroup.PUT("/users/:user_id/role", adminController.SetUserRole(db))
		adminGroup.GET("/users/:user_id/orders", orderControllers.GetUserOrdersHandler(db))
		adminGroup.GET("/user-cart/:user_id", cartControllers.GetAdminUserCart(db))

		// ─────────── Product Management ───────────
		productUploads := d.uploader("products")
		productAdmin := adminGroup.Group("/products")
		{
			productAdmin.POST("", productcontroller.CreateProduct(db, productUploads))
			productAdmin.PUT("/:id", productcontroller.UpdateProduct(db, productUploads))
			productAdmin.GET("", productcontroller.GetProducts(db))
			productAdmin.DELETE("/:id", productcontroller.DeleteProduct(db))
			productAdmin.POST("/import-excel", productcontroller.ImportProductsFromExcel(db))
			productAdmin.GET("/export-excel", productcontroller.ExportProductsToExcel(db))
		}

		// ─────────── Category Management ───────────
		categoryUploads := d.uploader("categories")
		categoryAdmin := adminGroup.Group("/categories")
		{
			categoryAdmin.POST("", productcontroller.CreateCategory(db, categoryUploads))
			categoryAdmin.PUT("/:id", productcontroller.UpdateCategory(db, categoryUploads))
			categoryAdmin.GET("", productcontroller.GetAllCategories(db))
			categoryAdmin.DELETE("/:id", productcontroller.DeleteCategory(db))
		}

		// ─────────── Hero Banners ───────────
		bannerMgmt := adminGroup.Group("/banner")
		{
			bannerMgmt.POST("/upload", adminController.UploadBanner(db, d.uploader("banners")))
			bannerMgmt.GET("", adminController.GetBanners(db))
			bannerMgmt.DELETE("/:id", adminController.DeleteBanner(db))
		}

		// ─────────── Promotions (single active per collection) ───────────
		promoUploads := d.uploader("promos")
		promoBanners := adminGroup.Group("/promos/banner")
		{
			promoBanners.GET("", promoControllers.ListPromoBanners(db))
			promoBanners.POST("", promoControllers.CreatePromoBanner(db, promoUploads))
			promoBanners.PUT("/:id/activate", promoControllers.ActivatePromoBanner(db))
			promoBanners.PUT("/:id/deactivate", promoControllers.DeactivatePromoBanner(db))
			promoBanners.DELETE("/:id", promoControllers.DeletePromoBanner(db))
		}
		trending := adminGroup.Group("/promos/trending")
		{
			trending.GET("", promoControllers.ListTrendingPromos(db))
			trending.POST("", promoControllers.CreateTrendingPromo(db, promoUploads))
			trending.PUT("/:id/activate", promoControllers.ActivateTrendingPromo(db))
			trending.PUT("/:id/deactivate", promoControllers.DeactivateTrendingPromo(db))
			trending.DELETE("/:id", promoControllers.DeleteTrendingPromo(db))
		}
	}
}
