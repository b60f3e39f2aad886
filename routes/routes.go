package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	cartControllers "github.com/junaidrashid-git/storefront-api/controllers/cart"
	"github.com/junaidrashid-git/storefront-api/events"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/storage"
	"gorm.io/gorm"
)

// Deps is everything the handlers need, built once at startup.
type Deps struct {
	DB         *gorm.DB
	Resolver   auth.Resolver
	Store      storage.ObjectStore
	Bucket     string
	Reconciler *cartControllers.Reconciler
	Hub        *events.Hub
	Publisher  events.Publisher
}

func (d Deps) uploader(folder string) *storage.Uploader {
	return storage.NewUploader(d.Store, d.Bucket, folder)
}

// SetupRoutes is the single entry-point that wires up every route group.
func SetupRoutes(r *gin.Engine, d Deps) {
	r.Use(middleware.Authenticate(d.Resolver))

	// 1️⃣ Session introspection
	SetupAuthRoutes(r, d)

	// 2️⃣ Public storefront (anonymous allowed)
	SetupStoreRoutes(r, d)

	// 3️⃣ User routes (session required)
	SetupUserRoutes(r, d)

	// 4️⃣ Admin routes (admin role required)
	SetupAdminRoutes(r, d)

	// order routes
	SetupOrderRoutes(r, d)
}
