package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/middleware"
)

// SetupAuthRoutes registers all “/auth/*” endpoints. Tokens are issued out of
// band; this only reports who the caller is.
func SetupAuthRoutes(r *gin.Engine, _ Deps) {
	authGroup := r.Group("/auth")
	{
		authGroup.GET("/session", middleware.RequireSession, func(c *gin.Context) {
			sess := middleware.Session(c)
			c.JSON(http.StatusOK, gin.H{
				"user_id":  sess.UserID,
				"role":     sess.Role,
				"is_admin": sess.IsAdmin(),
			})
		})
	}
}
