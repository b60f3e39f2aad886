package adminController

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// GetAllAdmins lists users holding the admin role.
func GetAllAdmins(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		admins := []models.User{}
		if err := db.WithContext(c.Request.Context()).
			Where("role = ?", models.RoleAdmin).
			Order("created_at").
			Find(&admins).Error; err != nil {
			log.Error().Err(err).Msg("❌ Failed to fetch admins")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch admins"})
			return
		}

		c.JSON(http.StatusOK, admins)
	}
}
