package adminController

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/storage"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type BannerForm struct {
	Title     string `form:"title" binding:"max=120"`
	LinkURL   string `form:"link_url" binding:"omitempty,url"`
	SortOrder int    `form:"sort_order"`
}

// UploadBanner stores the hero image and records it. Hero banners have no
// single-active rule; every row is shown, ordered by sort_order.
func UploadBanner(db *gorm.DB, up *storage.Uploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form BannerForm
		if err := c.ShouldBind(&form); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		fh, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No image uploaded"})
			return
		}
		att, err := storage.AttachmentFromForm(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		banner := models.HeroBanner{Title: form.Title, LinkURL: form.LinkURL, SortOrder: form.SortOrder}
		err = up.CreateWithImage(ctx, att, func(imageURL string) error {
			banner.ImageURL = imageURL
			return db.WithContext(ctx).Create(&banner).Error
		})
		if errors.Is(err, storage.ErrUploadFailure) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Image upload failed"})
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("hero banner save failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "DB save failed"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "Banner uploaded", "data": banner})
	}
}

// GetBanners - List banners
func GetBanners(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		banners := []models.HeroBanner{}
		if err := db.WithContext(c.Request.Context()).Order("sort_order, id").Find(&banners).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get banners"})
			return
		}
		c.JSON(http.StatusOK, banners)
	}
}

// DeleteBanner removes the record; the stored object is kept.
func DeleteBanner(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := db.WithContext(c.Request.Context()).Delete(&models.HeroBanner{}, c.Param("id"))
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete from database"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Banner not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Banner deleted"})
	}
}
