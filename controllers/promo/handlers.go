package promoControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/storage"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return uint(id), true
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, storage.ErrUploadFailure):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Image upload failed"})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("promotion write failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save promotion"})
	}
}

// formAttachment reads the optional "image" part.
func formAttachment(c *gin.Context) (*storage.Attachment, error) {
	fh, err := c.FormFile("image")
	if storage.MissingFile(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return storage.AttachmentFromForm(fh)
}

// listCollection returns every row, or only the active one when the caller
// is the public storefront.
func listCollection[T any](db *gorm.DB, activeOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var rows []T
		q := db.WithContext(c.Request.Context()).Order("created_at DESC")
		if activeOnly {
			q = q.Where("is_active = ?", true)
		}
		if err := q.Find(&rows).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch promotions"})
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}

func activateHandler[T any](db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		if err := Activate[T](c.Request.Context(), db, id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Promotion activated"})
	}
}

func deactivateHandler[T any](db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		if err := Deactivate[T](c.Request.Context(), db, id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Promotion deactivated"})
	}
}

func deleteHandler[T any](db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		res := db.WithContext(c.Request.Context()).Delete(new(T), id)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete promotion"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": ErrRecordNotFound.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Promotion deleted"})
	}
}
