package promoControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/storage"
	"gorm.io/gorm"
)

type TrendingPromoForm struct {
	Title       string `form:"title" binding:"required,max=120"`
	Description string `form:"description" binding:"max=1000"`
	ProductID   *uint  `form:"product_id" binding:"omitempty,min=1"`
}

func CreateTrendingPromo(db *gorm.DB, up *storage.Uploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form TrendingPromoForm
		if err := c.ShouldBind(&form); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if form.ProductID != nil {
			var product models.Product
			if err := db.WithContext(c.Request.Context()).First(&product, *form.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					c.JSON(http.StatusBadRequest, gin.H{"error": "Product does not exist"})
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate product"})
				return
			}
		}
		att, err := formAttachment(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		promo := models.TrendingPromo{
			Title:       form.Title,
			Description: form.Description,
			ProductID:   form.ProductID,
		}
		err = up.CreateWithImage(c.Request.Context(), att, func(imageURL string) error {
			promo.ImageURL = imageURL
			return CreateAndActivate(c.Request.Context(), db, &promo)
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, promo)
	}
}

func ListActiveTrendingPromos(db *gorm.DB) gin.HandlerFunc {
	return listCollection[models.TrendingPromo](db, true)
}

func ListTrendingPromos(db *gorm.DB) gin.HandlerFunc {
	return listCollection[models.TrendingPromo](db, false)
}

func ActivateTrendingPromo(db *gorm.DB) gin.HandlerFunc {
	return activateHandler[models.TrendingPromo](db)
}

func DeactivateTrendingPromo(db *gorm.DB) gin.HandlerFunc {
	return deactivateHandler[models.TrendingPromo](db)
}

func DeleteTrendingPromo(db *gorm.DB) gin.HandlerFunc {
	return deleteHandler[models.TrendingPromo](db)
}
