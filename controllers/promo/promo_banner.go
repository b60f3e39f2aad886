package promoControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/storage"
	"gorm.io/gorm"
)

type PromoBannerForm struct {
	Title    string `form:"title" binding:"required,max=120"`
	Subtitle string `form:"subtitle" binding:"max=255"`
	LinkURL  string `form:"link_url" binding:"omitempty,url"`
}

// CreatePromoBanner uploads the optional image and inserts the banner as the
// only active one.
func CreatePromoBanner(db *gorm.DB, up *storage.Uploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form PromoBannerForm
		if err := c.ShouldBind(&form); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		att, err := formAttachment(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		banner := models.PromoBanner{
			Title:    form.Title,
			Subtitle: form.Subtitle,
			LinkURL:  form.LinkURL,
		}
		err = up.CreateWithImage(c.Request.Context(), att, func(imageURL string) error {
			banner.ImageURL = imageURL
			return CreateAndActivate(c.Request.Context(), db, &banner)
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, banner)
	}
}

func ListActivePromoBanners(db *gorm.DB) gin.HandlerFunc {
	return listCollection[models.PromoBanner](db, true)
}

func ListPromoBanners(db *gorm.DB) gin.HandlerFunc {
	return listCollection[models.PromoBanner](db, false)
}

func ActivatePromoBanner(db *gorm.DB) gin.HandlerFunc {
	return activateHandler[models.PromoBanner](db)
}

func DeactivatePromoBanner(db *gorm.DB) gin.HandlerFunc {
	return deactivateHandler[models.PromoBanner](db)
}

func DeletePromoBanner(db *gorm.DB) gin.HandlerFunc {
	return deleteHandler[models.PromoBanner](db)
}
