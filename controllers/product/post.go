package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/storage"
	"gorm.io/gorm"
)

// CreateProduct creates a new product with its categories and image.
// Inventory is tracked unless track_inventory=false is sent.
func CreateProduct(db *gorm.DB, up *storage.Uploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form ProductForm
		if err := c.ShouldBind(&form); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if form.Name == "" || form.Price == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name and price are required"})
			return
		}

		product := models.Product{TrackInventory: true}
		if err := form.apply(&product); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ids, err := parseCategoryIDs(form.CategoryIDs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx := c.Request.Context()
		categories, err := loadCategories(db.WithContext(ctx), ids)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
			return
		}
		product.Categories = categories

		att, err := formAttachment(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if att == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Image is required"})
			return
		}

		err = up.CreateWithImage(ctx, att, func(imageURL string) error {
			product.Image = imageURL
			return db.WithContext(ctx).Create(&product).Error
		})
		if err != nil {
			respondWriteError(c, err, "product")
			return
		}

		c.JSON(http.StatusCreated, product)
	}
}
