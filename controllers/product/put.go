package productcontroller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/storage"
	"gorm.io/gorm"
)

// UpdateProduct updates an existing product by ID.
// Accepts the same fields as CreateProduct and an optional "image" file.
func UpdateProduct(db *gorm.DB, up *storage.Uploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
			return
		}
		ctx := c.Request.Context()
		tdb := db.WithContext(ctx)

		var product models.Product
		if err := tdb.Preload("Categories").First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve product"})
			return
		}

		var form ProductForm
		if err := c.ShouldBind(&form); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if err := form.apply(&product); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var categories []models.Category
		replaceCategories := form.CategoryIDs != ""
		if replaceCategories {
			ids, err := parseCategoryIDs(form.CategoryIDs)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if categories, err = loadCategories(tdb, ids); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
				return
			}
		}

		att, err := formAttachment(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		err = up.CreateWithImage(ctx, att, func(imageURL string) error {
			if imageURL != "" {
				product.Image = imageURL
			}
			return tdb.Transaction(func(tx *gorm.DB) error {
				if replaceCategories {
					if err := tx.Model(&product).Association("Categories").Replace(categories); err != nil {
						return err
					}
				}
				return tx.Omit("Categories").Save(&product).Error
			})
		})
		if err != nil {
			respondWriteError(c, err, "product")
			return
		}

		c.JSON(http.StatusOK, product)
	}
}
