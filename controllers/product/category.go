package productcontroller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/storage"
	"gorm.io/gorm"
)

type CategoryForm struct {
	Name string `form:"name" binding:"omitempty,max=80"`
}

func CreateCategory(db *gorm.DB, up *storage.Uploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form CategoryForm
		if err := c.ShouldBind(&form); err != nil || strings.TrimSpace(form.Name) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
			return
		}
		att, err := formAttachment(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		category := models.Category{Name: strings.TrimSpace(form.Name)}
		err = up.CreateWithImage(ctx, att, func(imageURL string) error {
			category.Image = imageURL
			return db.WithContext(ctx).Create(&category).Error
		})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "Category already exists"})
			return
		}
		if err != nil {
			respondWriteError(c, err, "category")
			return
		}

		c.JSON(http.StatusCreated, category)
	}
}

func GetAllCategoriesWithProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []models.Category
		if err := db.WithContext(c.Request.Context()).Preload("Products").Order("name").Find(&categories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories with products"})
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

func GetCategoryByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var category models.Category
		if err := db.WithContext(c.Request.Context()).Preload("Products").First(&category, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

// GetAllCategories returns all categories.
func GetAllCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories := []models.Category{}
		if err := db.WithContext(c.Request.Context()).Order("name").Find(&categories).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

func UpdateCategory(db *gorm.DB, up *storage.Uploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var category models.Category
		if err := db.WithContext(ctx).First(&category, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}

		var form CategoryForm
		if err := c.ShouldBind(&form); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if v := strings.TrimSpace(form.Name); v != "" {
			category.Name = v
		}
		att, err := formAttachment(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		err = up.CreateWithImage(ctx, att, func(imageURL string) error {
			if imageURL != "" {
				category.Image = imageURL
			}
			return db.WithContext(ctx).Omit("Products").Save(&category).Error
		})
		if err != nil {
			respondWriteError(c, err, "category")
			return
		}

		c.JSON(http.StatusOK, category)
	}
}

func DeleteCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tdb := db.WithContext(c.Request.Context())
		var cat models.Category
		if err := tdb.First(&cat, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}

		err := tdb.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&cat).Association("Products").Clear(); err != nil {
				return err
			}
			return tx.Delete(&cat).Error
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
	}
}
