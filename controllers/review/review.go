package reviewControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewInput struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=2000"`
}

type ReviewList struct {
	Reviews       []models.Review `json:"reviews"`
	AverageRating float64         `json:"average_rating"`
	Count         int             `json:"count"`
}

func productIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return 0, false
	}
	return uint(id), true
}

// GET /products/:id/reviews
func ListReviews(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, ok := productIDParam(c)
		if !ok {
			return
		}
		out := ReviewList{Reviews: []models.Review{}}
		if err := db.WithContext(c.Request.Context()).
			Where("product_id = ?", productID).
			Order("created_at DESC").
			Find(&out.Reviews).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
			return
		}
		out.Count = len(out.Reviews)
		if out.Count > 0 {
			sum := 0
			for _, r := range out.Reviews {
				sum += r.Rating
			}
			out.AverageRating = float64(sum) / float64(out.Count)
		}
		c.JSON(http.StatusOK, out)
	}
}

// PUT /products/:id/reviews
// One review per user per product; submitting again replaces the earlier one.
func UpsertReview(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := middleware.Session(c)
		productID, ok := productIDParam(c)
		if !ok {
			return
		}
		var input ReviewInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		tdb := db.WithContext(c.Request.Context())

		var product models.Product
		if err := tdb.Select("id").First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
			return
		}

		var user models.User
		if err := tdb.Select("id", "name").First(&user, "id = ?", sess.UserID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		review := models.Review{
			ProductID: productID,
			UserID:    sess.UserID,
			UserName:  user.Name,
			Rating:    input.Rating,
			Comment:   input.Comment,
		}
		if err := tdb.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "user_name", "updated_at"}),
		}).Create(&review).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save review"})
			return
		}

		var saved models.Review
		if err := tdb.Where("product_id = ? AND user_id = ?", productID, sess.UserID).First(&saved).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch review"})
			return
		}
		c.JSON(http.StatusOK, saved)
	}
}

// DELETE /products/:id/reviews/:review_id
// Authors delete their own review; admins delete any.
func DeleteReview(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := middleware.Session(c)
		productID, ok := productIDParam(c)
		if !ok {
			return
		}
		q := db.WithContext(c.Request.Context()).
			Where("id = ? AND product_id = ?", c.Param("review_id"), productID)
		if !sess.IsAdmin() {
			q = q.Where("user_id = ?", sess.UserID)
		}
		res := q.Delete(&models.Review{})
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete review"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
	}
}
