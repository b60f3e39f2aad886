package productcontroller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var sortColumns = map[string]string{
	"created_at": "products.created_at",
	"price":      "products.price",
	"name":       "products.name",
	"stock":      "products.stock",
}

const maxPageSize = 100

// GetProducts lists the catalog with search, price, category filters and paging.
func GetProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		search := strings.TrimSpace(c.Query("search"))
		sortBy, ok := sortColumns[c.DefaultQuery("sort_by", "created_at")]
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sort_by"})
			return
		}
		desc := strings.ToLower(c.DefaultQuery("order", "desc")) != "asc"

		query := db.WithContext(c.Request.Context()).Model(&models.Product{})

		if search != "" {
			like := "%" + strings.ToLower(search) + "%"
			query = query.Where("LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ?", like, like)
		}

		if s := c.Query("min_price"); s != "" {
			mp, err := decimal.NewFromString(s)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid min_price"})
				return
			}
			query = query.Where("products.price >= ?", mp)
		}
		if s := c.Query("max_price"); s != "" {
			mp, err := decimal.NewFromString(s)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid max_price"})
				return
			}
			query = query.Where("products.price <= ?", mp)
		}

		if s := c.Query("category_id"); s != "" {
			cid, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category_id"})
				return
			}
			query = query.
				Joins("JOIN product_categories pc ON pc.product_id = products.id").
				Where("pc.category_id = ?", uint(cid))
		}

		if c.Query("in_stock") == "true" {
			query = query.Where("products.track_inventory = ? OR products.stock > 0", false)
		}

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		size, _ := strconv.Atoi(c.DefaultQuery("page_size", "24"))
		if page < 1 {
			page = 1
		}
		if size < 1 || size > maxPageSize {
			size = 24
		}

		query = query.Session(&gorm.Session{})
		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count products"})
			return
		}

		var products []models.Product
		if err := query.
			Preload("Categories").
			Order(clause.OrderByColumn{Column: clause.Column{Name: sortBy, Raw: true}, Desc: desc}).
			Offset((page - 1) * size).
			Limit(size).
			Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"items":     products,
			"total":     total,
			"page":      page,
			"page_size": size,
		})
	}
}
