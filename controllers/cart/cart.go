package cartControllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	errInsufficientStock = errors.New("insufficient stock")
	errProductNotFound   = errors.New("product does not exist")
	errInvalidOption     = errors.New("color or size not offered for this product")
	errCartItemNotFound  = errors.New("cart item not found")
)

// lineKey is the composite identity of a cart line.
type lineKey struct {
	CartID    uint
	ProductID uint
	Color     string
	Size      string
}

type CartItemInput struct {
	ProductID uint   `json:"product_id" binding:"required,min=1"`
	Quantity  int    `json:"quantity" binding:"required,min=1,max=999"`
	Color     string `json:"color" binding:"max=40"`
	Size      string `json:"size" binding:"max=40"`
}

type QuantityInput struct {
	Quantity int `json:"quantity" binding:"required,min=1,max=999"`
}

// GetOrCreateCart returns the user's cart, creating it on first use. Safe to
// race: the unique index on user_id turns a losing insert into a no-op.
func GetOrCreateCart(db *gorm.DB, userID string) (*models.Cart, error) {
	var cart models.Cart
	if err := db.Where("user_id = ?", userID).Limit(1).Find(&cart).Error; err != nil {
		return nil, err
	}
	if cart.ID != 0 {
		return &cart, nil
	}

	fresh := models.Cart{UserID: userID}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&fresh).Error; err != nil {
		return nil, err
	}

	var out models.Cart
	if err := db.Where("user_id = ?", userID).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// mergeLine adds qty to the line identified by key, inserting it when absent.
func mergeLine(tx *gorm.DB, key lineKey, qty int) error {
	var item models.CartItem
	err := tx.Where("cart_id = ? AND product_id = ? AND color = ? AND size = ?",
		key.CartID, key.ProductID, key.Color, key.Size).
		First(&item).Error
	if err == nil {
		return tx.Model(&item).Update("quantity", gorm.Expr("quantity + ?", qty)).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	item = models.CartItem{
		CartID:    key.CartID,
		ProductID: key.ProductID,
		Color:     key.Color,
		Size:      key.Size,
		Quantity:  qty,
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}, {Name: "color"}, {Name: "size"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
			"updated_at": time.Now(),
		}),
	}).Create(&item).Error
}

func offers(options, value string) bool {
	if strings.TrimSpace(options) == "" || value == "" {
		return true
	}
	for _, opt := range strings.Split(options, ",") {
		if strings.EqualFold(strings.TrimSpace(opt), value) {
			return true
		}
	}
	return false
}

func loadCart(db *gorm.DB, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := db.Preload("Items", func(q *gorm.DB) *gorm.DB { return q.Order("id") }).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}
	return &cart, err
}

// GET /user/cart
func GetUserCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := middleware.Session(c)
		cart, err := loadCart(db.WithContext(c.Request.Context()), sess.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// POST /user/cart
// Adds to an existing line with the same product, color and size.
func AddCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := middleware.Session(c)

		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		input.Color = strings.TrimSpace(input.Color)
		input.Size = strings.TrimSpace(input.Size)

		tdb := db.WithContext(c.Request.Context())
		cart, err := GetOrCreateCart(tdb, sess.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve cart"})
			return
		}

		err = tdb.Transaction(func(tx *gorm.DB) error {
			var product models.Product
			if err := tx.First(&product, input.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errProductNotFound
				}
				return err
			}
			if !offers(product.Colors, input.Color) || !offers(product.Sizes, input.Size) {
				return errInvalidOption
			}

			var existing int
			if err := tx.Model(&models.CartItem{}).
				Select("COALESCE(SUM(quantity), 0)").
				Where("cart_id = ? AND product_id = ?", cart.ID, input.ProductID).
				Scan(&existing).Error; err != nil {
				return err
			}
			if !product.HasStockFor(existing + input.Quantity) {
				return errInsufficientStock
			}

			return mergeLine(tx, lineKey{
				CartID:    cart.ID,
				ProductID: input.ProductID,
				Color:     input.Color,
				Size:      input.Size,
			}, input.Quantity)
		})
		switch {
		case errors.Is(err, errProductNotFound), errors.Is(err, errInvalidOption):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case errors.Is(err, errInsufficientStock):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		case err != nil:
			log.Error().Err(err).Str("user_id", sess.UserID).Msg("add to cart failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item to cart"})
			return
		}

		updated, err := loadCart(tdb, sess.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

// PUT /user/cart/items/:item_id
func UpdateCartItemQuantity(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := middleware.Session(c)
		itemID, err := strconv.ParseUint(c.Param("item_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
			return
		}
		var input QuantityInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		var item models.CartItem
		err = db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
			if err := tx.Joins("JOIN carts ON carts.id = cart_items.cart_id").
				Where("cart_items.id = ? AND carts.user_id = ?", itemID, sess.UserID).
				Preload("Product").
				First(&item).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errCartItemNotFound
				}
				return err
			}

			// Other colour/size lines of the same product share its stock.
			var others int
			if err := tx.Model(&models.CartItem{}).
				Select("COALESCE(SUM(quantity), 0)").
				Where("cart_id = ? AND product_id = ? AND id <> ?", item.CartID, item.ProductID, item.ID).
				Scan(&others).Error; err != nil {
				return err
			}
			if item.Product != nil && !item.Product.HasStockFor(others+input.Quantity) {
				return errInsufficientStock
			}

			if err := tx.Model(&models.CartItem{}).
				Where("id = ?", item.ID).
				Update("quantity", input.Quantity).Error; err != nil {
				return err
			}
			item.Quantity = input.Quantity
			return nil
		})
		switch {
		case errors.Is(err, errCartItemNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
			return
		case errors.Is(err, errInsufficientStock):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		case err != nil:
			log.Error().Err(err).Str("user_id", sess.UserID).Uint64("item_id", itemID).Msg("update cart item failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart item"})
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// DELETE /user/cart/items/:item_id
func DeleteCartItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := middleware.Session(c)
		itemID := c.Param("item_id")

		tdb := db.WithContext(c.Request.Context())
		result := tdb.Where("id = ? AND cart_id IN (?)", itemID,
			tdb.Model(&models.Cart{}).Select("id").Where("user_id = ?", sess.UserID)).
			Delete(&models.CartItem{})
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart item deleted"})
	}
}

// DELETE /user/cart
func ClearUserCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := middleware.Session(c)
		tdb := db.WithContext(c.Request.Context())
		if err := tdb.Where("cart_id IN (?)",
			tdb.Model(&models.Cart{}).Select("id").Where("user_id = ?", sess.UserID)).
			Delete(&models.CartItem{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}

// GET /admin/user-cart/:user_id
func GetAdminUserCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("user_id")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}
		cart, err := loadCart(db.WithContext(c.Request.Context()), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// POST /user/orders/:order_id/reorder
func ReorderHandler(rec *Reconciler) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := strconv.ParseUint(c.Param("order_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
			return
		}

		result, err := rec.ReorderIntoCart(c.Request.Context(), middleware.Session(c), uint(orderID))
		switch {
		case errors.Is(err, auth.ErrAuthenticationRequired):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		case errors.Is(err, ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		case err != nil:
			log.Error().Err(err).Uint64("order_id", orderID).Msg("reorder failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reorder"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":  "Items added to cart",
			"redirect": "/user/cart",
			"result":   result,
		})
	}
}
