package orderControllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/junaidrashid-git/storefront-api/events"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrCartEmpty         = errors.New("cart is empty")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidStatus     = errors.New("invalid order status")
)

// -------- Request Structs --------

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// -------- Helpers --------

// Map string to OrderStatus
func mapOrderStatus(status string) (models.OrderStatus, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case string(models.OrderStatusPending):
		return models.OrderStatusPending, nil
	case string(models.OrderStatusConfirmed):
		return models.OrderStatusConfirmed, nil
	case string(models.OrderStatusReadyToShip):
		return models.OrderStatusReadyToShip, nil
	case string(models.OrderStatusShipped):
		return models.OrderStatusShipped, nil
	case string(models.OrderStatusDelivered):
		return models.OrderStatusDelivered, nil
	case string(models.OrderStatusReturned):
		return models.OrderStatusReturned, nil
	case string(models.OrderStatusCancelled):
		return models.OrderStatusCancelled, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Example: 20250908130500-<uuid4>
func generateOrderRef(now time.Time) string {
	return now.UTC().Format("20060102150405") + "-" + uuid.NewString()
}

func publish(ctx context.Context, pub events.Publisher, kind events.Kind, order *models.Order) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, events.NewOrderEvent(kind, order)); err != nil {
		log.Warn().Err(err).Uint("order_id", order.ID).Str("kind", string(kind)).Msg("order event not delivered")
	}
}

// -------- Core Logic --------

// PlaceOrder turns the user's cart into an order, snapshotting each line and
// taking stock for tracked products. The cart is emptied in the same
// transaction.
func PlaceOrder(ctx context.Context, db *gorm.DB, pub events.Publisher, userID string) (*models.Order, error) {
	var order models.Order
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cart models.Cart
		err := tx.Preload("Items", func(q *gorm.DB) *gorm.DB { return q.Order("id") }).
			Where("user_id = ?", userID).
			First(&cart).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartEmpty
		}
		if err != nil {
			return err
		}
		if len(cart.Items) == 0 {
			return ErrCartEmpty
		}

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(cart.Items))
		for _, item := range cart.Items {
			var product models.Product
			if err := tx.First(&product, item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: product %d is no longer available", ErrInsufficientStock, item.ProductID)
				}
				return err
			}

			if product.TrackInventory {
				// Conditional decrement; a concurrent buyer cannot drive stock negative.
				res := tx.Model(&models.Product{}).
					Where("id = ? AND stock >= ?", product.ID, item.Quantity).
					Update("stock", gorm.Expr("stock - ?", item.Quantity))
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return fmt.Errorf("%w for product: %s", ErrInsufficientStock, product.Name)
				}
			}

			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
			items = append(items, models.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Image:       product.Image,
				UnitPrice:   product.Price,
				Quantity:    item.Quantity,
				Color:       item.Color,
				Size:        item.Size,
			})
		}

		now := time.Now()
		order = models.Order{
			OrderRef:    generateOrderRef(now),
			UserID:      userID,
			Items:       items,
			TotalAmount: total,
			Status:      models.OrderStatusPending,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		return tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, pub, events.OrderPlaced, &order)
	return &order, nil
}

// UpdateStatus moves an order to status and announces the change.
func UpdateStatus(ctx context.Context, db *gorm.DB, pub events.Publisher, orderID string, status models.OrderStatus) (*models.Order, error) {
	var order models.Order
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", orderID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		order.Status = status
		return tx.Model(&order).Update("status", status).Error
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, pub, events.OrderStatusChanged, &order)
	return &order, nil
}

// -------- Handlers --------

// POST /user/orders
func PlaceOrderHandler(db *gorm.DB, pub events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := middleware.Session(c)
		order, err := PlaceOrder(c.Request.Context(), db, pub, sess.UserID)
		switch {
		case errors.Is(err, ErrCartEmpty):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case errors.Is(err, ErrInsufficientStock):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		case err != nil:
			log.Error().Err(err).Str("user_id", sess.UserID).Msg("place order failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Order placed successfully", "order": order})
	}
}

// GET /user/orders
func GetMyOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := middleware.Session(c)
		var orders []models.Order
		if err := db.WithContext(c.Request.Context()).
			Where("user_id = ?", sess.UserID).
			Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /user/orders/:order_id
// Accepts a numeric id or an order_ref; another user's order is reported as
// not found.
func GetMyOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := middleware.Session(c)
		findOrder(c, db.Where("user_id = ?", sess.UserID), c.Param("order_id"))
	}
}

// GET /admin/orders?status=pending
func GetAllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := db.WithContext(c.Request.Context()).Preload("Items").Order("created_at DESC")
		if s := c.Query("status"); s != "" {
			status, err := mapOrderStatus(s)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			q = q.Where("status = ?", status)
		}
		var orders []models.Order
		if err := q.Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /admin/users/:user_id/orders
func GetUserOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("user_id")
		var orders []models.Order
		if err := db.WithContext(c.Request.Context()).
			Where("user_id = ?", userID).
			Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /admin/orders/:order_id
func GetOrderByIDHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		findOrder(c, db, c.Param("order_id"))
	}
}

func findOrder(c *gin.Context, scoped *gorm.DB, id string) {
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_id is required"})
		return
	}
	q := scoped.WithContext(c.Request.Context()).Preload("Items")
	if n, err := strconv.ParseUint(id, 10, 64); err == nil {
		q = q.Where("id = ?", n)
	} else {
		q = q.Where("order_ref = ?", id)
	}
	var order models.Order
	err := q.First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrOrderNotFound.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}
	c.JSON(http.StatusOK, order)
}

// PUT /admin/orders/:order_id/status
func UpdateOrderStatusHandler(db *gorm.DB, pub events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status, err := mapOrderStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		order, err := UpdateStatus(c.Request.Context(), db, pub, c.Param("order_id"), status)
		switch {
		case errors.Is(err, ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order status"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Order status updated successfully", "order": order})
	}
}
