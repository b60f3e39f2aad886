package orderControllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/database"
	"github.com/junaidrashid-git/storefront-api/events"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recorder struct {
	mu     sync.Mutex
	events []events.OrderEvent
}

func (r *recorder) Publish(_ context.Context, evt events.OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func setup(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "orders.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, db.Create(&models.User{ID: "alice", Email: "alice@example.com", Role: models.RoleCustomer}).Error)
	return db
}

func fillCart(t *testing.T, db *gorm.DB, items ...models.CartItem) {
	t.Helper()
	cart := models.Cart{UserID: "alice"}
	require.NoError(t, db.Create(&cart).Error)
	for i := range items {
		items[i].CartID = cart.ID
		require.NoError(t, db.Create(&items[i]).Error)
	}
}

func TestPlaceOrder_SnapshotsLinesAndTakesStock(t *testing.T) {
	db := setup(t)
	shirt := models.Product{Name: "Shirt", Price: decimal.RequireFromString("19.99"), Image: "s.png", Stock: 5, TrackInventory: true}
	poster := models.Product{Name: "Poster", Price: decimal.RequireFromString("5.50"), TrackInventory: false}
	require.NoError(t, db.Create(&shirt).Error)
	require.NoError(t, db.Create(&poster).Error)
	fillCart(t, db,
		models.CartItem{ProductID: shirt.ID, Color: "red", Size: "M", Quantity: 2},
		models.CartItem{ProductID: poster.ID, Quantity: 3},
	)

	rec := &recorder{}
	order, err := PlaceOrder(context.Background(), db, rec, "alice")
	require.NoError(t, err)

	assert.True(t, decimal.RequireFromString("56.48").Equal(order.TotalAmount), order.TotalAmount.String())
	assert.Equal(t, models.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Shirt", order.Items[0].ProductName)
	assert.Equal(t, "red", order.Items[0].Color)
	assert.Equal(t, "M", order.Items[0].Size)

	var got models.Product
	require.NoError(t, db.First(&got, shirt.ID).Error)
	assert.Equal(t, 3, got.Stock)

	var left int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&left).Error)
	assert.Zero(t, left)

	require.Len(t, rec.events, 1)
	assert.Equal(t, events.OrderPlaced, rec.events[0].Kind)
	assert.Equal(t, order.OrderRef, rec.events[0].OrderRef)
}

func TestPlaceOrder_InsufficientStockRollsBack(t *testing.T) {
	db := setup(t)
	a := models.Product{Name: "A", Price: decimal.NewFromInt(1), Stock: 10, TrackInventory: true}
	b := models.Product{Name: "B", Price: decimal.NewFromInt(1), Stock: 1, TrackInventory: true}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)
	fillCart(t, db,
		models.CartItem{ProductID: a.ID, Quantity: 4},
		models.CartItem{ProductID: b.ID, Quantity: 2},
	)

	_, err := PlaceOrder(context.Background(), db, events.Nop{}, "alice")
	assert.ErrorIs(t, err, ErrInsufficientStock)

	var got models.Product
	require.NoError(t, db.First(&got, a.ID).Error)
	assert.Equal(t, 10, got.Stock)

	var orders, lines int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&models.CartItem{}).Count(&lines).Error)
	assert.Zero(t, orders)
	assert.Equal(t, int64(2), lines)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	db := setup(t)
	_, err := PlaceOrder(context.Background(), db, nil, "alice")
	assert.ErrorIs(t, err, ErrCartEmpty)

	fillCart(t, db)
	_, err = PlaceOrder(context.Background(), db, nil, "alice")
	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestMapOrderStatus(t *testing.T) {
	s, err := mapOrderStatus(" Shipped ")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, s)

	_, err = mapOrderStatus("lost")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func withSession(sess *auth.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("session", sess)
		c.Next()
	}
}

func TestUpdateOrderStatusHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setup(t)
	order := models.Order{OrderRef: "R1", UserID: "alice", TotalAmount: decimal.Zero}
	require.NoError(t, db.Create(&order).Error)

	rec := &recorder{}
	r := gin.New()
	r.PUT("/admin/orders/:order_id/status", UpdateOrderStatusHandler(db, rec))

	put := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := put("/admin/orders/1/status", `{"status":"shipped"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got models.Order
	require.NoError(t, db.First(&got, order.ID).Error)
	assert.Equal(t, models.OrderStatusShipped, got.Status)
	require.Len(t, rec.events, 1)
	assert.Equal(t, events.OrderStatusChanged, rec.events[0].Kind)

	assert.Equal(t, http.StatusBadRequest, put("/admin/orders/1/status", `{"status":"lost"}`).Code)
	assert.Equal(t, http.StatusNotFound, put("/admin/orders/99/status", `{"status":"shipped"}`).Code)
}

func TestGetMyOrderHandler_HidesOtherUsersOrders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setup(t)
	require.NoError(t, db.Create(&models.User{ID: "bob", Email: "bob@example.com"}).Error)
	order := models.Order{OrderRef: "REF-A", UserID: "alice", TotalAmount: decimal.NewFromInt(3)}
	require.NoError(t, db.Create(&order).Error)

	get := func(userID, path string) *httptest.ResponseRecorder {
		r := gin.New()
		r.GET("/user/orders/:order_id", withSession(&auth.Session{UserID: userID}), GetMyOrderHandler(db))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	w := get("alice", "/user/orders/REF-A")
	require.Equal(t, http.StatusOK, w.Code)
	var body models.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, order.ID, body.ID)

	assert.Equal(t, http.StatusNotFound, get("bob", "/user/orders/REF-A").Code)
	assert.Equal(t, http.StatusNotFound, get("bob", "/user/orders/1").Code)
}
