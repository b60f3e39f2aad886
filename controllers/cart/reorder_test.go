package cartControllers

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/database"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type ReorderTestSuite struct {
	suite.Suite
	db  *gorm.DB
	rec *Reconciler
	ctx context.Context
}

func TestReorderTestSuite(t *testing.T) {
	suite.Run(t, new(ReorderTestSuite))
}

func (s *ReorderTestSuite) SetupTest() {
	db, err := database.OpenSQLite(filepath.Join(s.T().TempDir(), "cart.db"))
	s.Require().NoError(err)
	s.Require().NoError(database.Migrate(db))
	s.db = db
	s.rec = NewReconciler(db, nil)
	s.ctx = context.Background()

	for _, id := range []string{"alice", "bob"} {
		s.Require().NoError(db.Create(&models.User{ID: id, Email: id + "@example.com", Role: models.RoleCustomer}).Error)
	}
}

func (s *ReorderTestSuite) product(name string, stock int, tracked bool) *models.Product {
	p := &models.Product{Name: name, Price: decimal.NewFromInt(10), Stock: stock, TrackInventory: tracked}
	s.Require().NoError(s.db.Create(p).Error)
	return p
}

func (s *ReorderTestSuite) order(userID string, items ...models.OrderItem) *models.Order {
	o := &models.Order{
		OrderRef:    "ORD-" + uuid.NewString(),
		UserID:      userID,
		Items:       items,
		TotalAmount: decimal.NewFromInt(0),
		Status:      models.OrderStatusDelivered,
	}
	s.Require().NoError(s.db.Create(o).Error)
	return o
}

func line(productID uint, qty int, color, size string) models.OrderItem {
	return models.OrderItem{ProductID: productID, Quantity: qty, Color: color, Size: size, UnitPrice: decimal.NewFromInt(10)}
}

func (s *ReorderTestSuite) cartItems(userID string) []models.CartItem {
	var items []models.CartItem
	s.Require().NoError(s.db.
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.user_id = ?", userID).
		Order("cart_items.id").
		Find(&items).Error)
	return items
}

func session(userID string) *auth.Session {
	return &auth.Session{UserID: userID, Role: models.RoleCustomer}
}

func (s *ReorderTestSuite) TestMergesInStockLinesAndSkipsOutOfStock() {
	t := s.T()
	a := s.product("A", 5, true)
	b := s.product("B", 0, true)
	o := s.order("alice", line(a.ID, 2, "red", ""), line(b.ID, 1, "", ""))

	res, err := s.rec.ReorderIntoCart(s.ctx, session("alice"), o.ID)
	require.NoError(t, err)

	items := s.cartItems("alice")
	require.Len(t, items, 1)
	assert.Equal(t, a.ID, items[0].ProductID)
	assert.Equal(t, "red", items[0].Color)
	assert.Equal(t, 2, items[0].Quantity)

	require.Len(t, res.Merged, 1)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, b.ID, res.Skipped[0].ProductID)
	assert.Equal(t, SkipOutOfStock, res.Skipped[0].Reason)
	assert.Empty(t, res.Failed)
}

func (s *ReorderTestSuite) TestReorderTwiceDoublesQuantities() {
	t := s.T()
	a := s.product("A", 10, true)
	o := s.order("alice", line(a.ID, 3, "blue", "M"))

	_, err := s.rec.ReorderIntoCart(s.ctx, session("alice"), o.ID)
	require.NoError(t, err)
	_, err = s.rec.ReorderIntoCart(s.ctx, session("alice"), o.ID)
	require.NoError(t, err)

	items := s.cartItems("alice")
	require.Len(t, items, 1)
	assert.Equal(t, 6, items[0].Quantity)
}

func (s *ReorderTestSuite) TestMergesIntoExistingLineAndKeepsVariantsApart() {
	t := s.T()
	a := s.product("A", 10, true)
	cart, err := GetOrCreateCart(s.db, "alice")
	require.NoError(t, err)
	require.NoError(t, s.db.Create(&models.CartItem{CartID: cart.ID, ProductID: a.ID, Color: "red", Quantity: 1}).Error)

	o := s.order("alice", line(a.ID, 2, "red", ""), line(a.ID, 1, "green", ""))
	_, err = s.rec.ReorderIntoCart(s.ctx, session("alice"), o.ID)
	require.NoError(t, err)

	items := s.cartItems("alice")
	require.Len(t, items, 2)
	assert.Equal(t, "red", items[0].Color)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, "green", items[1].Color)
	assert.Equal(t, 1, items[1].Quantity)
}

func (s *ReorderTestSuite) TestStockCheckUsesLineQuantity() {
	t := s.T()
	a := s.product("A", 2, true)
	o := s.order("alice", line(a.ID, 3, "", ""))

	res, err := s.rec.ReorderIntoCart(s.ctx, session("alice"), o.ID)
	require.NoError(t, err)
	assert.Empty(t, s.cartItems("alice"))
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, SkipOutOfStock, res.Skipped[0].Reason)
}

func (s *ReorderTestSuite) TestUntrackedProductIgnoresStock() {
	t := s.T()
	a := s.product("A", 0, false)
	o := s.order("alice", line(a.ID, 4, "", ""))

	_, err := s.rec.ReorderIntoCart(s.ctx, session("alice"), o.ID)
	require.NoError(t, err)

	items := s.cartItems("alice")
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Quantity)
}

func (s *ReorderTestSuite) TestDeletedProductIsSkippedAsUnavailable() {
	t := s.T()
	a := s.product("A", 5, true)
	gone := s.product("gone", 5, true)
	o := s.order("alice", line(gone.ID, 1, "", ""), line(a.ID, 1, "", ""))
	require.NoError(t, s.db.Delete(gone).Error)

	res, err := s.rec.ReorderIntoCart(s.ctx, session("alice"), o.ID)
	require.NoError(t, err)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, SkipUnavailable, res.Skipped[0].Reason)
	assert.Len(t, s.cartItems("alice"), 1)
}

func (s *ReorderTestSuite) TestForeignOrderIsNotFoundAndCartUntouched() {
	t := s.T()
	a := s.product("A", 5, true)
	o := s.order("alice", line(a.ID, 1, "", ""))

	_, err := s.rec.ReorderIntoCart(s.ctx, session("bob"), o.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	var carts int64
	require.NoError(t, s.db.Model(&models.Cart{}).Count(&carts).Error)
	assert.Zero(t, carts)
}

func (s *ReorderTestSuite) TestUnknownOrder() {
	_, err := s.rec.ReorderIntoCart(s.ctx, session("alice"), 4242)
	assert.ErrorIs(s.T(), err, ErrOrderNotFound)
}

func (s *ReorderTestSuite) TestRequiresSession() {
	t := s.T()
	_, err := s.rec.ReorderIntoCart(s.ctx, nil, 1)
	assert.ErrorIs(t, err, auth.ErrAuthenticationRequired)
	_, err = s.rec.ReorderIntoCart(s.ctx, &auth.Session{}, 1)
	assert.ErrorIs(t, err, auth.ErrAuthenticationRequired)
}

func (s *ReorderTestSuite) TestEmptyOrderDoesNotCreateCart() {
	t := s.T()
	o := s.order("alice")

	res, err := s.rec.ReorderIntoCart(s.ctx, session("alice"), o.ID)
	require.NoError(t, err)
	assert.Empty(t, res.Merged)

	var carts int64
	require.NoError(t, s.db.Model(&models.Cart{}).Count(&carts).Error)
	assert.Zero(t, carts)
}

func (s *ReorderTestSuite) TestConcurrentReordersAccumulate() {
	t := s.T()
	a := s.product("A", 100, true)
	o := s.order("alice", line(a.ID, 2, "", "L"))

	const n = 5
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.rec.ReorderIntoCart(s.ctx, session("alice"), o.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	items := s.cartItems("alice")
	require.Len(t, items, 1)
	assert.Equal(t, 2*n, items[0].Quantity)
}
