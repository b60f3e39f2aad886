package cartControllers

import (
	"context"
	"errors"
	"fmt"

	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/locker"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var ErrOrderNotFound = errors.New("order not found")

const (
	SkipOutOfStock  = "out_of_stock"
	SkipUnavailable = "unavailable"
)

type LineOutcome struct {
	ProductID uint   `json:"product_id"`
	Color     string `json:"color,omitempty"`
	Size      string `json:"size,omitempty"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason,omitempty"`
}

// ReorderResult lists what happened to each order line. Skipped lines are not
// errors.
type ReorderResult struct {
	Merged  []LineOutcome `json:"merged"`
	Skipped []LineOutcome `json:"skipped"`
	Failed  []LineOutcome `json:"failed"`
}

// Reconciler copies past order lines back into a user's live cart.
type Reconciler struct {
	db    *gorm.DB
	locks locker.Locker
}

func NewReconciler(db *gorm.DB, locks locker.Locker) *Reconciler {
	if locks == nil {
		locks = locker.NewLocal()
	}
	return &Reconciler{db: db, locks: locks}
}

// ReorderIntoCart merges the lines of one of the caller's orders into the
// caller's cart. Lines are applied one at a time, each in its own
// transaction: a line that fails is recorded and later lines still run, and
// lines merged earlier stay merged.
func (r *Reconciler) ReorderIntoCart(ctx context.Context, sess *auth.Session, orderID uint) (*ReorderResult, error) {
	if sess == nil || sess.UserID == "" {
		return nil, auth.ErrAuthenticationRequired
	}
	db := r.db.WithContext(ctx)

	var order models.Order
	err := db.Preload("Items").
		Where("id = ? AND user_id = ?", orderID, sess.UserID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}

	result := &ReorderResult{}
	if len(order.Items) == 0 {
		return result, nil
	}

	unlock, err := r.locks.Lock(ctx, cartLockKey(sess.UserID))
	if err != nil {
		return nil, fmt.Errorf("lock cart: %w", err)
	}
	defer unlock()

	cart, err := GetOrCreateCart(db, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve cart: %w", err)
	}

	for _, line := range order.Items {
		outcome := LineOutcome{
			ProductID: line.ProductID,
			Color:     line.Color,
			Size:      line.Size,
			Quantity:  line.Quantity,
		}

		reason, err := reorderLine(db, cart.ID, line)
		switch {
		case err != nil:
			log.Error().Err(err).
				Str("user_id", sess.UserID).
				Uint("order_id", order.ID).
				Uint("product_id", line.ProductID).
				Msg("reorder line failed")
			outcome.Reason = err.Error()
			result.Failed = append(result.Failed, outcome)
		case reason != "":
			log.Info().
				Str("user_id", sess.UserID).
				Uint("order_id", order.ID).
				Uint("product_id", line.ProductID).
				Str("reason", reason).
				Msg("reorder line skipped")
			outcome.Reason = reason
			result.Skipped = append(result.Skipped, outcome)
		default:
			result.Merged = append(result.Merged, outcome)
		}
	}
	return result, nil
}

// reorderLine returns a skip reason, or merges the line and returns "".
func reorderLine(db *gorm.DB, cartID uint, line models.OrderItem) (string, error) {
	var reason string
	err := db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, line.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				reason = SkipUnavailable
				return nil
			}
			return err
		}
		if !product.HasStockFor(line.Quantity) {
			reason = SkipOutOfStock
			return nil
		}
		return mergeLine(tx, lineKey{
			CartID:    cartID,
			ProductID: line.ProductID,
			Color:     line.Color,
			Size:      line.Size,
		}, line.Quantity)
	})
	return reason, err
}

func cartLockKey(userID string) string {
	return "cart:" + userID
}
