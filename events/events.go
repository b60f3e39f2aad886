package events

import (
	"context"
	"errors"
	"time"

	"github.com/junaidrashid-git/storefront-api/models"
)

type Kind string

const (
	OrderPlaced        Kind = "order.placed"
	OrderStatusChanged Kind = "order.status_changed"
)

type OrderEvent struct {
	Kind     Kind               `json:"kind"`
	OrderID  uint               `json:"order_id"`
	OrderRef string             `json:"order_ref"`
	UserID   string             `json:"user_id"`
	Status   models.OrderStatus `json:"status"`
	At       time.Time          `json:"at"`
}

func NewOrderEvent(kind Kind, o *models.Order) OrderEvent {
	return OrderEvent{
		Kind:     kind,
		OrderID:  o.ID,
		OrderRef: o.OrderRef,
		UserID:   o.UserID,
		Status:   o.Status,
		At:       time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, evt OrderEvent) error
}

// Fanout publishes to every sink and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, evt OrderEvent) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Nop struct{}

func (Nop) Publish(context.Context, OrderEvent) error { return nil }
