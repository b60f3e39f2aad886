package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID             uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string          `gorm:"not null" json:"name"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	CompareAtPrice decimal.Decimal `gorm:"type:decimal(12,2)" json:"compare_at_price"`
	Image          string          `json:"image"`
	Colors         string          `json:"colors"` // comma separated, empty means any
	Sizes          string          `json:"sizes"`
	Stock          int             `gorm:"not null;default:0" json:"stock"`
	TrackInventory bool            `gorm:"not null" json:"track_inventory"`
	Categories     []Category      `gorm:"many2many:product_categories;" json:"categories,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

// HasStockFor reports whether qty units can be taken. Untracked products are
// always available.
func (p *Product) HasStockFor(qty int) bool {
	return !p.TrackInventory || p.Stock >= qty
}
