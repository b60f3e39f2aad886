package models

import "time"

// HeroBanner is a homepage slide. Any number can be shown.
type HeroBanner struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ImageURL  string    `gorm:"not null" json:"image_url"`
	Title     string    `json:"title"`
	LinkURL   string    `json:"link_url"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

// PromoBanner is a site-wide promotional strip; at most one is active.
type PromoBanner struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Subtitle  string    `json:"subtitle"`
	ImageURL  string    `json:"image_url"`
	LinkURL   string    `json:"link_url"`
	IsActive  bool      `gorm:"not null;default:false" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *PromoBanner) MarkActive() { p.IsActive = true }

// TrendingPromo highlights a product on the homepage; at most one is active.
type TrendingPromo struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	ProductID   *uint     `json:"product_id,omitempty"`
	IsActive    bool      `gorm:"not null;default:false" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (t *TrendingPromo) MarkActive() { t.IsActive = true }
