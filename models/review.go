package models

import "time"

// Review is one per user per product; a second submission edits the first.
type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_review_product_user" json:"product_id"`
	UserID    string    `gorm:"not null;uniqueIndex:idx_review_product_user" json:"user_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `gorm:"not null;check:rating BETWEEN 1 AND 5" json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
