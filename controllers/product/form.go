package productcontroller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/storage"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var errInvalidCategoryIDs = errors.New("invalid category_ids format")

// ProductForm is the multipart body shared by create and update. Pointer
// fields distinguish "absent" from the zero value on update.
type ProductForm struct {
	Name           string  `form:"name" binding:"omitempty,max=200"`
	Description    *string `form:"description"`
	Price          string  `form:"price"`
	CompareAtPrice string  `form:"compare_at_price"`
	Colors         *string `form:"colors"`
	Sizes          *string `form:"sizes"`
	Stock          *int    `form:"stock" binding:"omitempty,min=0"`
	TrackInventory *bool   `form:"track_inventory"`
	CategoryIDs    string  `form:"category_ids"`
}

// apply copies every field present in the form onto p.
func (f *ProductForm) apply(p *models.Product) error {
	if f.Name != "" {
		p.Name = strings.TrimSpace(f.Name)
	}
	if f.Description != nil {
		p.Description = *f.Description
	}
	if f.Price != "" {
		price, err := parsePrice(f.Price)
		if err != nil {
			return fmt.Errorf("invalid price: %w", err)
		}
		p.Price = price
	}
	if f.CompareAtPrice != "" {
		price, err := parsePrice(f.CompareAtPrice)
		if err != nil {
			return fmt.Errorf("invalid compare_at_price: %w", err)
		}
		p.CompareAtPrice = price
	}
	if f.Colors != nil {
		p.Colors = normalizeOptions(*f.Colors)
	}
	if f.Sizes != nil {
		p.Sizes = normalizeOptions(*f.Sizes)
	}
	if f.Stock != nil {
		p.Stock = *f.Stock
	}
	if f.TrackInventory != nil {
		p.TrackInventory = *f.TrackInventory
	}
	return nil
}

func parsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, errors.New("must not be negative")
	}
	return d.Round(2), nil
}

// normalizeOptions trims a comma separated option list and drops blanks.
func normalizeOptions(s string) string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, ",")
}

func parseCategoryIDs(s string) ([]uint, error) {
	var ids []uint
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		id, err := strconv.ParseUint(tok, 10, 64)
		if err != nil {
			return nil, errInvalidCategoryIDs
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func loadCategories(db *gorm.DB, ids []uint) ([]models.Category, error) {
	var categories []models.Category
	if len(ids) == 0 {
		return categories, nil
	}
	err := db.Where("id IN ?", ids).Find(&categories).Error
	return categories, err
}

// formAttachment reads the "image" part; missing is not an error.
func formAttachment(c *gin.Context) (*storage.Attachment, error) {
	fh, err := c.FormFile("image")
	if storage.MissingFile(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return storage.AttachmentFromForm(fh)
}

func respondWriteError(c *gin.Context, err error, what string) {
	if errors.Is(err, storage.ErrUploadFailure) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Image upload failed"})
		return
	}
	log.Error().Err(err).Str("path", c.FullPath()).Msg(what + " write failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save " + what})
}
