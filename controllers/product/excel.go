package productcontroller

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/rs/zerolog/log"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

// ImportStats counts what an import did with each data row.
type ImportStats struct {
	Created int `json:"created_count"`
	Updated int `json:"updated_count"`
	Skipped int `json:"skipped_count"`
}

// ImportProducts upserts products from the first sheet, using the column
// layout written by WriteProductsSheet. A row with a known ID updates that
// product; any other row is inserted.
func ImportProducts(ctx context.Context, db *gorm.DB, file *xlsx.File) (ImportStats, error) {
	var stats ImportStats
	if len(file.Sheets) == 0 || file.Sheets[0].MaxRow < 2 {
		return stats, errEmptySheet
	}
	db = db.WithContext(ctx)
	sheet := file.Sheets[0]

	for i := 1; i < sheet.MaxRow; i++ {
		row := sheet.Rows[i]
		if row == nil || len(row.Cells) < 2 {
			stats.Skipped++
			continue
		}
		get := func(index int) string {
			if index < len(row.Cells) {
				return strings.TrimSpace(row.Cells[index].String())
			}
			return ""
		}

		product, ok := productFromRow(get)
		if !ok {
			stats.Skipped++
			continue
		}
		ids, err := parseCategoryIDs(get(colCategoryIDs))
		if err != nil {
			stats.Skipped++
			continue
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			categories, err := loadCategories(tx, ids)
			if err != nil {
				return err
			}

			if id, convErr := strconv.ParseUint(get(colID), 10, 64); convErr == nil {
				var existing models.Product
				if tx.First(&existing, id).Error == nil {
					product.ID = existing.ID
					product.CreatedAt = existing.CreatedAt
					if err := tx.Omit("Categories").Save(&product).Error; err != nil {
						return err
					}
					if err := tx.Model(&product).Association("Categories").Replace(categories); err != nil {
						return err
					}
					stats.Updated++
					return nil
				}
			}

			product.Categories = categories
			if err := tx.Create(&product).Error; err != nil {
				return err
			}
			stats.Created++
			return nil
		})
		if err != nil {
			log.Warn().Err(err).Int("row", i+1).Msg("product import row skipped")
			stats.Skipped++
		}
	}
	return stats, nil
}

func productFromRow(get func(int) string) (models.Product, bool) {
	p := models.Product{
		Name:        get(colName),
		Description: get(colDescription),
		Colors:      normalizeOptions(get(colColors)),
		Sizes:       normalizeOptions(get(colSizes)),
		Image:       get(colImage),
	}
	if p.Name == "" {
		return p, false
	}
	price, err := parsePrice(get(colPrice))
	if err != nil {
		return p, false
	}
	p.Price = price
	if s := get(colCompareAtPrice); s != "" {
		if p.CompareAtPrice, err = parsePrice(s); err != nil {
			return p, false
		}
	}
	if s := get(colStock); s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f < 0 {
			return p, false
		}
		p.Stock = int(f)
	}
	p.TrackInventory = true
	if s := get(colTrackInventory); s != "" {
		if b, err := strconv.ParseBool(strings.ToLower(s)); err == nil {
			p.TrackInventory = b
		}
	}
	return p, true
}

func ImportProductsFromExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		excelFileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is required"})
			return
		}

		file, err := excelFileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open Excel file"})
			return
		}
		defer file.Close()

		xlFile, err := xlsx.OpenReaderAt(file, excelFileHeader.Size)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse Excel file"})
			return
		}

		stats, err := ImportProducts(c.Request.Context(), db, xlFile)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":       "Import completed",
			"created_count": stats.Created,
			"updated_count": stats.Updated,
			"skipped_count": stats.Skipped,
		})
	}
}
