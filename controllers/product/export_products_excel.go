package productcontroller

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

var errEmptySheet = errors.New("excel file is empty or missing header row")

// Sheet column positions, shared by export and import.
const (
	colID = iota
	colName
	colDescription
	colPrice
	colCompareAtPrice
	colColors
	colSizes
	colStock
	colTrackInventory
	colImage
	colCategoryIDs
	colCreatedAt
	colUpdatedAt
)

var sheetHeaders = []string{
	"ID", "Name", "Description", "Price", "CompareAtPrice",
	"Colors", "Sizes", "Stock", "TrackInventory", "Image",
	"CategoryIDs", "CreatedAt", "UpdatedAt",
}

// WriteProductsSheet writes every product as an .xlsx workbook to w.
func WriteProductsSheet(ctx context.Context, db *gorm.DB, w io.Writer) error {
	var products []models.Product
	if err := db.WithContext(ctx).Preload("Categories").Order("id").Find(&products).Error; err != nil {
		return err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return err
	}

	headerRow := sheet.AddRow()
	for _, h := range sheetHeaders {
		headerRow.AddCell().SetString(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(p.ID))
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Description)
		row.AddCell().SetString(p.Price.StringFixed(2))
		row.AddCell().SetString(p.CompareAtPrice.StringFixed(2))
		row.AddCell().SetString(p.Colors)
		row.AddCell().SetString(p.Sizes)
		row.AddCell().SetInt(p.Stock)
		row.AddCell().SetString(strconv.FormatBool(p.TrackInventory))
		row.AddCell().SetString(p.Image)

		var catIDs []string
		for _, cat := range p.Categories {
			catIDs = append(catIDs, strconv.Itoa(int(cat.ID)))
		}
		row.AddCell().SetString(strings.Join(catIDs, ","))

		row.AddCell().SetString(p.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetString(p.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	return file.Write(w)
}

func ExportProductsToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var buf bytes.Buffer
		if err := WriteProductsSheet(c.Request.Context(), db, &buf); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
			return
		}

		// Set response headers for download
		c.Header("Content-Disposition", "attachment; filename=products.xlsx")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	}
}
