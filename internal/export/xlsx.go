package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"

	"github.com/Skotchmaster/marketplace/internal/models"
)

const (
	OrdersSheet = "Sheet1"
	ItemsSheet  = "Items"
)

var (
	orderHeaders = []string{"reference", "order_id", "user_id", "status", "items", "total_price", "created_at"}
	itemHeaders  = []string{"reference", "article_id", "title", "price", "quantity", "image"}
)

// cell returns the A1-style axis for a 0-based column and 1-based row.
func cell(col, row int) string {
	name := ""
	for col >= 0 {
		name = string(rune('A'+col%26)) + name
		col = col/26 - 1
	}
	return name + strconv.Itoa(row)
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) {
	for col, v := range values {
		f.SetCellValue(sheet, cell(col, row), v)
	}
}

func itemSummary(o models.Order) string {
	parts := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		parts = append(parts, fmt.Sprintf("%s x%d", it.Title, it.Quantity))
	}
	return strings.Join(parts, "; ")
}

// OrdersXLSX writes a workbook with one row per order on the first sheet and
// one row per line item on the Items sheet.
func OrdersXLSX(w io.Writer, orders []models.Order) error {
	f := excelize.NewFile()
	f.NewSheet(ItemsSheet)

	for i, h := range orderHeaders {
		f.SetCellValue(OrdersSheet, cell(i, 1), h)
	}
	for i, h := range itemHeaders {
		f.SetCellValue(ItemsSheet, cell(i, 1), h)
	}

	itemRow := 2
	for i, o := range orders {
		total, _ := o.TotalPrice.Float64()
		writeRow(f, OrdersSheet, i+2,
			o.Reference,
			o.ID.String(),
			o.UserID.String(),
			string(o.Status),
			itemSummary(o),
			total,
			o.CreatedAt.UTC().Format(time.RFC3339),
		)
		for _, it := range o.Items {
			price, _ := it.Price.Float64()
			writeRow(f, ItemsSheet, itemRow,
				o.Reference,
				it.ArticleID.String(),
				it.Title,
				price,
				it.Quantity,
				it.Image,
			)
			itemRow++
		}
	}

	return f.Write(w)
}
