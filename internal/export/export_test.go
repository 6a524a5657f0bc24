package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/marketplace/internal/models"
)

func TestCell(t *testing.T) {
	require.Equal(t, "A1", cell(0, 1))
	require.Equal(t, "G12", cell(6, 12))
	require.Equal(t, "AA3", cell(26, 3))
}

func TestArticlesCSV(t *testing.T) {
	a := models.Article{
		ID:             uuid.New(),
		Title:          "Desk, oak",
		Category:       "Furniture",
		Condition:      models.ConditionGood,
		Price:          decimal.RequireFromString("99.5"),
		Stock:          2,
		MainImageIndex: 1,
		CreatedAt:      time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	a.SetImages([]string{"a.jpg", "b.jpg"})

	var buf bytes.Buffer
	require.NoError(t, ArticlesCSV(&buf, []models.Article{a}))

	var rows []*ArticleRow
	require.NoError(t, gocsv.UnmarshalBytes(buf.Bytes(), &rows))
	require.Len(t, rows, 1)
	require.Equal(t, "Desk, oak", rows[0].Title)
	require.Equal(t, "99.50", rows[0].Price)
	require.Equal(t, 2, rows[0].Images)
	require.Equal(t, "b.jpg", rows[0].MainImage)
	require.Equal(t, "2024-05-01T10:00:00Z", rows[0].CreatedAt)
}

func TestOrdersXLSX(t *testing.T) {
	o := models.Order{
		ID:         uuid.New(),
		Reference:  "1790000000000000000",
		UserID:     uuid.New(),
		Status:     models.OrderStatusShipped,
		TotalPrice: decimal.NewFromInt(230),
		Items: []models.OrderItem{
			{ArticleID: uuid.New(), Title: "Lamp", Price: decimal.NewFromInt(100), Quantity: 2, Image: "lamp.jpg"},
			{ArticleID: uuid.New(), Title: "Mug", Price: decimal.NewFromInt(30), Quantity: 1, Image: "mug.jpg"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, OrdersXLSX(&buf, []models.Order{o}))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	require.Equal(t, "reference", f.GetCellValue(OrdersSheet, "A1"))
	require.Equal(t, o.Reference, f.GetCellValue(OrdersSheet, "A2"))
	require.Equal(t, "shipped", f.GetCellValue(OrdersSheet, "D2"))
	require.Equal(t, "Lamp x2; Mug x1", f.GetCellValue(OrdersSheet, "E2"))

	require.Equal(t, "Lamp", f.GetCellValue(ItemsSheet, "C2"))
	require.Equal(t, "Mug", f.GetCellValue(ItemsSheet, "C3"))
	require.Equal(t, "", f.GetCellValue(ItemsSheet, "C4"))
}
