package export

import (
	"io"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/Skotchmaster/marketplace/internal/models"
)

type ArticleRow struct {
	ID        string `csv:"id"`
	Title     string `csv:"title"`
	Category  string `csv:"category"`
	Condition string `csv:"condition"`
	Price     string `csv:"price"`
	Stock     int    `csv:"stock"`
	Images    int    `csv:"images"`
	MainImage string `csv:"main_image"`
	CreatedAt string `csv:"created_at"`
}

// ArticlesCSV writes one row per article, header included.
func ArticlesCSV(w io.Writer, articles []models.Article) error {
	rows := make([]*ArticleRow, 0, len(articles))
	for _, a := range articles {
		rows = append(rows, &ArticleRow{
			ID:        a.ID.String(),
			Title:     a.Title,
			Category:  a.Category,
			Condition: string(a.Condition),
			Price:     a.Price.StringFixed(2),
			Stock:     a.Stock,
			Images:    len(a.Images),
			MainImage: a.MainImage(),
			CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return gocsv.Marshal(&rows, w)
}
