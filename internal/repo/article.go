package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/internal/models"
)

func orderedImages(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *GormRepo) CreateArticle(ctx context.Context, article *models.Article) error {
	return r.DB.WithContext(ctx).Create(article).Error
}

func (r *GormRepo) GetArticle(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	var article models.Article
	if err := r.DB.WithContext(ctx).
		Preload("Images", orderedImages).
		Where("id = ?", id).
		First(&article).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *GormRepo) ListArticles(ctx context.Context, offset, limit int) (int64, []models.Article, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Article{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Article
	if err := r.DB.WithContext(ctx).
		Preload("Images", orderedImages).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}

	return total, items, nil
}

func (r *GormRepo) AllArticles(ctx context.Context) ([]models.Article, error) {
	var items []models.Article
	if err := r.DB.WithContext(ctx).
		Preload("Images", orderedImages).
		Order("created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetArticlesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Article, error) {
	var items []models.Article
	if len(ids) == 0 {
		return items, nil
	}
	if err := r.DB.WithContext(ctx).
		Preload("Images", orderedImages).
		Where("id IN ?", ids).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateArticle saves scalar fields. When replaceImages is set the stored
// image rows are replaced by article.Images.
func (r *GormRepo) UpdateArticle(ctx context.Context, article *models.Article, replaceImages bool) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Images").Save(article).Error; err != nil {
			return err
		}
		if !replaceImages {
			return nil
		}
		if err := tx.Where("article_id = ?", article.ID).Delete(&models.ArticleImage{}).Error; err != nil {
			return err
		}
		if len(article.Images) == 0 {
			return nil
		}
		for i := range article.Images {
			article.Images[i].ID = 0
			article.Images[i].ArticleID = article.ID
			article.Images[i].Position = i
		}
		return tx.Create(&article.Images).Error
	})
}

// DecrementStock subtracts qty only while enough stock remains and returns the
// new stock value.
func (r *GormRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (int, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.Article{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrStockChanged
	}

	var stock int
	if err := r.DB.WithContext(ctx).
		Model(&models.Article{}).
		Where("id = ?", id).
		Select("stock").
		Scan(&stock).Error; err != nil {
		return 0, err
	}
	return stock, nil
}

// DeleteArticle removes the article, its image rows and any cart lines
// pointing at it.
func (r *GormRepo) DeleteArticle(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("article_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", id).Delete(&models.ArticleImage{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Article{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// CountImageReferences counts the article images (outside exclude) and order
// line items that still point at ref.
func (r *GormRepo) CountImageReferences(ctx context.Context, ref string, exclude uuid.UUID) (int64, error) {
	var inArticles int64
	q := r.DB.WithContext(ctx).Model(&models.ArticleImage{}).Where("ref = ?", ref)
	if exclude != uuid.Nil {
		q = q.Where("article_id <> ?", exclude)
	}
	if err := q.Count(&inArticles).Error; err != nil {
		return 0, err
	}

	var inOrders int64
	if err := r.DB.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("image = ?", ref).
		Count(&inOrders).Error; err != nil {
		return 0, err
	}

	return inArticles + inOrders, nil
}

func (r *GormRepo) CountArticlesInCategory(ctx context.Context, name string) (int64, error) {
	var n int64
	if err := r.DB.WithContext(ctx).
		Model(&models.Article{}).
		Where("LOWER(category) = ?", strings.ToLower(name)).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
