package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/marketplace/internal/models"
)

func getOrCreateCartTx(tx *gorm.DB, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := tx.Where(models.Cart{UserID: userID}).FirstOrCreate(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetOrCreateCart returns the user's cart with items and their articles,
// creating an empty cart when none exists.
func (r *GormRepo) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart *models.Cart
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := getOrCreateCartTx(tx, userID)
		if err != nil {
			return err
		}
		if err := tx.
			Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
			Preload("Items.Article.Images", orderedImages).
			Where("id = ?", c.ID).
			First(c).Error; err != nil {
			return err
		}
		cart = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// SetCartItem stores quantity for the article, replacing any previous value.
func (r *GormRepo) SetCartItem(ctx context.Context, userID, articleID uuid.UUID, quantity int) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := getOrCreateCartTx(tx, userID)
		if err != nil {
			return err
		}

		res := tx.Model(&models.CartItem{}).
			Where("cart_id = ? AND article_id = ?", cart.ID, articleID).
			Update("quantity", quantity)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		return tx.Create(&models.CartItem{
			CartID:    cart.ID,
			ArticleID: articleID,
			Quantity:  quantity,
		}).Error
	})
}

func (r *GormRepo) RemoveCartItem(ctx context.Context, userID, articleID uuid.UUID) error {
	sub := r.DB.WithContext(ctx).Model(&models.Cart{}).Select("id").Where("user_id = ?", userID)
	return r.DB.WithContext(ctx).
		Where("cart_id IN (?) AND article_id = ?", sub, articleID).
		Delete(&models.CartItem{}).Error
}

func deleteCartTx(tx *gorm.DB, userID uuid.UUID) error {
	sub := tx.Model(&models.Cart{}).Select("id").Where("user_id = ?", userID)
	if err := tx.Where("cart_id IN (?)", sub).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return tx.Where("user_id = ?", userID).Delete(&models.Cart{}).Error
}

func (r *GormRepo) DeleteCart(ctx context.Context, userID uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteCartTx(tx, userID)
	})
}
