package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrStockChanged is returned when a guarded stock decrement matched no row.
var ErrStockChanged = errors.New("stock changed")

type GormRepo struct {
	DB *gorm.DB
}

// Transaction runs fn with a repo bound to a single database transaction.
func (r *GormRepo) Transaction(ctx context.Context, fn func(tx *GormRepo) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx})
	})
}
