package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/shopserv/shopserv/internal/models"
)

func (r *GormRepo) GetCart(ctx context.Context, customerID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.DB.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("added_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetCartLine(ctx context.Context, customerID uint, kind models.ItemKind, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB.WithContext(ctx).
		Where("customer_id = ? AND item_kind = ? AND item_id = ?", customerID, kind, itemID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) GetCartItemByID(ctx context.Context, id uint) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// UpsertCartLine increments an existing (customer, kind, item) row or
// creates it, keeping at most one row per line.
func (r *GormRepo) UpsertCartLine(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("customer_id = ? AND item_kind = ? AND item_id = ?",
				item.CustomerID, item.ItemKind, item.ItemID).
			Update("quantity", gorm.Expr("quantity + ?", item.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return tx.Where("customer_id = ? AND item_kind = ? AND item_id = ?",
				item.CustomerID, item.ItemKind, item.ItemID).First(item).Error
		}
		return tx.Create(item).Error
	})
}

func (r *GormRepo) SetCartQuantity(ctx context.Context, id, quantity uint) error {
	return r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ?", id).
		Update("quantity", quantity).Error
}

func (r *GormRepo) DeleteCartItem(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&models.CartItem{}, id).Error
}

func (r *GormRepo) DeleteCartLines(ctx context.Context, customerID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).
		Where("customer_id = ? AND id IN ?", customerID, ids).
		Delete(&models.CartItem{}).Error
}

func (r *GormRepo) CountCartLines(ctx context.Context, customerID uint) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("customer_id = ?", customerID).Count(&n).Error
	return n, err
}
