package repo

import (
	"context"

	"github.com/shopserv/shopserv/internal/models"
)

func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Create(order).Error
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).
		Preload("Items").
		First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) OrderNumberExists(ctx context.Context, number string) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("order_number = ?", number).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) ListOrdersByCustomer(ctx context.Context, customerID uint, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	if err := r.DB.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	if err := r.DB.WithContext(ctx).
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListOrderItemsByShop feeds the shop-owner order screen: only the lines
// that belong to the given shop, newest first.
func (r *GormRepo) ListOrderItemsByShop(ctx context.Context, shopID uint, limit, offset int) ([]models.OrderItem, error) {
	var items []models.OrderItem
	if err := r.DB.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("id DESC").Limit(limit).Offset(offset).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CountOrderItemsByShop(ctx context.Context, shopID uint) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.OrderItem{}).
		Where("shop_id = ?", shopID).Count(&n).Error
	return n, err
}

func (r *GormRepo) ShopRevenue(ctx context.Context, shopID uint) (float64, error) {
	var revenue float64
	err := r.DB.WithContext(ctx).Model(&models.OrderItem{}).
		Where("shop_id = ?", shopID).
		Select("COALESCE(SUM(price * quantity), 0)").
		Scan(&revenue).Error
	return revenue, err
}

func (r *GormRepo) OrderHasShop(ctx context.Context, orderID, shopID uint) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.OrderItem{}).
		Where("order_id = ? AND shop_id = ?", orderID, shopID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) SaveOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Save(order).Error
}

func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus) error {
	return r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}
