package repo

import (
	"context"

	"github.com/shopserv/shopserv/internal/models"
)

type PlatformStats struct {
	TotalUsers    int64   `json:"total_users"`
	TotalShops    int64   `json:"total_shops"`
	TotalProducts int64   `json:"total_products"`
	TotalOrders   int64   `json:"total_orders"`
	TotalRevenue  float64 `json:"total_revenue"`
}

// PlatformStats aggregates the admin dashboard counters. Revenue sums only
// orders whose payment completed.
func (r *GormRepo) PlatformStats(ctx context.Context) (*PlatformStats, error) {
	var stats PlatformStats
	db := r.DB.WithContext(ctx)

	if err := db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Shop{}).Count(&stats.TotalShops).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Order{}).
		Where("payment_status = ?", models.PaymentCompleted).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&stats.TotalRevenue).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}
