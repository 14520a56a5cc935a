package repo

import (
	"context"

	"github.com/shopserv/shopserv/internal/models"
)

func (r *GormRepo) CreateNotification(ctx context.Context, n *models.Notification) error {
	return r.DB.WithContext(ctx).Create(n).Error
}

func (r *GormRepo) ListUnreadNotifications(ctx context.Context, userID uint, limit int) ([]models.Notification, error) {
	var notes []models.Notification
	if err := r.DB.WithContext(ctx).
		Where("user_id = ? AND is_read = ?", userID, false).
		Order("created_at DESC").Limit(limit).
		Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *GormRepo) GetNotification(ctx context.Context, id uint) (*models.Notification, error) {
	var n models.Notification
	if err := r.DB.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *GormRepo) MarkNotificationRead(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Update("is_read", true).Error
}
