package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shopserv/shopserv/internal/models"
	"github.com/shopserv/shopserv/internal/repo"
)

type NotificationService struct {
	Repo *repo.GormRepo
}

// List returns the user's unread notifications, newest first.
func (s *NotificationService) List(ctx context.Context, userID uint, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.Repo.ListUnreadNotifications(ctx, userID, limit)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uint) error {
	n, err := s.Repo.GetNotification(ctx, notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: notification", ErrNotFound)
		}
		return err
	}
	if n.UserID != userID {
		return fmt.Errorf("%w: not your notification", ErrUnauthorized)
	}
	return s.Repo.MarkNotificationRead(ctx, notificationID)
}
