package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/elastic/go-elasticsearch/v9"
	"gorm.io/gorm"

	"github.com/shopserv/shopserv/internal/logging"
	"github.com/shopserv/shopserv/internal/models"
	"github.com/shopserv/shopserv/internal/repo"
	"github.com/shopserv/shopserv/internal/service/search"
)

type AdminService struct {
	Repo    *repo.GormRepo
	ES      *elasticsearch.Client
	ESIndex string
}

func (s *AdminService) Stats(ctx context.Context) (*repo.PlatformStats, error) {
	return s.Repo.PlatformStats(ctx)
}

func (s *AdminService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.Repo.ListUsers(ctx, limit, offset)
}

// SetUserActive toggles a user account. Admin accounts cannot be
// deactivated, not even by another admin.
func (s *AdminService) SetUserActive(ctx context.Context, userID uint, active bool) (*models.User, error) {
	user, err := s.Repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, err
	}
	if user.Role == models.RoleAdmin && !active {
		return nil, fmt.Errorf("%w: cannot deactivate an admin account", ErrConflict)
	}

	if err := s.Repo.SetUserActive(ctx, userID, active); err != nil {
		return nil, err
	}
	user.IsActive = active
	return user, nil
}

func (s *AdminService) ListShops(ctx context.Context, limit, offset int) ([]models.Shop, error) {
	return s.Repo.ListAllShops(ctx, limit, offset)
}

// SetShopActive toggles a shop's visibility and tells the owner.
func (s *AdminService) SetShopActive(ctx context.Context, shopID uint, active bool) (*models.Shop, error) {
	shop, err := s.Repo.GetShop(ctx, shopID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: shop", ErrNotFound)
		}
		return nil, err
	}

	if err := s.Repo.SetShopActive(ctx, shopID, active); err != nil {
		return nil, err
	}
	shop.IsActive = active

	message := fmt.Sprintf("Your shop %q has been deactivated by admin", shop.Name)
	if active {
		message = fmt.Sprintf("Your shop %q has been activated by admin", shop.Name)
	}
	n := &models.Notification{UserID: shop.OwnerID, Message: message}
	if err := s.Repo.CreateNotification(ctx, n); err != nil {
		logging.FromContext(ctx).Error("notification_error", "user_id", shop.OwnerID, "error", err)
	}

	return shop, nil
}

func (s *AdminService) SetProductActive(ctx context.Context, productID uint, active bool) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product", ErrNotFound)
		}
		return nil, err
	}

	if err := s.Repo.SetProductActive(ctx, productID, active); err != nil {
		return nil, err
	}
	p.IsActive = active

	// Keep the search index in step so a moderated product stops
	// surfacing in results.
	if s.ES != nil {
		if err := search.IndexProduct(ctx, s.ES, s.ESIndex, p); err != nil {
			logging.FromContext(ctx).Warn("es_index_error", "product_id", p.ID, "error", err)
		}
	}
	return p, nil
}

func (s *AdminService) ListOrders(ctx context.Context, limit, offset int) ([]models.Order, error) {
	return s.Repo.ListOrders(ctx, limit, offset)
}
