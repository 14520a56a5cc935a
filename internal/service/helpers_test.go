package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shopserv/shopserv/internal/hash"
	"github.com/shopserv/shopserv/internal/models"
	"github.com/shopserv/shopserv/internal/repo"
)

func newTestRepo(t *testing.T) *repo.GormRepo {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...))
	return &repo.GormRepo{DB: db}
}

var seedSeq int

func f64(v float64) *float64 { return &v }

func seedUser(t *testing.T, r *repo.GormRepo, role models.Role) *models.User {
	t.Helper()

	seedSeq++
	pwHash, err := hash.HashPassword("Secret123")
	require.NoError(t, err)

	user := &models.User{
		Email:        fmt.Sprintf("user%d@example.com", seedSeq),
		PasswordHash: pwHash,
		FullName:     "Test User",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, r.CreateUser(context.Background(), user))
	return user
}

func seedShop(t *testing.T, r *repo.GormRepo, ownerID uint) *models.Shop {
	t.Helper()

	seedSeq++
	shop := &models.Shop{
		OwnerID:    ownerID,
		Name:       fmt.Sprintf("Shop %d", seedSeq),
		Address:    "12 Market Road",
		City:       "Pune",
		IsApproved: true,
		IsActive:   true,
	}
	require.NoError(t, r.CreateShop(context.Background(), shop))
	return shop
}

func seedProduct(t *testing.T, r *repo.GormRepo, shopID uint, price float64, stock uint) *models.Product {
	t.Helper()

	seedSeq++
	p := &models.Product{
		ShopID:   shopID,
		Name:     fmt.Sprintf("Product %d", seedSeq),
		Price:    price,
		Stock:    stock,
		IsActive: true,
	}
	require.NoError(t, r.CreateProduct(context.Background(), p))
	return p
}

func seedService(t *testing.T, r *repo.GormRepo, shopID uint, price float64) *models.Service {
	t.Helper()

	seedSeq++
	s := &models.Service{
		ShopID:   shopID,
		Name:     fmt.Sprintf("Service %d", seedSeq),
		Price:    price,
		IsActive: true,
	}
	require.NoError(t, r.CreateService(context.Background(), s))
	return s
}

func notificationsFor(t *testing.T, r *repo.GormRepo, userID uint) []models.Notification {
	t.Helper()

	items, err := r.ListUnreadNotifications(context.Background(), userID, 100)
	require.NoError(t, err)
	return items
}
