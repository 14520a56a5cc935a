package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shopserv/shopserv/internal/models"
)

type ShopFilter struct {
	Search      string
	City        string
	ServiceType string
}

type ItemFilter struct {
	Search   string
	Category string
	ShopID   uint
}

func (r *GormRepo) CreateShop(ctx context.Context, shop *models.Shop) error {
	return r.DB.WithContext(ctx).Create(shop).Error
}

func (r *GormRepo) GetShop(ctx context.Context, id uint) (*models.Shop, error) {
	var shop models.Shop
	if err := r.DB.WithContext(ctx).First(&shop, id).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *GormRepo) GetShopByOwner(ctx context.Context, ownerID uint) (*models.Shop, error) {
	var shop models.Shop
	if err := r.DB.WithContext(ctx).Where("owner_id = ?", ownerID).First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

func (r *GormRepo) SaveShop(ctx context.Context, shop *models.Shop) error {
	return r.DB.WithContext(ctx).Save(shop).Error
}

// ListShops returns only shops visible in listings: active and approved.
func (r *GormRepo) ListShops(ctx context.Context, f ShopFilter, limit, offset int) ([]models.Shop, int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.Shop{}).
		Where("is_active = ? AND is_approved = ?", true, true)

	if f.Search != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+f.Search+"%")
	}
	if f.City != "" {
		q = q.Where("LOWER(city) LIKE LOWER(?)", "%"+f.City+"%")
	}
	if f.ServiceType != "" {
		q = q.Where("service_type = ?", f.ServiceType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var shops []models.Shop
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&shops).Error; err != nil {
		return nil, 0, err
	}
	return shops, total, nil
}

func (r *GormRepo) ListAllShops(ctx context.Context, limit, offset int) ([]models.Shop, error) {
	var shops []models.Shop
	if err := r.DB.WithContext(ctx).
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&shops).Error; err != nil {
		return nil, err
	}
	return shops, nil
}

func (r *GormRepo) SetShopActive(ctx context.Context, id uint, active bool) error {
	return r.DB.WithContext(ctx).Model(&models.Shop{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProductForUpdate takes a row lock so a concurrent checkout cannot read
// the same stock value before this transaction commits. sqlite has no row
// locks; its writes serialize on the database anyway.
func (r *GormRepo) GetProductForUpdate(ctx context.Context, id uint) (*models.Product, error) {
	q := r.DB.WithContext(ctx)
	if r.DB.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var p models.Product
	if err := q.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// DecrementStock applies the conditional decrement. Zero rows affected means
// the stock guard failed and the caller must treat it as insufficient stock.
func (r *GormRepo) DecrementStock(ctx context.Context, productID, quantity uint) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepo) SaveProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Save(p).Error
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&models.Product{}, id).Error
}

func (r *GormRepo) ListProducts(ctx context.Context, f ItemFilter, activeOnly bool, limit, offset int) ([]models.Product, int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if f.ShopID != 0 {
		q = q.Where("shop_id = ?", f.ShopID)
	}
	if f.Search != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+f.Search+"%")
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *GormRepo) CountProductsByShop(ctx context.Context, shopID uint) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("shop_id = ?", shopID).Count(&n).Error
	return n, err
}

func (r *GormRepo) CreateService(ctx context.Context, s *models.Service) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *GormRepo) GetService(ctx context.Context, id uint) (*models.Service, error) {
	var s models.Service
	if err := r.DB.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormRepo) SaveService(ctx context.Context, s *models.Service) error {
	return r.DB.WithContext(ctx).Save(s).Error
}

func (r *GormRepo) DeleteService(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&models.Service{}, id).Error
}

func (r *GormRepo) ListServices(ctx context.Context, f ItemFilter, activeOnly bool, limit, offset int) ([]models.Service, int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.Service{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if f.ShopID != 0 {
		q = q.Where("shop_id = ?", f.ShopID)
	}
	if f.Search != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+f.Search+"%")
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var services []models.Service
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&services).Error; err != nil {
		return nil, 0, err
	}
	return services, total, nil
}

func (r *GormRepo) SetProductActive(ctx context.Context, id uint, active bool) error {
	return r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}
