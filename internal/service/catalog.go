package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"gorm.io/gorm"

	"github.com/shopserv/shopserv/internal/logging"
	"github.com/shopserv/shopserv/internal/models"
	"github.com/shopserv/shopserv/internal/repo"
	"github.com/shopserv/shopserv/internal/service/search"
)

type CatalogService struct {
	Repo    *repo.GormRepo
	ES      *elasticsearch.Client
	ESIndex string
}

type ShopInput struct {
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Address        string  `json:"address"`
	City           string  `json:"city"`
	State          string  `json:"state"`
	Pincode        string  `json:"pincode"`
	ContactPhone   string  `json:"contact_phone"`
	ContactEmail   string  `json:"contact_email"`
	ServiceType    string   `json:"service_type"`
	DeliveryCharge *float64 `json:"delivery_charge"`
	MinOrderAmount *float64 `json:"min_order_amount"`
	CODAvailable   *bool    `json:"cod_available"`
	UPIID          string  `json:"upi_id"`
	BankName       string  `json:"bank_name"`
	AccountHolder  string  `json:"account_holder"`
	AccountNumber  string  `json:"account_number"`
	IFSCCode       string  `json:"ifsc_code"`
}

type ProductInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *uint    `json:"stock"`
	Category    string   `json:"category"`
	Image       string   `json:"image"`
	IsActive    *bool    `json:"is_active"`
}

type ServiceInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Duration    string   `json:"duration"`
	Category    string   `json:"category"`
	Image       string   `json:"image"`
	IsActive    *bool    `json:"is_active"`
}

type ShopDashboard struct {
	Shop         *models.Shop `json:"shop"`
	ProductCount int64        `json:"product_count"`
	OrderCount   int64        `json:"order_count"`
	Revenue      float64      `json:"revenue"`
}

func (s *CatalogService) CreateShop(ctx context.Context, ownerID uint, in ShopInput) (*models.Shop, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: shop name required", ErrValidation)
	}
	if strings.TrimSpace(in.Address) == "" {
		return nil, fmt.Errorf("%w: address required", ErrValidation)
	}

	if _, err := s.Repo.GetShopByOwner(ctx, ownerID); err == nil {
		return nil, fmt.Errorf("%w: you already have a shop", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	shop := &models.Shop{
		OwnerID:        ownerID,
		Name:           in.Name,
		Description:    in.Description,
		Address:        in.Address,
		City:           in.City,
		State:          in.State,
		Pincode:        in.Pincode,
		ContactPhone:   in.ContactPhone,
		ContactEmail:   in.ContactEmail,
		ServiceType:    in.ServiceType,
		DeliveryCharge: deref(in.DeliveryCharge),
		MinOrderAmount: deref(in.MinOrderAmount),
		CODAvailable:   in.CODAvailable == nil || *in.CODAvailable,
		UPIID:          in.UPIID,
		BankName:       in.BankName,
		AccountHolder:  in.AccountHolder,
		AccountNumber:  in.AccountNumber,
		IFSCCode:       in.IFSCCode,
		IsApproved:     true,
		IsActive:       true,
	}
	if err := s.Repo.CreateShop(ctx, shop); err != nil {
		return nil, err
	}
	return shop, nil
}

func (s *CatalogService) GetMyShop(ctx context.Context, ownerID uint) (*models.Shop, error) {
	shop, err := s.Repo.GetShopByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: shop", ErrNotFound)
		}
		return nil, err
	}
	return shop, nil
}

func (s *CatalogService) UpdateShop(ctx context.Context, ownerID uint, in ShopInput) (*models.Shop, error) {
	shop, err := s.GetMyShop(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		shop.Name = in.Name
	}
	if in.Description != "" {
		shop.Description = in.Description
	}
	if in.Address != "" {
		shop.Address = in.Address
	}
	if in.City != "" {
		shop.City = in.City
	}
	if in.State != "" {
		shop.State = in.State
	}
	if in.Pincode != "" {
		shop.Pincode = in.Pincode
	}
	if in.ContactPhone != "" {
		shop.ContactPhone = in.ContactPhone
	}
	if in.ContactEmail != "" {
		shop.ContactEmail = in.ContactEmail
	}
	if in.ServiceType != "" {
		shop.ServiceType = in.ServiceType
	}
	if in.DeliveryCharge != nil {
		shop.DeliveryCharge = *in.DeliveryCharge
	}
	if in.MinOrderAmount != nil {
		shop.MinOrderAmount = *in.MinOrderAmount
	}
	if in.CODAvailable != nil {
		shop.CODAvailable = *in.CODAvailable
	}
	if in.UPIID != "" {
		shop.UPIID = in.UPIID
	}
	if in.BankName != "" {
		shop.BankName = in.BankName
	}
	if in.AccountHolder != "" {
		shop.AccountHolder = in.AccountHolder
	}
	if in.AccountNumber != "" {
		shop.AccountNumber = in.AccountNumber
	}
	if in.IFSCCode != "" {
		shop.IFSCCode = in.IFSCCode
	}

	if err := s.Repo.SaveShop(ctx, shop); err != nil {
		return nil, err
	}
	return shop, nil
}

func (s *CatalogService) ListShops(ctx context.Context, f repo.ShopFilter, limit, offset int) ([]models.Shop, int64, error) {
	return s.Repo.ListShops(ctx, f, limit, offset)
}

// GetShop returns a publicly visible shop: active and approved.
func (s *CatalogService) GetShop(ctx context.Context, id uint) (*models.Shop, error) {
	shop, err := s.Repo.GetShop(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: shop", ErrNotFound)
		}
		return nil, err
	}
	if !shop.IsActive || !shop.IsApproved {
		return nil, fmt.Errorf("%w: shop", ErrNotFound)
	}
	return shop, nil
}

func (s *CatalogService) Dashboard(ctx context.Context, ownerID uint) (*ShopDashboard, error) {
	shop, err := s.GetMyShop(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	productCount, err := s.Repo.CountProductsByShop(ctx, shop.ID)
	if err != nil {
		return nil, err
	}
	orderCount, err := s.Repo.CountOrderItemsByShop(ctx, shop.ID)
	if err != nil {
		return nil, err
	}
	revenue, err := s.Repo.ShopRevenue(ctx, shop.ID)
	if err != nil {
		return nil, err
	}

	return &ShopDashboard{
		Shop:         shop,
		ProductCount: productCount,
		OrderCount:   orderCount,
		Revenue:      revenue,
	}, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, ownerID uint, in ProductInput) (*models.Product, error) {
	if err := validateItemInput(in.Name, in.Price); err != nil {
		return nil, err
	}
	shop, err := s.GetMyShop(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	stock := uint(0)
	if in.Stock != nil {
		stock = *in.Stock
	}
	p := &models.Product{
		ShopID:      shop.ID,
		Name:        in.Name,
		Description: in.Description,
		Price:       deref(in.Price),
		Stock:       stock,
		Category:    in.Category,
		Image:       in.Image,
		IsActive:    in.IsActive == nil || *in.IsActive,
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.syncProduct(ctx, p)
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, ownerID, productID uint, in ProductInput) (*models.Product, error) {
	p, err := s.ownedProduct(ctx, ownerID, productID)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		p.Name = in.Name
	}
	if in.Description != "" {
		p.Description = in.Description
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, fmt.Errorf("%w: price must be non-negative", ErrValidation)
		}
		p.Price = *in.Price
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Category != "" {
		p.Category = in.Category
	}
	if in.Image != "" {
		p.Image = in.Image
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}

	if err := s.Repo.SaveProduct(ctx, p); err != nil {
		return nil, err
	}
	s.syncProduct(ctx, p)
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, ownerID, productID uint) error {
	p, err := s.ownedProduct(ctx, ownerID, productID)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteProduct(ctx, p.ID); err != nil {
		return err
	}
	if s.ES != nil {
		if err := search.DeleteProduct(ctx, s.ES, s.ESIndex, p.ID); err != nil {
			logging.FromContext(ctx).Warn("es_delete_error", "product_id", p.ID, "error", err)
		}
	}
	return nil
}

func (s *CatalogService) ListProducts(ctx context.Context, f repo.ItemFilter, limit, offset int) ([]models.Product, int64, error) {
	return s.Repo.ListProducts(ctx, f, true, limit, offset)
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product", ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

// SearchProducts queries elasticsearch when it is wired and falls back to
// the catalog table otherwise.
func (s *CatalogService) SearchProducts(ctx context.Context, query string, limit, offset int) ([]models.Product, int64, error) {
	if strings.TrimSpace(query) == "" {
		return nil, 0, fmt.Errorf("%w: query required", ErrValidation)
	}

	if s.ES != nil {
		total, products, err := search.Search(ctx, s.ES, s.ESIndex, query, offset, limit)
		if err == nil {
			return products, total, nil
		}
		logging.FromContext(ctx).Warn("es_search_error", "error", err)
	}

	return s.Repo.ListProducts(ctx, repo.ItemFilter{Search: query}, true, limit, offset)
}

func (s *CatalogService) CreateService(ctx context.Context, ownerID uint, in ServiceInput) (*models.Service, error) {
	if err := validateItemInput(in.Name, in.Price); err != nil {
		return nil, err
	}
	shop, err := s.GetMyShop(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	svc := &models.Service{
		ShopID:      shop.ID,
		Name:        in.Name,
		Description: in.Description,
		Price:       deref(in.Price),
		Duration:    in.Duration,
		Category:    in.Category,
		Image:       in.Image,
		IsActive:    in.IsActive == nil || *in.IsActive,
	}
	if err := s.Repo.CreateService(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *CatalogService) UpdateService(ctx context.Context, ownerID, serviceID uint, in ServiceInput) (*models.Service, error) {
	svc, err := s.ownedService(ctx, ownerID, serviceID)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		svc.Name = in.Name
	}
	if in.Description != "" {
		svc.Description = in.Description
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, fmt.Errorf("%w: price must be non-negative", ErrValidation)
		}
		svc.Price = *in.Price
	}
	if in.Duration != "" {
		svc.Duration = in.Duration
	}
	if in.Category != "" {
		svc.Category = in.Category
	}
	if in.Image != "" {
		svc.Image = in.Image
	}
	if in.IsActive != nil {
		svc.IsActive = *in.IsActive
	}

	if err := s.Repo.SaveService(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *CatalogService) DeleteService(ctx context.Context, ownerID, serviceID uint) error {
	svc, err := s.ownedService(ctx, ownerID, serviceID)
	if err != nil {
		return err
	}
	return s.Repo.DeleteService(ctx, svc.ID)
}

func (s *CatalogService) ListServices(ctx context.Context, f repo.ItemFilter, limit, offset int) ([]models.Service, int64, error) {
	return s.Repo.ListServices(ctx, f, true, limit, offset)
}

func (s *CatalogService) GetService(ctx context.Context, id uint) (*models.Service, error) {
	svc, err := s.Repo.GetService(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: service", ErrNotFound)
		}
		return nil, err
	}
	return svc, nil
}

func (s *CatalogService) ownedProduct(ctx context.Context, ownerID, productID uint) (*models.Product, error) {
	shop, err := s.GetMyShop(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	p, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p.ShopID != shop.ID {
		return nil, fmt.Errorf("%w: not your product", ErrUnauthorized)
	}
	return p, nil
}

func (s *CatalogService) ownedService(ctx context.Context, ownerID, serviceID uint) (*models.Service, error) {
	shop, err := s.GetMyShop(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	svc, err := s.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if svc.ShopID != shop.ID {
		return nil, fmt.Errorf("%w: not your service", ErrUnauthorized)
	}
	return svc, nil
}

// syncProduct keeps the search index loosely in step with the catalog.
// Failures are logged, never surfaced.
func (s *CatalogService) syncProduct(ctx context.Context, p *models.Product) {
	if s.ES == nil {
		return
	}
	if err := search.IndexProduct(ctx, s.ES, s.ESIndex, p); err != nil {
		logging.FromContext(ctx).Warn("es_index_error", "product_id", p.ID, "error", err)
	}
}

func validateItemInput(name string, price *float64) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name required", ErrValidation)
	}
	if price != nil && *price < 0 {
		return fmt.Errorf("%w: price must be non-negative", ErrValidation)
	}
	return nil
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
