package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shopserv/shopserv/internal/models"
	"github.com/shopserv/shopserv/internal/repo"
)

type CartService struct {
	Repo *repo.GormRepo
}

// CartLine joins a cart row with its current catalog state so views and
// checkout can price it.
type CartLine struct {
	models.CartItem
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	IsActive bool    `json:"is_active"`
	Stock    uint    `json:"stock,omitempty"`
	ShopID   uint    `json:"shop_id"`
}

type CartView struct {
	Lines []CartLine `json:"lines"`
	Total float64    `json:"total"`
}

// AddItem creates a quantity-1 row or increments an existing one. Product
// lines are capped at current stock; service lines have no ceiling.
func (s *CartService) AddItem(ctx context.Context, customerID uint, kind models.ItemKind, itemID, quantity uint) (*models.CartItem, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: invalid item kind", ErrValidation)
	}
	if itemID == 0 {
		return nil, fmt.Errorf("%w: item_id required", ErrValidation)
	}
	if quantity == 0 {
		quantity = 1
	}

	switch kind {
	case models.KindProduct:
		product, err := s.Repo.GetProduct(ctx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: product", ErrNotFound)
			}
			return nil, err
		}
		if !product.IsActive || product.Stock < 1 {
			return nil, fmt.Errorf("%w: %s", ErrUnavailable, product.Name)
		}

		existing := uint(0)
		if line, err := s.Repo.GetCartLine(ctx, customerID, kind, itemID); err == nil {
			existing = line.Quantity
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing+quantity > product.Stock {
			return nil, fmt.Errorf("%w: only %d units of %s available", ErrInsufficientStock, product.Stock, product.Name)
		}
	case models.KindService:
		svc, err := s.Repo.GetService(ctx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: service", ErrNotFound)
			}
			return nil, err
		}
		if !svc.IsActive {
			return nil, fmt.Errorf("%w: %s", ErrUnavailable, svc.Name)
		}
	}

	item := &models.CartItem{
		CustomerID: customerID,
		ItemKind:   kind,
		ItemID:     itemID,
		Quantity:   quantity,
	}
	if err := s.Repo.UpsertCartLine(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, customerID, cartItemID, quantity uint) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be >= 1", ErrValidation)
	}

	item, err := s.Repo.GetCartItemByID(ctx, cartItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: cart item", ErrNotFound)
		}
		return nil, err
	}
	if item.CustomerID != customerID {
		return nil, fmt.Errorf("%w: not your cart item", ErrUnauthorized)
	}

	if item.ItemKind == models.KindProduct {
		product, err := s.Repo.GetProduct(ctx, item.ItemID)
		if err != nil {
			return nil, err
		}
		if quantity > product.Stock {
			return nil, fmt.Errorf("%w: only %d units of %s available", ErrInsufficientStock, product.Stock, product.Name)
		}
	}

	if err := s.Repo.SetCartQuantity(ctx, item.ID, quantity); err != nil {
		return nil, err
	}
	item.Quantity = quantity
	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, customerID, cartItemID uint) error {
	item, err := s.Repo.GetCartItemByID(ctx, cartItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: cart item", ErrNotFound)
		}
		return err
	}
	if item.CustomerID != customerID {
		return fmt.Errorf("%w: not your cart item", ErrUnauthorized)
	}
	return s.Repo.DeleteCartItem(ctx, item.ID)
}

// GetCart resolves every line against the catalog. Inactive referents stay
// visible but contribute nothing to the total.
func (s *CartService) GetCart(ctx context.Context, customerID uint) (*CartView, error) {
	items, err := s.Repo.GetCart(ctx, customerID)
	if err != nil {
		return nil, err
	}

	view := &CartView{Lines: make([]CartLine, 0, len(items))}
	for _, item := range items {
		line := CartLine{CartItem: item}
		switch item.ItemKind {
		case models.KindProduct:
			product, err := s.Repo.GetProduct(ctx, item.ItemID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return nil, err
			}
			line.Name = product.Name
			line.Price = product.Price
			line.IsActive = product.IsActive
			line.Stock = product.Stock
			line.ShopID = product.ShopID
		case models.KindService:
			svc, err := s.Repo.GetService(ctx, item.ItemID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return nil, err
			}
			line.Name = svc.Name
			line.Price = svc.Price
			line.IsActive = svc.IsActive
			line.ShopID = svc.ShopID
		}
		if line.IsActive {
			view.Total += line.Price * float64(item.Quantity)
		}
		view.Lines = append(view.Lines, line)
	}
	return view, nil
}

func (s *CartService) Count(ctx context.Context, customerID uint) (int64, error) {
	return s.Repo.CountCartLines(ctx, customerID)
}
