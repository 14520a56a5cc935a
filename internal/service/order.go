package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shopserv/shopserv/internal/logging"
	"github.com/shopserv/shopserv/internal/models"
	"github.com/shopserv/shopserv/internal/payment"
	"github.com/shopserv/shopserv/internal/repo"
)

type OrderService struct {
	Repo    *repo.GormRepo
	Gateway *payment.Client
	UPIID   string

	// ClampToStock selects the over-request policy: clamp the line down to
	// available stock, or fail the whole checkout.
	ClampToStock bool
}

type CheckoutInput struct {
	PaymentMethod   models.PaymentMethod
	ShippingAddress string
	ShippingCity    string
	ShippingState   string
	ShippingZip     string
	ShippingPhone   string
	Notes           string
	TermsAccepted   bool
}

type CheckoutResult struct {
	Order     *models.Order `json:"order"`
	UPIString string        `json:"upi_string,omitempty"`
}

// Allowed status transitions. payment_status moves on its own axis.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPendingPayment: {models.StatusPaid, models.StatusPending, models.StatusConfirmed, models.StatusCancelled},
	models.StatusPending:        {models.StatusConfirmed, models.StatusProcessing, models.StatusCancelled},
	models.StatusPaid:           {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed:      {models.StatusProcessing, models.StatusCancelled},
	models.StatusProcessing:     {models.StatusShipped, models.StatusCancelled},
	models.StatusShipped:        {models.StatusDelivered, models.StatusCancelled},
}

func transitionAllowed(from, to models.OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Checkout turns the customer's cart into an order. The order header, its
// lines, every stock decrement and the cart-row deletions commit as one
// transaction; any failure rolls all of it back.
func (s *OrderService) Checkout(ctx context.Context, customerID uint, in CheckoutInput) (*CheckoutResult, error) {
	if !in.PaymentMethod.Valid() {
		return nil, fmt.Errorf("%w: invalid payment method", ErrValidation)
	}
	if strings.TrimSpace(in.ShippingAddress) == "" {
		return nil, fmt.Errorf("%w: shipping address required", ErrValidation)
	}
	if strings.TrimSpace(in.ShippingPhone) == "" {
		return nil, fmt.Errorf("%w: phone number required", ErrValidation)
	}
	if !in.TermsAccepted {
		return nil, fmt.Errorf("%w: terms must be accepted", ErrValidation)
	}

	fullAddress := in.ShippingAddress
	if in.ShippingCity != "" || in.ShippingState != "" || in.ShippingZip != "" {
		fullAddress = strings.TrimSpace(fmt.Sprintf("%s\n%s, %s %s",
			in.ShippingAddress, in.ShippingCity, in.ShippingState, in.ShippingZip))
	}

	var order *models.Order

	txErr := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		lines, err := tx.GetCart(ctx, customerID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return fmt.Errorf("%w: cart is empty", ErrValidation)
		}

		var (
			total      float64
			orderItems []models.OrderItem
			decrements = map[uint]uint{}
			lineIDs    = make([]uint, 0, len(lines))
		)

		for _, line := range lines {
			lineIDs = append(lineIDs, line.ID)

			switch line.ItemKind {
			case models.KindProduct:
				product, err := tx.GetProductForUpdate(ctx, line.ItemID)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("%w: product no longer exists", ErrUnavailable)
					}
					return err
				}
				if !product.IsActive {
					return fmt.Errorf("%w: %s", ErrUnavailable, product.Name)
				}

				quantity := line.Quantity
				if quantity > product.Stock {
					if !s.ClampToStock || product.Stock == 0 {
						return fmt.Errorf("%w: only %d units of %s available",
							ErrInsufficientStock, product.Stock, product.Name)
					}
					quantity = product.Stock
				}

				orderItems = append(orderItems, models.OrderItem{
					ItemKind: models.KindProduct,
					ItemID:   product.ID,
					ShopID:   product.ShopID,
					Name:     product.Name,
					Quantity: quantity,
					Price:    product.Price,
				})
				decrements[product.ID] += quantity
				total += product.Price * float64(quantity)

			case models.KindService:
				svc, err := tx.GetService(ctx, line.ItemID)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return fmt.Errorf("%w: service no longer exists", ErrUnavailable)
					}
					return err
				}
				if !svc.IsActive {
					return fmt.Errorf("%w: %s", ErrUnavailable, svc.Name)
				}

				orderItems = append(orderItems, models.OrderItem{
					ItemKind: models.KindService,
					ItemID:   svc.ID,
					ShopID:   svc.ShopID,
					Name:     svc.Name,
					Quantity: line.Quantity,
					Price:    svc.Price,
				})
				total += svc.Price * float64(line.Quantity)
			}
		}

		number, err := s.generateOrderNumber(ctx, tx)
		if err != nil {
			return err
		}

		order = &models.Order{
			OrderNumber:     number,
			CustomerID:      customerID,
			TotalAmount:     total,
			Status:          models.StatusPendingPayment,
			PaymentStatus:   models.PaymentPending,
			PaymentMethod:   in.PaymentMethod,
			ShippingAddress: fullAddress,
			ShippingPhone:   in.ShippingPhone,
			Notes:           in.Notes,
			TermsAccepted:   true,
			Items:           orderItems,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}

		// Second guard behind the row lock: a zero-row conditional update
		// means a racing checkout got there first.
		for productID, quantity := range decrements {
			ok, err := tx.DecrementStock(ctx, productID, quantity)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: stock changed during checkout", ErrInsufficientStock)
			}
		}

		return tx.DeleteCartLines(ctx, customerID, lineIDs)
	})
	if txErr != nil {
		return nil, txErr
	}

	result := &CheckoutResult{Order: order}
	l := logging.FromContext(ctx).With("order_number", order.OrderNumber)

	// Post-commit branching. Nothing past this point may undo the order.
	switch in.PaymentMethod {
	case models.MethodCOD:
		order.Status = models.StatusConfirmed
		if err := s.Repo.SaveOrder(ctx, order); err != nil {
			return nil, err
		}
		s.notifyShopOwners(ctx, order, "New COD order #%s received")

	case models.MethodQR:
		result.UPIString = payment.BuildUPIString(s.UPIID, order.TotalAmount, order.OrderNumber)

	case models.MethodCard:
		if s.Gateway != nil {
			intent, err := s.Gateway.CreateIntent(ctx, order.ID, order.OrderNumber, order.TotalAmount)
			if err != nil {
				// The order is already committed; the client retries the
				// intent via the payment endpoint.
				l.Error("payment_intent_error", "error", err)
				break
			}
			order.PaymentIntentID = intent.ID
			if err := s.Repo.SaveOrder(ctx, order); err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}

// CreatePaymentIntent registers (or re-registers) a card intent for an
// order that has not been paid yet.
func (s *OrderService) CreatePaymentIntent(ctx context.Context, customerID, orderID uint) (*payment.Intent, error) {
	order, err := s.getCustomerOrder(ctx, customerID, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == models.PaymentCompleted {
		return nil, fmt.Errorf("%w: order already paid", ErrConflict)
	}
	if s.Gateway == nil {
		return nil, fmt.Errorf("%w: payment gateway not configured", ErrUnavailable)
	}

	intent, err := s.Gateway.CreateIntent(ctx, order.ID, order.OrderNumber, order.TotalAmount)
	if err != nil {
		return nil, err
	}
	order.PaymentIntentID = intent.ID
	if err := s.Repo.SaveOrder(ctx, order); err != nil {
		return nil, err
	}
	return intent, nil
}

// ConfirmQRPayment marks a QR order as paid on the customer's say-so.
// TODO: verify the UPI transaction against the provider before trusting the
// client-asserted confirmation.
func (s *OrderService) ConfirmQRPayment(ctx context.Context, customerID, orderID uint) (*models.Order, error) {
	return s.completePayment(ctx, customerID, orderID, "New QR payment order #%s received")
}

// PaymentSuccess handles the card gateway's client-reported callback.
// TODO: replace with a server-verified webhook before trusting completion.
func (s *OrderService) PaymentSuccess(ctx context.Context, customerID, orderID uint) (*models.Order, error) {
	return s.completePayment(ctx, customerID, orderID, "New order #%s received")
}

func (s *OrderService) completePayment(ctx context.Context, customerID, orderID uint, messageFormat string) (*models.Order, error) {
	order, err := s.getCustomerOrder(ctx, customerID, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentStatus == models.PaymentCompleted {
		return nil, fmt.Errorf("%w: order already paid", ErrConflict)
	}
	if order.Status.Terminal() {
		return nil, fmt.Errorf("%w: order is %s", ErrConflict, order.Status)
	}

	order.PaymentStatus = models.PaymentCompleted
	order.Status = models.StatusConfirmed
	if err := s.Repo.SaveOrder(ctx, order); err != nil {
		return nil, err
	}

	s.notifyShopOwners(ctx, order, messageFormat)
	return order, nil
}

// CancelOrder is a status transition, never a row removal. Delivered and
// already-cancelled orders cannot be cancelled.
func (s *OrderService) CancelOrder(ctx context.Context, customerID, orderID uint) (*models.Order, error) {
	order, err := s.getCustomerOrder(ctx, customerID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.Terminal() {
		return nil, fmt.Errorf("%w: cannot cancel a %s order", ErrConflict, order.Status)
	}

	order.Status = models.StatusCancelled
	order.PaymentStatus = models.PaymentCancelled
	if err := s.Repo.SaveOrder(ctx, order); err != nil {
		return nil, err
	}

	s.notifyShopOwners(ctx, order, "Order #%s has been cancelled by customer")
	return order, nil
}

// UpdateStatus lets a shop owner advance an order that contains at least
// one of their lines. The new status must be in the enum and reachable from
// the current one.
func (s *OrderService) UpdateStatus(ctx context.Context, ownerID, orderID uint, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid status", ErrValidation)
	}

	shop, err := s.Repo.GetShopByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no shop for this owner", ErrUnauthorized)
		}
		return nil, err
	}

	order, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order", ErrNotFound)
		}
		return nil, err
	}

	involved, err := s.Repo.OrderHasShop(ctx, order.ID, shop.ID)
	if err != nil {
		return nil, err
	}
	if !involved {
		return nil, fmt.Errorf("%w: order does not involve your shop", ErrUnauthorized)
	}

	if !transitionAllowed(order.Status, status) {
		return nil, fmt.Errorf("%w: cannot move from %s to %s", ErrConflict, order.Status, status)
	}

	order.Status = status
	if err := s.Repo.SaveOrder(ctx, order); err != nil {
		return nil, err
	}

	s.notify(ctx, order.CustomerID,
		fmt.Sprintf("Your order #%s status updated to: %s", order.OrderNumber, status))
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, requesterID uint, role models.Role, orderID uint) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order", ErrNotFound)
		}
		return nil, err
	}
	if order.CustomerID != requesterID && role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: not your order", ErrUnauthorized)
	}
	return order, nil
}

func (s *OrderService) ListMyOrders(ctx context.Context, customerID uint, limit, offset int) ([]models.Order, error) {
	return s.Repo.ListOrdersByCustomer(ctx, customerID, limit, offset)
}

// ShopOrders lists the order lines that landed on the owner's shop.
func (s *OrderService) ShopOrders(ctx context.Context, ownerID uint, limit, offset int) ([]models.OrderItem, int64, error) {
	shop, err := s.Repo.GetShopByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, fmt.Errorf("%w: shop", ErrNotFound)
		}
		return nil, 0, err
	}

	total, err := s.Repo.CountOrderItemsByShop(ctx, shop.ID)
	if err != nil {
		return nil, 0, err
	}
	items, err := s.Repo.ListOrderItemsByShop(ctx, shop.ID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *OrderService) getCustomerOrder(ctx context.Context, customerID, orderID uint) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order", ErrNotFound)
		}
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, fmt.Errorf("%w: not your order", ErrUnauthorized)
	}
	return order, nil
}

// notifyShopOwners creates one notification per distinct shop in the
// order. Best-effort: failures are logged, never propagated.
func (s *OrderService) notifyShopOwners(ctx context.Context, order *models.Order, messageFormat string) {
	seen := map[uint]bool{}
	for _, item := range order.Items {
		if seen[item.ShopID] {
			continue
		}
		seen[item.ShopID] = true

		shop, err := s.Repo.GetShop(ctx, item.ShopID)
		if err != nil {
			logging.FromContext(ctx).Error("notify_owner_error", "shop_id", item.ShopID, "error", err)
			continue
		}
		s.notify(ctx, shop.OwnerID, fmt.Sprintf(messageFormat, order.OrderNumber))
	}
}

func (s *OrderService) notify(ctx context.Context, userID uint, message string) {
	n := &models.Notification{UserID: userID, Message: message}
	if err := s.Repo.CreateNotification(ctx, n); err != nil {
		logging.FromContext(ctx).Error("notification_error", "user_id", userID, "error", err)
	}
}

// generateOrderNumber composes a UTC timestamp with a short random suffix
// and retries on the rare collision.
func (s *OrderService) generateOrderNumber(ctx context.Context, tx *repo.GormRepo) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		suffix := make([]byte, 3)
		if _, err := rand.Read(suffix); err != nil {
			return "", err
		}
		number := fmt.Sprintf("ORD-%s-%s",
			time.Now().UTC().Format("20060102150405"),
			strings.ToUpper(hex.EncodeToString(suffix)))

		exists, err := tx.OrderNumberExists(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", fmt.Errorf("%w: could not generate unique order number", ErrConflict)
}
