package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopserv/shopserv/internal/models"
	"github.com/shopserv/shopserv/internal/payment"
	"github.com/shopserv/shopserv/internal/repo"
)

func checkoutInput(method models.PaymentMethod) CheckoutInput {
	return CheckoutInput{
		PaymentMethod:   method,
		ShippingAddress: "12 Market Road",
		ShippingCity:    "Pune",
		ShippingState:   "MH",
		ShippingZip:     "411001",
		ShippingPhone:   "9999999999",
		TermsAccepted:   true,
	}
}

type orderFixture struct {
	repo     *repo.GormRepo
	orders   *OrderService
	cart     *CartService
	customer *models.User
	owner    *models.User
	shop     *models.Shop
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()

	r := newTestRepo(t)
	f := &orderFixture{
		repo:     r,
		orders:   &OrderService{Repo: r, UPIID: "shop@upi", ClampToStock: true},
		cart:     &CartService{Repo: r},
		customer: seedUser(t, r, models.RoleCustomer),
		owner:    seedUser(t, r, models.RoleShopOwner),
	}
	f.shop = seedShop(t, r, f.owner.ID)
	return f
}

func TestOrderService_Checkout_COD(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	product := seedProduct(t, f.repo, f.shop.ID, 100, 5)
	haircut := seedService(t, f.repo, f.shop.ID, 50)

	_, err := f.cart.AddItem(ctx, f.customer.ID, models.KindProduct, product.ID, 2)
	require.NoError(t, err)
	_, err = f.cart.AddItem(ctx, f.customer.ID, models.KindService, haircut.ID, 1)
	require.NoError(t, err)

	result, err := f.orders.Checkout(ctx, f.customer.ID, checkoutInput(models.MethodCOD))
	require.NoError(t, err)

	order := result.Order
	assert.True(t, strings.HasPrefix(order.OrderNumber, "ORD-"))
	assert.Equal(t, 250.0, order.TotalAmount)
	assert.Equal(t, models.StatusConfirmed, order.Status)
	assert.Equal(t, models.PaymentPending, order.PaymentStatus)
	assert.Len(t, order.Items, 2)
	assert.Empty(t, result.UPIString)

	// Stock was decremented, the cart emptied.
	fresh, err := f.repo.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(3), fresh.Stock)

	n, err := f.cart.Count(ctx, f.customer.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	// One notification for the shop even though two lines hit it.
	assert.Len(t, notificationsFor(t, f.repo, f.owner.ID), 1)
}

func TestOrderService_Checkout_FrozenPrice(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	product := seedProduct(t, f.repo, f.shop.ID, 80, 5)
	_, err := f.cart.AddItem(ctx, f.customer.ID, models.KindProduct, product.ID, 1)
	require.NoError(t, err)

	result, err := f.orders.Checkout(ctx, f.customer.ID, checkoutInput(models.MethodCOD))
	require.NoError(t, err)

	// A later price change does not touch the committed line.
	product.Price = 999
	require.NoError(t, f.repo.SaveProduct(ctx, product))

	stored, err := f.repo.GetOrder(ctx, result.Order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, 80.0, stored.Items[0].Price)
	assert.Equal(t, 80.0, stored.TotalAmount)
}

func TestOrderService_Checkout_Validation(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	product := seedProduct(t, f.repo, f.shop.ID, 100, 5)
	_, err := f.cart.AddItem(ctx, f.customer.ID, models.KindProduct, product.ID, 1)
	require.NoError(t, err)

	in := checkoutInput(models.MethodCOD)
	in.TermsAccepted = false
	_, err = f.orders.Checkout(ctx, f.customer.ID, in)
	assert.ErrorIs(t, err, ErrValidation)

	in = checkoutInput(models.MethodCOD)
	in.ShippingAddress = "  "
	_, err = f.orders.Checkout(ctx, f.customer.ID, in)
	assert.ErrorIs(t, err, ErrValidation)

	in = checkoutInput(models.PaymentMethod("crypto"))
	_, err = f.orders.Checkout(ctx, f.customer.ID, in)
	assert.ErrorIs(t, err, ErrValidation)

	// None of the failed attempts touched the cart or the stock.
	n, err := f.cart.Count(ctx, f.customer.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestOrderService_Checkout_EmptyCart(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.orders.Checkout(context.Background(), f.customer.ID, checkoutInput(models.MethodCOD))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestOrderService_Checkout_ClampsToStock(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	product := seedProduct(t, f.repo, f.shop.ID, 10, 5)
	_, err := f.cart.AddItem(ctx, f.customer.ID, models.KindProduct, product.ID, 5)
	require.NoError(t, err)

	// Stock shrank between add-to-cart and checkout.
	product.Stock = 3
	require.NoError(t, f.repo.SaveProduct(ctx, product))

	result, err := f.orders.Checkout(ctx, f.customer.ID, checkoutInput(models.MethodCOD))
	require.NoError(t, err)
	require.Len(t, result.Order.Items, 1)
	assert.Equal(t, uint(3), result.Order.Items[0].Quantity)
	assert.Equal(t, 30.0, result.Order.TotalAmount)

	fresh, err := f.repo.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(0), fresh.Stock)
}

func TestOrderService_Checkout_HardFailWithoutClamp(t *testing.T) {
	f := newOrderFixture(t)
	f.orders.ClampToStock = false
	ctx := context.Background()

	product := seedProduct(t, f.repo, f.shop.ID, 10, 5)
	other := seedProduct(t, f.repo, f.shop.ID, 20, 5)

	_, err := f.cart.AddItem(ctx, f.customer.ID, models.KindProduct, other.ID, 1)
	require.NoError(t, err)
	_, err = f.cart.AddItem(ctx, f.customer.ID, models.KindProduct, product.ID, 5)
	require.NoError(t, err)

	product.Stock = 3
	require.NoError(t, f.repo.SaveProduct(ctx, product))

	_, err = f.orders.Checkout(ctx, f.customer.ID, checkoutInput(models.MethodCOD))
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// All-or-nothing: nothing was decremented, the cart survived intact
	// and no order row exists.
	freshOther, err := f.repo.GetProduct(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(5), freshOther.Stock)

	n, err := f.cart.Count(ctx, f.customer.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	orders, err := f.repo.ListOrdersByCustomer(ctx, f.customer.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderService_Checkout_ZeroStockNeverClamps(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	product := seedProduct(t, f.repo, f.shop.ID, 10, 2)
	_, err := f.cart.AddItem(ctx, f.customer.ID, models.KindProduct, product.ID, 2)
	require.NoError(t, err)

	product.Stock = 0
	require.NoError(t, f.repo.SaveProduct(ctx, product))

	_, err = f.orders.Checkout(ctx, f.customer.ID, checkoutInput(models.MethodCOD))
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestOrderService_Checkout_InactiveProductFails(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	product := seedProduct(t, f.repo, f.shop.ID, 10, 5)
	_, err := f.cart.AddItem(ctx, f.customer.ID, models.KindProduct, product.ID, 1)
	require.NoError(t, err)

	require.NoError(t, f.repo.SetProductActive(ctx, product.ID, false))

	_, err = f.orders.Checkout(ctx, f.customer.ID, checkoutInput(models.MethodCOD))
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestOrderService_Checkout_UniqueOrderNumbers(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	product := seedProduct(t, f.repo, f.shop.ID, 10, 100)

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		_, err := f.cart.AddItem(ctx, f.customer.ID, models.KindProduct, product.ID, 1)
		require.NoError(t, err)

		result, err := f.orders.Checkout(ctx, f.customer.ID, checkoutInput(models.MethodCOD))
		require.NoError(t, err)
		assert.False(t, seen[result.Order.OrderNumber])
		seen[result.Order.OrderNumber] = true
	}
}

func TestOrderService_QRFlow(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	product := seedProduct(t, f.repo, f.shop.ID, 120, 5)
	_, err := f.cart.AddItem(ctx, f.customer.ID, models.KindProduct, product.ID, 1)
	require.NoError(t, err)

	result, err := f.orders.Checkout(ctx, f.customer.ID, checkoutInput(models.MethodQR))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingPayment, result.Order.Status)
	assert.True(t, strings.HasPrefix(result.UPIString, "upi://pay?"))
	assert.Contains(t, result.UPIString, "shop%40upi")
	assert.Contains(t, result.UPIString, "120.00")

	// The owner hears nothing until the payment confirms.
	assert.Empty(t, notificationsFor(t, f.repo, f.owner.ID))

	order, err := f.orders.ConfirmQRPayment(ctx, f.customer.ID, result.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, order.Status)
	assert.Equal(t, models.PaymentCompleted, order.PaymentStatus)
	assert.Len(t, notificationsFor(t, f.repo, f.owner.ID), 1)

	_, err = f.orders.ConfirmQRPayment(ctx, f.customer.ID, result.Order.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestOrderService_CardFlow(t *testing.T) {
	f := newOrderFixture(t)
	f.orders.Gateway = payment.NewClient("", "")
	ctx := context.Background()

	product := seedProduct(t, f.repo, f.shop.ID, 500, 5)
	_, err := f.cart.AddItem(ctx, f.customer.ID, models.KindProduct, product.ID, 1)
	require.NoError(t, err)

	result, err := f.orders.Checkout(ctx, f.customer.ID, checkoutInput(models.MethodCard))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingPayment, result.Order.Status)
	assert.True(t, strings.HasPrefix(result.Order.PaymentIntentID, "pi_"))

	order, err := f.orders.PaymentSuccess(ctx, f.customer.ID, result.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, order.PaymentStatus)
	assert.Equal(t, models.StatusConfirmed, order.Status)

	_, err = f.orders.CreatePaymentIntent(ctx, f.customer.ID, order.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestOrderService_Cancel(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	product := seedProduct(t, f.repo, f.shop.ID, 100, 5)
	_, err := f.cart.AddItem(ctx, f.customer.ID, models.KindProduct, product.ID, 1)
	require.NoError(t, err)

	result, err := f.orders.Checkout(ctx, f.customer.ID, checkoutInput(models.MethodCOD))
	require.NoError(t, err)

	stranger := seedUser(t, f.repo, models.RoleCustomer)
	_, err = f.orders.CancelOrder(ctx, stranger.ID, result.Order.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	order, err := f.orders.CancelOrder(ctx, f.customer.ID, result.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, order.Status)
	assert.Equal(t, models.PaymentCancelled, order.PaymentStatus)

	_, err = f.orders.CancelOrder(ctx, f.customer.ID, result.Order.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestOrderService_Cancel_DeliveredRefused(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	product := seedProduct(t, f.repo, f.shop.ID, 100, 5)
	_, err := f.cart.AddItem(ctx, f.customer.ID, models.KindProduct, product.ID, 1)
	require.NoError(t, err)

	result, err := f.orders.Checkout(ctx, f.customer.ID, checkoutInput(models.MethodCOD))
	require.NoError(t, err)

	require.NoError(t, f.repo.UpdateOrderStatus(ctx, result.Order.ID, models.StatusDelivered))

	_, err = f.orders.CancelOrder(ctx, f.customer.ID, result.Order.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	product := seedProduct(t, f.repo, f.shop.ID, 100, 5)
	_, err := f.cart.AddItem(ctx, f.customer.ID, models.KindProduct, product.ID, 1)
	require.NoError(t, err)

	result, err := f.orders.Checkout(ctx, f.customer.ID, checkoutInput(models.MethodCOD))
	require.NoError(t, err)
	orderID := result.Order.ID

	// A shop owner with no lines on this order is shut out.
	otherOwner := seedUser(t, f.repo, models.RoleShopOwner)
	seedShop(t, f.repo, otherOwner.ID)
	_, err = f.orders.UpdateStatus(ctx, otherOwner.ID, orderID, models.StatusProcessing)
	assert.ErrorIs(t, err, ErrUnauthorized)

	order, err := f.orders.UpdateStatus(ctx, f.owner.ID, orderID, models.StatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, order.Status)

	// Skipping shipped is not a legal move.
	_, err = f.orders.UpdateStatus(ctx, f.owner.ID, orderID, models.StatusDelivered)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.orders.UpdateStatus(ctx, f.owner.ID, orderID, models.StatusShipped)
	require.NoError(t, err)
	_, err = f.orders.UpdateStatus(ctx, f.owner.ID, orderID, models.StatusDelivered)
	require.NoError(t, err)

	// The customer was told about each move.
	assert.GreaterOrEqual(t, len(notificationsFor(t, f.repo, f.customer.ID)), 3)

	_, err = f.orders.UpdateStatus(ctx, f.owner.ID, orderID, models.OrderStatus("lost"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestOrderService_NotifyOncePerShop(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	secondOwner := seedUser(t, f.repo, models.RoleShopOwner)
	secondShop := seedShop(t, f.repo, secondOwner.ID)

	p1 := seedProduct(t, f.repo, f.shop.ID, 10, 5)
	p2 := seedProduct(t, f.repo, f.shop.ID, 20, 5)
	p3 := seedProduct(t, f.repo, secondShop.ID, 30, 5)

	for _, p := range []uint{p1.ID, p2.ID, p3.ID} {
		_, err := f.cart.AddItem(ctx, f.customer.ID, models.KindProduct, p, 1)
		require.NoError(t, err)
	}

	_, err := f.orders.Checkout(ctx, f.customer.ID, checkoutInput(models.MethodCOD))
	require.NoError(t, err)

	assert.Len(t, notificationsFor(t, f.repo, f.owner.ID), 1)
	assert.Len(t, notificationsFor(t, f.repo, secondOwner.ID), 1)
}

func TestOrderService_GetOrderAccess(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	product := seedProduct(t, f.repo, f.shop.ID, 100, 5)
	_, err := f.cart.AddItem(ctx, f.customer.ID, models.KindProduct, product.ID, 1)
	require.NoError(t, err)

	result, err := f.orders.Checkout(ctx, f.customer.ID, checkoutInput(models.MethodCOD))
	require.NoError(t, err)

	_, err = f.orders.GetOrder(ctx, f.customer.ID, models.RoleCustomer, result.Order.ID)
	require.NoError(t, err)

	stranger := seedUser(t, f.repo, models.RoleCustomer)
	_, err = f.orders.GetOrder(ctx, stranger.ID, models.RoleCustomer, result.Order.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	admin := seedUser(t, f.repo, models.RoleAdmin)
	_, err = f.orders.GetOrder(ctx, admin.ID, models.RoleAdmin, result.Order.ID)
	require.NoError(t, err)

	_, err = f.orders.GetOrder(ctx, f.customer.ID, models.RoleCustomer, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderService_ShopOrders(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	product := seedProduct(t, f.repo, f.shop.ID, 100, 5)
	_, err := f.cart.AddItem(ctx, f.customer.ID, models.KindProduct, product.ID, 2)
	require.NoError(t, err)

	_, err = f.orders.Checkout(ctx, f.customer.ID, checkoutInput(models.MethodCOD))
	require.NoError(t, err)

	items, total, err := f.orders.ShopOrders(ctx, f.owner.ID, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, product.ID, items[0].ItemID)

	shopless := seedUser(t, f.repo, models.RoleShopOwner)
	_, _, err = f.orders.ShopOrders(ctx, shopless.ID, 10, 0)
	assert.ErrorIs(t, err, ErrNotFound)
}
