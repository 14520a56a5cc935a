package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopserv/shopserv/internal/models"
	"github.com/shopserv/shopserv/internal/repo"
)

func TestCatalogService_CreateShop_OnePerOwner(t *testing.T) {
	r := newTestRepo(t)
	svc := &CatalogService{Repo: r}
	ctx := context.Background()

	owner := seedUser(t, r, models.RoleShopOwner)

	shop, err := svc.CreateShop(ctx, owner.ID, ShopInput{Name: "Corner Store", Address: "1 Main St", City: "Pune"})
	require.NoError(t, err)
	assert.True(t, shop.IsActive)
	assert.True(t, shop.CODAvailable)

	_, err = svc.CreateShop(ctx, owner.ID, ShopInput{Name: "Second Store", Address: "2 Main St"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.CreateShop(ctx, seedUser(t, r, models.RoleShopOwner).ID, ShopInput{Name: "", Address: "3 Main St"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCatalogService_UpdateShop(t *testing.T) {
	r := newTestRepo(t)
	svc := &CatalogService{Repo: r}
	ctx := context.Background()

	owner := seedUser(t, r, models.RoleShopOwner)
	seedShop(t, r, owner.ID)

	cod := false
	shop, err := svc.UpdateShop(ctx, owner.ID, ShopInput{City: "Mumbai", CODAvailable: &cod, DeliveryCharge: f64(40)})
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", shop.City)
	assert.False(t, shop.CODAvailable)
	assert.Equal(t, 40.0, shop.DeliveryCharge)

	// Free delivery is a legal value, not an omitted field.
	shop, err = svc.UpdateShop(ctx, owner.ID, ShopInput{DeliveryCharge: f64(0)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, shop.DeliveryCharge)
	assert.Equal(t, "Mumbai", shop.City)

	shopless := seedUser(t, r, models.RoleShopOwner)
	_, err = svc.UpdateShop(ctx, shopless.ID, ShopInput{City: "Delhi"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogService_GetShop_HiddenWhenInactive(t *testing.T) {
	r := newTestRepo(t)
	svc := &CatalogService{Repo: r}
	ctx := context.Background()

	owner := seedUser(t, r, models.RoleShopOwner)
	shop := seedShop(t, r, owner.ID)

	_, err := svc.GetShop(ctx, shop.ID)
	require.NoError(t, err)

	require.NoError(t, r.SetShopActive(ctx, shop.ID, false))
	_, err = svc.GetShop(ctx, shop.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Hidden from listings too.
	shops, total, err := svc.ListShops(ctx, repo.ShopFilter{}, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
	assert.Empty(t, shops)
}

func TestCatalogService_ProductOwnership(t *testing.T) {
	r := newTestRepo(t)
	svc := &CatalogService{Repo: r}
	ctx := context.Background()

	owner := seedUser(t, r, models.RoleShopOwner)
	seedShop(t, r, owner.ID)
	rival := seedUser(t, r, models.RoleShopOwner)
	seedShop(t, r, rival.ID)

	ten, eight := uint(10), uint(8)
	product, err := svc.CreateProduct(ctx, owner.ID, ProductInput{Name: "Soap", Price: f64(25), Stock: &ten})
	require.NoError(t, err)

	_, err = svc.UpdateProduct(ctx, rival.ID, product.ID, ProductInput{Price: f64(1)})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, svc.DeleteProduct(ctx, rival.ID, product.ID), ErrUnauthorized)

	updated, err := svc.UpdateProduct(ctx, owner.ID, product.ID, ProductInput{Price: f64(30), Stock: &eight})
	require.NoError(t, err)
	assert.Equal(t, 30.0, updated.Price)
	assert.Equal(t, uint(8), updated.Stock)

	// A patch that never mentions stock or price leaves them alone;
	// an explicit zero price sticks.
	untouched, err := svc.UpdateProduct(ctx, owner.ID, product.ID, ProductInput{Description: "gentle"})
	require.NoError(t, err)
	assert.Equal(t, uint(8), untouched.Stock)
	assert.Equal(t, 30.0, untouched.Price)

	free, err := svc.UpdateProduct(ctx, owner.ID, product.ID, ProductInput{Price: f64(0)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, free.Price)

	require.NoError(t, svc.DeleteProduct(ctx, owner.ID, product.ID))
	_, err = svc.GetProduct(ctx, product.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogService_CreateProduct_RequiresShop(t *testing.T) {
	r := newTestRepo(t)
	svc := &CatalogService{Repo: r}

	shopless := seedUser(t, r, models.RoleShopOwner)
	_, err := svc.CreateProduct(context.Background(), shopless.ID, ProductInput{Name: "Soap", Price: f64(25)})
	assert.ErrorIs(t, err, ErrNotFound)

	owner := seedUser(t, r, models.RoleShopOwner)
	seedShop(t, r, owner.ID)
	_, err = svc.CreateProduct(context.Background(), owner.ID, ProductInput{Name: "", Price: f64(25)})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateProduct(context.Background(), owner.ID, ProductInput{Name: "Soap", Price: f64(-1)})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCatalogService_ServiceCRUD(t *testing.T) {
	r := newTestRepo(t)
	svc := &CatalogService{Repo: r}
	ctx := context.Background()

	owner := seedUser(t, r, models.RoleShopOwner)
	seedShop(t, r, owner.ID)

	created, err := svc.CreateService(ctx, owner.ID, ServiceInput{Name: "Haircut", Price: f64(150), Duration: "30m"})
	require.NoError(t, err)

	updated, err := svc.UpdateService(ctx, owner.ID, created.ID, ServiceInput{Price: f64(180)})
	require.NoError(t, err)
	assert.Equal(t, 180.0, updated.Price)

	services, total, err := svc.ListServices(ctx, repo.ItemFilter{}, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, services, 1)

	require.NoError(t, svc.DeleteService(ctx, owner.ID, created.ID))
}

func TestCatalogService_SearchFallsBackWithoutES(t *testing.T) {
	r := newTestRepo(t)
	svc := &CatalogService{Repo: r}
	ctx := context.Background()

	owner := seedUser(t, r, models.RoleShopOwner)
	shop := seedShop(t, r, owner.ID)

	p := seedProduct(t, r, shop.ID, 25, 10)
	p.Name = "Lavender Soap"
	require.NoError(t, r.SaveProduct(ctx, p))
	seedProduct(t, r, shop.ID, 30, 10)

	products, total, err := svc.SearchProducts(ctx, "lavender", 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, p.ID, products[0].ID)

	_, _, err = svc.SearchProducts(ctx, "  ", 10, 0)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCatalogService_SearchExcludesInactive(t *testing.T) {
	r := newTestRepo(t)
	svc := &CatalogService{Repo: r}
	admin := &AdminService{Repo: r}
	ctx := context.Background()

	owner := seedUser(t, r, models.RoleShopOwner)
	shop := seedShop(t, r, owner.ID)

	keep := seedProduct(t, r, shop.ID, 25, 10)
	keep.Name = "Lavender Soap"
	require.NoError(t, r.SaveProduct(ctx, keep))
	hide := seedProduct(t, r, shop.ID, 30, 10)
	hide.Name = "Lavender Oil"
	require.NoError(t, r.SaveProduct(ctx, hide))

	products, total, err := svc.SearchProducts(ctx, "lavender", 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	// A moderated product drops out of search results.
	_, err = admin.SetProductActive(ctx, hide.ID, false)
	require.NoError(t, err)

	products, total, err = svc.SearchProducts(ctx, "lavender", 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, keep.ID, products[0].ID)
}

func TestCatalogService_Dashboard(t *testing.T) {
	r := newTestRepo(t)
	catalog := &CatalogService{Repo: r}
	orders := &OrderService{Repo: r, ClampToStock: true}
	cart := &CartService{Repo: r}
	ctx := context.Background()

	owner := seedUser(t, r, models.RoleShopOwner)
	shop := seedShop(t, r, owner.ID)
	product := seedProduct(t, r, shop.ID, 100, 10)
	seedProduct(t, r, shop.ID, 40, 10)

	customer := seedUser(t, r, models.RoleCustomer)
	_, err := cart.AddItem(ctx, customer.ID, models.KindProduct, product.ID, 2)
	require.NoError(t, err)
	result, err := orders.Checkout(ctx, customer.ID, checkoutInput(models.MethodQR))
	require.NoError(t, err)
	_, err = orders.ConfirmQRPayment(ctx, customer.ID, result.Order.ID)
	require.NoError(t, err)

	dash, err := catalog.Dashboard(ctx, owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, dash.ProductCount)
	assert.EqualValues(t, 1, dash.OrderCount)
	assert.Equal(t, 200.0, dash.Revenue)
}
