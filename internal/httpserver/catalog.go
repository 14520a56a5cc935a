package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/shopserv/shopserv/internal/logging"
	"github.com/shopserv/shopserv/internal/mykafka"
	"github.com/shopserv/shopserv/internal/repo"
	"github.com/shopserv/shopserv/internal/service"
	"github.com/shopserv/shopserv/internal/transport"
	"github.com/shopserv/shopserv/internal/util"
)

type CatalogHTTP struct {
	Svc      *service.CatalogService
	Producer *mykafka.Producer
}

func paramID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

func pageParams(c echo.Context) (offset, limit int) {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	return util.Calculate(page, size)
}

func (h *CatalogHTTP) ListShops(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_shops")

	offset, limit := pageParams(c)
	f := repo.ShopFilter{
		Search:      c.QueryParam("search"),
		City:        c.QueryParam("city"),
		ServiceType: c.QueryParam("service_type"),
	}

	shops, total, err := h.Svc.ListShops(ctx, f, limit, offset)
	if err != nil {
		l.Error("list_shops_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, transport.PageResponse{Total: total, Items: shops})
}

func (h *CatalogHTTP) GetShop(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_shop")

	id, err := paramID(c)
	if err != nil {
		return err
	}

	shop, err := h.Svc.GetShop(ctx, id)
	if err != nil {
		he := httpError(err)
		l.Warn("get_shop_error", "status", he.Code, "error", err)
		return he
	}
	return c.JSON(http.StatusOK, shop)
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_products")

	offset, limit := pageParams(c)
	f := repo.ItemFilter{
		Search:   c.QueryParam("search"),
		Category: c.QueryParam("category"),
	}
	if sid := c.QueryParam("shop_id"); sid != "" {
		f.ShopID = uint(util.ParseIntDefault(sid, 0))
	}

	products, total, err := h.Svc.ListProducts(ctx, f, limit, offset)
	if err != nil {
		l.Error("list_products_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, transport.PageResponse{Total: total, Items: products})
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_product")

	id, err := paramID(c)
	if err != nil {
		return err
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		he := httpError(err)
		l.Warn("get_product_error", "status", he.Code, "error", err)
		return he
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search_products")

	offset, limit := pageParams(c)
	products, total, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), limit, offset)
	if err != nil {
		he := httpError(err)
		l.Warn("search_products_error", "status", he.Code, "error", err)
		return he
	}
	return c.JSON(http.StatusOK, transport.PageResponse{Total: total, Items: products})
}

func (h *CatalogHTTP) ListServices(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list_services")

	offset, limit := pageParams(c)
	f := repo.ItemFilter{
		Search:   c.QueryParam("search"),
		Category: c.QueryParam("category"),
	}
	if sid := c.QueryParam("shop_id"); sid != "" {
		f.ShopID = uint(util.ParseIntDefault(sid, 0))
	}

	services, total, err := h.Svc.ListServices(ctx, f, limit, offset)
	if err != nil {
		l.Error("list_services_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, transport.PageResponse{Total: total, Items: services})
}

func (h *CatalogHTTP) GetService(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_service")

	id, err := paramID(c)
	if err != nil {
		return err
	}

	svc, err := h.Svc.GetService(ctx, id)
	if err != nil {
		he := httpError(err)
		l.Warn("get_service_error", "status", he.Code, "error", err)
		return he
	}
	return c.JSON(http.StatusOK, svc)
}

func (h *CatalogHTTP) CreateShop(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_shop")

	ownerID, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req service.ShopInput
	if err := c.Bind(&req); err != nil {
		l.Warn("create_shop_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	shop, err := h.Svc.CreateShop(ctx, ownerID, req)
	if err != nil {
		he := httpError(err)
		l.Warn("create_shop_error", "status", he.Code, "error", err)
		return he
	}

	event := map[string]any{"type": "shop_created", "shop_id": shop.ID, "owner_id": ownerID}
	if err := h.Producer.PublishEvent(ctx, "shop_events", shop.Name, event); err != nil {
		l.Warn("publish_error", "error", err)
	}

	l.Info("create_shop_success", "shop_id", shop.ID)
	return c.JSON(http.StatusCreated, shop)
}

func (h *CatalogHTTP) GetMyShop(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_my_shop")

	ownerID, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	shop, err := h.Svc.GetMyShop(ctx, ownerID)
	if err != nil {
		he := httpError(err)
		l.Warn("get_my_shop_error", "status", he.Code, "error", err)
		return he
	}
	return c.JSON(http.StatusOK, shop)
}

func (h *CatalogHTTP) UpdateShop(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update_shop")

	ownerID, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req service.ShopInput
	if err := c.Bind(&req); err != nil {
		l.Warn("update_shop_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	shop, err := h.Svc.UpdateShop(ctx, ownerID, req)
	if err != nil {
		he := httpError(err)
		l.Warn("update_shop_error", "status", he.Code, "error", err)
		return he
	}
	return c.JSON(http.StatusOK, shop)
}

func (h *CatalogHTTP) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.dashboard")

	ownerID, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	dash, err := h.Svc.Dashboard(ctx, ownerID)
	if err != nil {
		he := httpError(err)
		l.Warn("dashboard_error", "status", he.Code, "error", err)
		return he
	}
	return c.JSON(http.StatusOK, dash)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_product")

	ownerID, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req service.ProductInput
	if err := c.Bind(&req); err != nil {
		l.Warn("create_product_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Svc.CreateProduct(ctx, ownerID, req)
	if err != nil {
		he := httpError(err)
		l.Warn("create_product_error", "status", he.Code, "error", err)
		return he
	}

	event := map[string]any{"type": "product_created", "product_id": product.ID, "shop_id": product.ShopID}
	if err := h.Producer.PublishEvent(ctx, "product_events", product.Name, event); err != nil {
		l.Warn("publish_error", "error", err)
	}

	l.Info("create_product_success", "product_id", product.ID)
	return c.JSON(http.StatusCreated, product)
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update_product")

	ownerID, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	var req service.ProductInput
	if err := c.Bind(&req); err != nil {
		l.Warn("update_product_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Svc.UpdateProduct(ctx, ownerID, id, req)
	if err != nil {
		he := httpError(err)
		l.Warn("update_product_error", "status", he.Code, "error", err)
		return he
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_product")

	ownerID, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.DeleteProduct(ctx, ownerID, id); err != nil {
		he := httpError(err)
		l.Warn("delete_product_error", "status", he.Code, "error", err)
		return he
	}

	event := map[string]any{"type": "product_deleted", "product_id": id}
	if err := h.Producer.PublishEvent(ctx, "product_events", c.Param("id"), event); err != nil {
		l.Warn("publish_error", "error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) CreateService(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_service")

	ownerID, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req service.ServiceInput
	if err := c.Bind(&req); err != nil {
		l.Warn("create_service_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	svc, err := h.Svc.CreateService(ctx, ownerID, req)
	if err != nil {
		he := httpError(err)
		l.Warn("create_service_error", "status", he.Code, "error", err)
		return he
	}

	l.Info("create_service_success", "service_id", svc.ID)
	return c.JSON(http.StatusCreated, svc)
}

func (h *CatalogHTTP) UpdateService(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update_service")

	ownerID, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	var req service.ServiceInput
	if err := c.Bind(&req); err != nil {
		l.Warn("update_service_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	svc, err := h.Svc.UpdateService(ctx, ownerID, id, req)
	if err != nil {
		he := httpError(err)
		l.Warn("update_service_error", "status", he.Code, "error", err)
		return he
	}
	return c.JSON(http.StatusOK, svc)
}

func (h *CatalogHTTP) DeleteService(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.delete_service")

	ownerID, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.DeleteService(ctx, ownerID, id); err != nil {
		he := httpError(err)
		l.Warn("delete_service_error", "status", he.Code, "error", err)
		return he
	}
	return c.NoContent(http.StatusNoContent)
}
