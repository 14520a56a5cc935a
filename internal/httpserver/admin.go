package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shopserv/shopserv/internal/logging"
	"github.com/shopserv/shopserv/internal/service"
	"github.com/shopserv/shopserv/internal/transport"
)

type AdminHTTP struct {
	Svc *service.AdminService
}

func (h *AdminHTTP) Stats(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.stats")

	stats, err := h.Svc.Stats(ctx)
	if err != nil {
		l.Error("stats_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *AdminHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_users")

	offset, limit := pageParams(c)
	users, err := h.Svc.ListUsers(ctx, limit, offset)
	if err != nil {
		l.Error("list_users_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AdminHTTP) ToggleUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.toggle_user")

	id, err := paramID(c)
	if err != nil {
		return err
	}

	var req transport.ToggleRequest
	if err := c.Bind(&req); err != nil || req.IsActive == nil {
		l.Warn("toggle_user_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "is_active required")
	}

	user, err := h.Svc.SetUserActive(ctx, id, *req.IsActive)
	if err != nil {
		he := httpError(err)
		l.Warn("toggle_user_error", "status", he.Code, "error", err)
		return he
	}

	l.Info("toggle_user_success", "user_id", user.ID, "is_active", user.IsActive)
	return c.JSON(http.StatusOK, user)
}

func (h *AdminHTTP) ListShops(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_shops")

	offset, limit := pageParams(c)
	shops, err := h.Svc.ListShops(ctx, limit, offset)
	if err != nil {
		l.Error("list_shops_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, shops)
}

func (h *AdminHTTP) ToggleShop(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.toggle_shop")

	id, err := paramID(c)
	if err != nil {
		return err
	}

	var req transport.ToggleRequest
	if err := c.Bind(&req); err != nil || req.IsActive == nil {
		l.Warn("toggle_shop_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "is_active required")
	}

	shop, err := h.Svc.SetShopActive(ctx, id, *req.IsActive)
	if err != nil {
		he := httpError(err)
		l.Warn("toggle_shop_error", "status", he.Code, "error", err)
		return he
	}

	l.Info("toggle_shop_success", "shop_id", shop.ID, "is_active", shop.IsActive)
	return c.JSON(http.StatusOK, shop)
}

func (h *AdminHTTP) ToggleProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.toggle_product")

	id, err := paramID(c)
	if err != nil {
		return err
	}

	var req transport.ToggleRequest
	if err := c.Bind(&req); err != nil || req.IsActive == nil {
		l.Warn("toggle_product_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "is_active required")
	}

	product, err := h.Svc.SetProductActive(ctx, id, *req.IsActive)
	if err != nil {
		he := httpError(err)
		l.Warn("toggle_product_error", "status", he.Code, "error", err)
		return he
	}
	return c.JSON(http.StatusOK, product)
}

func (h *AdminHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_orders")

	offset, limit := pageParams(c)
	orders, err := h.Svc.ListOrders(ctx, limit, offset)
	if err != nil {
		l.Error("list_orders_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, orders)
}
