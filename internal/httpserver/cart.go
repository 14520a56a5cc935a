package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shopserv/shopserv/internal/logging"
	"github.com/shopserv/shopserv/internal/service"
	"github.com/shopserv/shopserv/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	customerID, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	view, err := h.Svc.GetCart(ctx, customerID)
	if err != nil {
		l.Error("get_cart_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	customerID, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.AddCartRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_cart_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Svc.AddItem(ctx, customerID, req.ItemKind, req.ItemID, req.Quantity)
	if err != nil {
		he := httpError(err)
		l.Warn("add_cart_error", "status", he.Code, "error", err)
		return he
	}

	l.Info("add_cart_success", "cart_item_id", item.ID)
	return c.JSON(http.StatusCreated, item)
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	customerID, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	var req transport.UpdateCartRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_cart_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	item, err := h.Svc.UpdateQuantity(ctx, customerID, id, req.Quantity)
	if err != nil {
		he := httpError(err)
		l.Warn("update_cart_error", "status", he.Code, "error", err)
		return he
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	customerID, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.RemoveItem(ctx, customerID, id); err != nil {
		he := httpError(err)
		l.Warn("remove_cart_error", "status", he.Code, "error", err)
		return he
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) Count(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.count")

	customerID, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	n, err := h.Svc.Count(ctx, customerID)
	if err != nil {
		l.Error("count_cart_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, map[string]int64{"count": n})
}
