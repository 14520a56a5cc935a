package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shopserv/shopserv/internal/logging"
	"github.com/shopserv/shopserv/internal/mykafka"
	"github.com/shopserv/shopserv/internal/service"
	"github.com/shopserv/shopserv/internal/transport"
)

type OrderHTTP struct {
	Svc      *service.OrderService
	Producer *mykafka.Producer
}

func (h *OrderHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.checkout")

	customerID, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	result, err := h.Svc.Checkout(ctx, customerID, service.CheckoutInput{
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		ShippingCity:    req.ShippingCity,
		ShippingState:   req.ShippingState,
		ShippingZip:     req.ShippingZip,
		ShippingPhone:   req.ShippingPhone,
		Notes:           req.Notes,
		TermsAccepted:   req.TermsAccepted,
	})
	if err != nil {
		he := httpError(err)
		l.Warn("checkout_error", "status", he.Code, "error", err)
		return he
	}

	event := map[string]any{
		"type":         "order_created",
		"order_id":     result.Order.ID,
		"order_number": result.Order.OrderNumber,
		"total":        result.Order.TotalAmount,
		"method":       result.Order.PaymentMethod,
	}
	if err := h.Producer.PublishEvent(ctx, "order_events", result.Order.OrderNumber, event); err != nil {
		l.Warn("publish_error", "error", err)
	}

	l.Info("checkout_success", "order_number", result.Order.OrderNumber)
	return c.JSON(http.StatusCreated, result)
}

func (h *OrderHTTP) ListMyOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_my")

	customerID, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	offset, limit := pageParams(c)
	orders, err := h.Svc.ListMyOrders(ctx, customerID, limit, offset)
	if err != nil {
		l.Error("list_orders_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	id, err := paramID(c)
	if err != nil {
		return err
	}
	requesterID, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	order, err := h.Svc.GetOrder(ctx, requesterID, userRole(c), id)
	if err != nil {
		he := httpError(err)
		l.Warn("get_order_error", "status", he.Code, "error", err)
		return he
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel")

	id, err := paramID(c)
	if err != nil {
		return err
	}
	customerID, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	order, err := h.Svc.CancelOrder(ctx, customerID, id)
	if err != nil {
		he := httpError(err)
		l.Warn("cancel_order_error", "status", he.Code, "error", err)
		return he
	}

	event := map[string]any{"type": "order_cancelled", "order_number": order.OrderNumber}
	if err := h.Producer.PublishEvent(ctx, "order_events", order.OrderNumber, event); err != nil {
		l.Warn("publish_error", "error", err)
	}

	l.Info("cancel_order_success", "order_number", order.OrderNumber)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) ConfirmQRPayment(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.confirm_qr")

	id, err := paramID(c)
	if err != nil {
		return err
	}
	customerID, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	order, err := h.Svc.ConfirmQRPayment(ctx, customerID, id)
	if err != nil {
		he := httpError(err)
		l.Warn("confirm_qr_error", "status", he.Code, "error", err)
		return he
	}

	event := map[string]any{"type": "payment_completed", "order_number": order.OrderNumber, "method": order.PaymentMethod}
	if err := h.Producer.PublishEvent(ctx, "order_events", order.OrderNumber, event); err != nil {
		l.Warn("publish_error", "error", err)
	}

	l.Info("confirm_qr_success", "order_number", order.OrderNumber)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) CreatePaymentIntent(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_payment_intent")

	id, err := paramID(c)
	if err != nil {
		return err
	}
	customerID, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	intent, err := h.Svc.CreatePaymentIntent(ctx, customerID, id)
	if err != nil {
		he := httpError(err)
		l.Warn("create_payment_intent_error", "status", he.Code, "error", err)
		return he
	}
	return c.JSON(http.StatusOK, intent)
}

func (h *OrderHTTP) PaymentSuccess(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.payment_success")

	id, err := paramID(c)
	if err != nil {
		return err
	}
	customerID, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	order, err := h.Svc.PaymentSuccess(ctx, customerID, id)
	if err != nil {
		he := httpError(err)
		l.Warn("payment_success_error", "status", he.Code, "error", err)
		return he
	}

	event := map[string]any{"type": "payment_completed", "order_number": order.OrderNumber, "method": order.PaymentMethod}
	if err := h.Producer.PublishEvent(ctx, "order_events", order.OrderNumber, event); err != nil {
		l.Warn("publish_error", "error", err)
	}

	l.Info("payment_success", "order_number", order.OrderNumber)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) ShopOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.shop_orders")

	ownerID, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	offset, limit := pageParams(c)
	items, total, err := h.Svc.ShopOrders(ctx, ownerID, limit, offset)
	if err != nil {
		he := httpError(err)
		l.Warn("shop_orders_error", "status", he.Code, "error", err)
		return he
	}
	return c.JSON(http.StatusOK, transport.PageResponse{Total: total, Items: items})
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, err := paramID(c)
	if err != nil {
		return err
	}
	ownerID, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.StatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_status_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.UpdateStatus(ctx, ownerID, id, req.Status)
	if err != nil {
		he := httpError(err)
		l.Warn("update_status_error", "status", he.Code, "error", err)
		return he
	}

	event := map[string]any{"type": "order_status_changed", "order_number": order.OrderNumber, "new_status": order.Status}
	if err := h.Producer.PublishEvent(ctx, "order_events", order.OrderNumber, event); err != nil {
		l.Warn("publish_error", "error", err)
	}

	l.Info("update_status_success", "order_number", order.OrderNumber, "new_status", order.Status)
	return c.JSON(http.StatusOK, order)
}
