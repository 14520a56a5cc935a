package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shopserv/shopserv/internal/logging"
	"github.com/shopserv/shopserv/internal/service"
	"github.com/shopserv/shopserv/internal/util"
)

type NotificationHTTP struct {
	Svc *service.NotificationService
}

func (h *NotificationHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notification.list")

	id, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	limit := util.ParseIntDefault(c.QueryParam("limit"), 20)
	items, err := h.Svc.List(ctx, id, limit)
	if err != nil {
		l.Error("list_notifications_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *NotificationHTTP) MarkRead(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "notification.mark_read")

	id, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	notifID, err := paramID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.MarkRead(ctx, id, notifID); err != nil {
		he := httpError(err)
		l.Warn("mark_read_error", "status", he.Code, "error", err)
		return he
	}
	return c.NoContent(http.StatusOK)
}
