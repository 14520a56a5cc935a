package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shopserv/shopserv/internal/logging"
	"github.com/shopserv/shopserv/internal/mykafka"
	"github.com/shopserv/shopserv/internal/service"
	"github.com/shopserv/shopserv/internal/transport"
)

type AuthHTTP struct {
	Svc      *service.AuthService
	Tokens   *service.TokenService
	Producer *mykafka.Producer
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.Register(ctx, req.Email, req.Password, req.FullName, req.Phone, req.Role)
	if err != nil {
		he := httpError(err)
		l.Warn("register_error", "status", he.Code, "error", err)
		return he
	}

	event := map[string]any{"type": "user_registered", "user_id": user.ID, "role": user.Role}
	if err := h.Producer.PublishEvent(ctx, "user_events", user.Email, event); err != nil {
		l.Warn("publish_error", "error", err)
	}

	l.Info("register_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		he := httpError(err)
		l.Warn("login_error", "status", he.Code, "error", err)
		return he
	}

	pair, err := h.Tokens.IssuePair(ctx, user)
	if err != nil {
		l.Error("login_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	setAuthCookies(c, pair)

	l.Info("login_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	cookie, err := c.Cookie("refreshToken")
	if err != nil || cookie.Value == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
	}

	pair, err := h.Tokens.Rotate(ctx, cookie.Value)
	if err != nil {
		clearAuthCookies(c)
		he := httpError(err)
		l.Warn("refresh_error", "status", he.Code, "error", err)
		return he
	}
	setAuthCookies(c, pair)

	l.Info("refresh_success")
	return c.NoContent(http.StatusOK)
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	if cookie, err := c.Cookie("refreshToken"); err == nil && cookie.Value != "" {
		if err := h.Tokens.Revoke(ctx, cookie.Value); err != nil {
			l.Warn("logout_error", "error", err)
		}
	}
	clearAuthCookies(c)
	return c.NoContent(http.StatusOK)
}

func (h *AuthHTTP) ForgotPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.forgot_password")

	var req transport.ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("forgot_password_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	code, err := h.Svc.RequestPasswordReset(ctx, req.Email)
	if err != nil {
		he := httpError(err)
		l.Warn("forgot_password_error", "status", he.Code, "error", err)
		return he
	}

	if code != "" {
		event := map[string]any{"type": "password_reset_otp", "email": req.Email, "code": code}
		if err := h.Producer.PublishEvent(ctx, "notification_events", req.Email, event); err != nil {
			l.Warn("publish_error", "error", err)
		}
	}

	// Same body whether or not the account exists.
	return c.JSON(http.StatusOK, map[string]string{
		"message": "if the account exists, a reset code has been sent",
	})
}

func (h *AuthHTTP) VerifyOTP(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.verify_otp")

	var req transport.VerifyOTPRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("verify_otp_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.VerifyOTP(ctx, req.Email, req.Code); err != nil {
		he := httpError(err)
		l.Warn("verify_otp_error", "status", he.Code, "error", err)
		return he
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "code verified"})
}

func (h *AuthHTTP) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.reset_password")

	var req transport.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("reset_password_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.ResetPassword(ctx, req.Email, req.Code, req.NewPassword); err != nil {
		he := httpError(err)
		l.Warn("reset_password_error", "status", he.Code, "error", err)
		return he
	}

	l.Info("reset_password_success")
	return c.JSON(http.StatusOK, map[string]string{"message": "password updated"})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.me")

	id, err := userID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := h.Svc.GetUser(ctx, id)
	if err != nil {
		he := httpError(err)
		l.Warn("me_error", "status", he.Code, "error", err)
		return he
	}
	return c.JSON(http.StatusOK, user)
}
