package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/shopserv/shopserv/internal/models"
	"github.com/shopserv/shopserv/internal/service"
	"github.com/shopserv/shopserv/internal/tokens"
)

// AuthMiddleware validates the access cookie and, when it has merely
// expired, rotates the pair off the refresh cookie in the same request.
type AuthMiddleware struct {
	Issuer *tokens.Issuer
	Tokens *service.TokenService
}

type validatorFunc func(claims *tokens.AccessClaims) error

func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

func (m *AuthMiddleware) RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return m.requireAuthWithValidator(next, func(claims *tokens.AccessClaims) error {
			for _, r := range roles {
				if claims.Role == r {
					return nil
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
		})
	}
}

func (m *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.RequireRole(models.RoleAdmin)(next)
}

func (m *AuthMiddleware) RequireShopOwner(next echo.HandlerFunc) echo.HandlerFunc {
	return m.RequireRole(models.RoleShopOwner)(next)
}

func (m *AuthMiddleware) requireAuthWithValidator(next echo.HandlerFunc, validator validatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		accessCookie, err := c.Cookie("accessToken")
		if err != nil || accessCookie.Value == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		claims, err := m.Issuer.ParseAccess(accessCookie.Value)
		if err == nil && claims != nil {
			if validator != nil {
				if vErr := validator(claims); vErr != nil {
					return vErr
				}
			}
			setUserContext(c, claims)
			return next(c)
		}

		if !errors.Is(err, jwt.ErrTokenExpired) {
			clearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
		}

		refreshCookie, rErr := c.Cookie("refreshToken")
		if rErr != nil || refreshCookie.Value == "" {
			clearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
		}

		pair, refErr := m.Tokens.Rotate(c.Request().Context(), refreshCookie.Value)
		if refErr != nil {
			clearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "refresh failed")
		}
		setAuthCookies(c, pair)

		newClaims, pErr := m.Issuer.ParseAccess(pair.AccessToken)
		if pErr != nil || newClaims == nil {
			clearAuthCookies(c)
			return echo.NewHTTPError(http.StatusUnauthorized, "new access token invalid")
		}
		if validator != nil {
			if vErr := validator(newClaims); vErr != nil {
				clearAuthCookies(c)
				return vErr
			}
		}

		setUserContext(c, newClaims)
		return next(c)
	}
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set("user_id", claims.Subject)
	c.Set("role", string(claims.Role))
}

func setAuthCookies(c echo.Context, pair *service.TokenPair) {
	c.SetCookie(tokens.CreateCookie("accessToken", pair.AccessToken, "/", pair.AccessExp))
	c.SetCookie(tokens.CreateCookie("refreshToken", pair.RefreshToken, "/", pair.RefreshExp))
}

func clearAuthCookies(c echo.Context) {
	c.SetCookie(tokens.DeleteCookie("accessToken", "/"))
	c.SetCookie(tokens.DeleteCookie("refreshToken", "/"))
}

func userID(c echo.Context) (uint, error) {
	v, ok := c.Get("user_id").(string)
	if !ok || v == "" {
		return 0, errors.New("unauthorized")
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, errors.New("unauthorized")
	}
	return uint(id), nil
}

func userRole(c echo.Context) models.Role {
	v, _ := c.Get("role").(string)
	return models.Role(v)
}
