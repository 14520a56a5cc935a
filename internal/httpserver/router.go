package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shopserv/shopserv/internal/models"
	"github.com/shopserv/shopserv/internal/service"
	"github.com/shopserv/shopserv/internal/tokens"
)

type Deps struct {
	Auth          *AuthHTTP
	Catalog       *CatalogHTTP
	Cart          *CartHTTP
	Order         *OrderHTTP
	Admin         *AdminHTTP
	Notifications *NotificationHTTP

	Issuer *tokens.Issuer
	Tokens *service.TokenService
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authMW := &AuthMiddleware{Issuer: d.Issuer, Tokens: d.Tokens}

	auth := e.Group("/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/logout", d.Auth.Logout)
	auth.POST("/forgot-password", d.Auth.ForgotPassword)
	auth.POST("/verify-otp", d.Auth.VerifyOTP)
	auth.POST("/reset-password", d.Auth.ResetPassword)
	auth.GET("/me", d.Auth.Me, authMW.RequireAuth)

	shops := e.Group("/shops")
	shops.GET("", d.Catalog.ListShops)
	shops.GET("/:id", d.Catalog.GetShop)

	products := e.Group("/products")
	products.GET("", d.Catalog.ListProducts)
	products.GET("/search", d.Catalog.SearchProducts)
	products.GET("/:id", d.Catalog.GetProduct)

	services := e.Group("/services")
	services.GET("", d.Catalog.ListServices)
	services.GET("/:id", d.Catalog.GetService)

	cart := e.Group("/cart", authMW.RequireAuth)
	cart.GET("", d.Cart.GetCart)
	cart.GET("/count", d.Cart.Count)
	cart.POST("", d.Cart.AddItem)
	cart.PATCH("/:id", d.Cart.UpdateItem)
	cart.DELETE("/:id", d.Cart.RemoveItem)

	orders := e.Group("/orders", authMW.RequireAuth)
	orders.POST("/checkout", d.Order.Checkout)
	orders.GET("", d.Order.ListMyOrders)
	orders.GET("/:id", d.Order.GetOrder)
	orders.POST("/:id/cancel", d.Order.CancelOrder)
	orders.POST("/:id/confirm-qr", d.Order.ConfirmQRPayment)
	orders.POST("/:id/payment-intent", d.Order.CreatePaymentIntent)
	orders.POST("/:id/payment-success", d.Order.PaymentSuccess)

	owner := e.Group("/owner", authMW.RequireRole(models.RoleShopOwner))
	owner.POST("/shop", d.Catalog.CreateShop)
	owner.GET("/shop", d.Catalog.GetMyShop)
	owner.PATCH("/shop", d.Catalog.UpdateShop)
	owner.GET("/dashboard", d.Catalog.Dashboard)
	owner.POST("/products", d.Catalog.CreateProduct)
	owner.PATCH("/products/:id", d.Catalog.UpdateProduct)
	owner.DELETE("/products/:id", d.Catalog.DeleteProduct)
	owner.POST("/services", d.Catalog.CreateService)
	owner.PATCH("/services/:id", d.Catalog.UpdateService)
	owner.DELETE("/services/:id", d.Catalog.DeleteService)
	owner.GET("/orders", d.Order.ShopOrders)
	owner.PATCH("/orders/:id/status", d.Order.UpdateStatus)

	admin := e.Group("/admin", authMW.RequireAdmin)
	admin.GET("/stats", d.Admin.Stats)
	admin.GET("/users", d.Admin.ListUsers)
	admin.PATCH("/users/:id", d.Admin.ToggleUser)
	admin.GET("/shops", d.Admin.ListShops)
	admin.PATCH("/shops/:id", d.Admin.ToggleShop)
	admin.PATCH("/products/:id", d.Admin.ToggleProduct)
	admin.GET("/orders", d.Admin.ListOrders)

	notifications := e.Group("/notifications", authMW.RequireAuth)
	notifications.GET("", d.Notifications.List)
	notifications.POST("/:id/read", d.Notifications.MarkRead)
}
