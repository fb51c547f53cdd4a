package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/gannewala/juice-shop/internal/handlers"
	"github.com/gannewala/juice-shop/internal/models"
	"github.com/gannewala/juice-shop/internal/service"
)

type Deps struct {
	DB             *gorm.DB
	OrderHandler   *handlers.OrderHandler
	AuthHandler    *handlers.AuthHandler
	UserHandler    *handlers.UserHandler
	PaymentHandler *handlers.PaymentHandler
	TokenService   *service.TokenService
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	e.GET("/", d.OrderHandler.Storefront)
	e.POST("/create-checkout-session", d.OrderHandler.CreateCheckoutSession)
	e.POST("/create-payment", d.OrderHandler.CreateCheckoutSession)
	e.GET("/success", d.OrderHandler.Success)
	e.GET("/cancel", d.OrderHandler.Cancel)

	e.GET("/login", d.AuthHandler.LoginForm)
	e.POST("/login", d.AuthHandler.Login)
	e.GET("/logout", d.AuthHandler.Logout, d.TokenService.AuthMiddleware)

	seller := e.Group("", d.TokenService.RoleMiddleware(models.RoleSeller))
	seller.GET("/seller", d.OrderHandler.SellerOrders)
	seller.GET("/seller/dashboard", d.OrderHandler.SellerOrders)
	seller.POST("/update_order_status", d.OrderHandler.UpdateStatus)
	seller.POST("/verify_order", d.OrderHandler.VerifyOrder)

	admin := e.Group("/admin", d.TokenService.RoleMiddleware(models.RoleAdmin))
	admin.GET("/dashboard", d.OrderHandler.AdminDashboard)

	users := e.Group("/api/users", d.TokenService.RoleMiddleware(models.RoleAdmin))
	users.GET("", d.UserHandler.ListUsers)
	users.POST("", d.UserHandler.CreateUser)

	authed := e.Group("", d.TokenService.AuthMiddleware)
	authed.GET("/check-transaction/:txnid", d.PaymentHandler.CheckTransaction)
	authed.POST("/refund/:txnid", d.PaymentHandler.RefundTransaction)
}
