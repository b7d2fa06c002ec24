package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/ivgrimm/shop_backend/internal/handlers"
	"github.com/ivgrimm/shop_backend/internal/handlers/cart"
	mwauth "github.com/ivgrimm/shop_backend/internal/middleware/auth"
	"github.com/ivgrimm/shop_backend/internal/session"
)

type Deps struct {
	DB             *gorm.DB
	Sessions       *session.Service
	AuthHandler    *handlers.AuthHandler
	ProductHandler *handlers.ProductHandler
	CartHandler    *cart.CartHandler
	SearchHandler  *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	requireLogin := mwauth.RequireLogin(d.Sessions)

	e.POST("/register", d.AuthHandler.Register)
	e.POST("/login", d.AuthHandler.Login)
	e.POST("/logout", d.AuthHandler.Logout, requireLogin)

	products := e.Group("/api/products")

	products.POST("/add", d.ProductHandler.AddProduct, requireLogin)
	products.DELETE("/delete/:id", d.ProductHandler.DeleteProduct, requireLogin)
	products.PUT("/update/:id", d.ProductHandler.UpdateProduct, requireLogin)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.GET("", d.ProductHandler.ListProducts)
	if d.SearchHandler != nil {
		products.GET("/search", d.SearchHandler.Search)
	}

	cartGroup := e.Group("/api/cart", requireLogin)

	cartGroup.GET("", d.CartHandler.GetCart)
	cartGroup.POST("/add/:product_id", d.CartHandler.AddToCart)
	cartGroup.DELETE("/remove/:product_id", d.CartHandler.RemoveFromCart)
	cartGroup.POST("/checkout", d.CartHandler.Checkout)
}
