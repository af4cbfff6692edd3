package router

import (
	"github.com/labstack/echo/v4"

	"lapakku/internal/adapter/api/handler"
)

func SetupProductRouter(e *echo.Echo, h *handler.ProductHandler, m Middlewares) {
	e.GET("/v1/products", h.ListProducts)
	e.GET("/v1/products/:id", h.GetProduct)

	mine := e.Group("/v1/my-products")
	mine.Use(m.Auth.Authenticate)
	mine.POST("", h.CreateProduct)
	mine.PUT("/:id", h.UpdateProduct)
	mine.DELETE("/:id", h.DeleteProduct)
}
