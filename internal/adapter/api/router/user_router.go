package router

import (
	"github.com/labstack/echo/v4"

	"lapakku/internal/adapter/api/handler"
)

func SetupUserRouter(e *echo.Echo, h *handler.UserHandler, m Middlewares) {
	e.POST("/v1/auth/register", h.Register)

	users := e.Group("/v1/users")
	users.Use(m.Auth.Authenticate)
	users.GET("/me", h.GetProfile)
	users.PATCH("/me", h.UpdateProfile)

	admin := e.Group("/v1/admin/users")
	admin.Use(m.Auth.Authenticate)
	admin.Use(m.Role.AdminOnly)
	admin.GET("/staff", h.ListStaff)
	admin.PATCH("/:id/blocked", h.SetBlocked)
}
