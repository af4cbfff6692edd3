package router

import (
	"github.com/labstack/echo/v4"

	"lapakku/internal/adapter/api/handler"
	"lapakku/internal/adapter/api/middleware"
)

type Handlers struct {
	Health    *handler.HealthHandler
	User      *handler.UserHandler
	Product   *handler.ProductHandler
	Support   *handler.SupportHandler
	WebSocket *handler.WebSocketHandler
}

type Middlewares struct {
	Auth *middleware.AuthMiddleware
	Role *middleware.RoleMiddleware
}

func Setup(e *echo.Echo, h Handlers, m Middlewares) {
	SetupHealthRouter(e, h.Health)
	SetupUserRouter(e, h.User, m)
	SetupProductRouter(e, h.Product, m)
	SetupSupportRouter(e, h.Support, m)
	SetupWebSocketRouter(e, h.WebSocket)
}
