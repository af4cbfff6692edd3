package router

import (
	"github.com/labstack/echo/v4"

	"lapakku/internal/adapter/api/handler"
)

// The support socket does its own admission; there is no auth middleware here
// because guests must be able to connect without credentials.
func SetupWebSocketRouter(e *echo.Echo, h *handler.WebSocketHandler) {
	e.GET("/ws/support", h.HandleSupport)
}
