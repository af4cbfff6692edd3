package router

import (
	"github.com/labstack/echo/v4"

	"lapakku/internal/adapter/api/handler"
)

func SetupHealthRouter(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/health", h.CheckHealth)
	e.GET("/health/firebase", h.CheckFirebaseHealth)
}
