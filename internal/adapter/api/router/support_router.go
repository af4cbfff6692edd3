package router

import (
	"github.com/labstack/echo/v4"

	"lapakku/internal/adapter/api/handler"
)

func SetupSupportRouter(e *echo.Echo, h *handler.SupportHandler, m Middlewares) {
	support := e.Group("/v1/support")
	support.Use(m.Auth.Authenticate)
	support.Use(m.Role.StaffOnly)
	support.GET("/conversations", h.ListOpenConversations)

	// Transcript access is owner-or-staff; the use case enforces it.
	transcripts := e.Group("/v1/support")
	transcripts.Use(m.Auth.Authenticate)
	transcripts.GET("/conversations/:id/messages", h.GetTranscript)
}
