package handler

import (
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"lapakku/internal/infrastructure/ws"
	"lapakku/internal/usecase"
	apperrors "lapakku/pkg/errors"
	"lapakku/pkg/logger"
)

type WebSocketHandler struct {
	hub            *ws.Hub
	supportUseCase *usecase.SupportUseCase
	sendBufferSize int
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // restrict in production
	},
}

func NewWebSocketHandler(hub *ws.Hub, supportUseCase *usecase.SupportUseCase, sendBufferSize int) *WebSocketHandler {
	return &WebSocketHandler{
		hub:            hub,
		supportUseCase: supportUseCase,
		sendBufferSize: sendBufferSize,
	}
}

// HandleSupport upgrades the connection and admits it. The token query param
// is optional; guests connect without one and a stale token downgrades to a
// guest connection instead of refusing service.
func (h *WebSocketHandler) HandleSupport(c echo.Context) error {
	token := c.QueryParam("token")

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return apperrors.Internal("Failed to upgrade connection", err)
	}

	client := ws.NewClient(h.hub, conn, h.sendBufferSize)

	if err := h.supportUseCase.Admit(c.Request().Context(), client, token); err != nil {
		logger.Warn("ws: admission refused for client %s: %v", client.ID, err)
		client.CloseWithError(apperrors.Code(err), "Connection refused")
		return nil
	}

	go client.WritePump()
	go client.ReadPump()

	return nil
}
