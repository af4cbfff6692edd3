package handler

import (
	"github.com/labstack/echo/v4"

	"lapakku/internal/usecase"
	"lapakku/pkg/response"
)

// SupportHandler exposes the staff-facing REST view of live support. The
// realtime surface lives on the websocket; these endpoints back dashboards
// and audits.
type SupportHandler struct {
	supportUseCase *usecase.SupportUseCase
}

func NewSupportHandler(supportUseCase *usecase.SupportUseCase) *SupportHandler {
	return &SupportHandler{
		supportUseCase: supportUseCase,
	}
}

func (h *SupportHandler) ListOpenConversations(c echo.Context) error {
	conversations, err := h.supportUseCase.ListOpenConversations(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, conversations)
}

func (h *SupportHandler) GetTranscript(c echo.Context) error {
	uid := c.Get("uid").(string)

	messages, err := h.supportUseCase.GetTranscript(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, messages)
}
