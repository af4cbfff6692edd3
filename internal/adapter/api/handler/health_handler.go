package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"lapakku/internal/infrastructure/firebase"
)

type HealthHandler struct {
	authClient *firebase.AuthClient
}

func NewHealthHandler(authClient *firebase.AuthClient) *HealthHandler {
	return &HealthHandler{
		authClient: authClient,
	}
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "Server is running",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (h *HealthHandler) CheckFirebaseHealth(c echo.Context) error {
	if err := h.authClient.TestConnection(c.Request().Context()); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"status": "Firebase Auth connection failed",
			"error":  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "Firebase Auth connected successfully",
	})
}
