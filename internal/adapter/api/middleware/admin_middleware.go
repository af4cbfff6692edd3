package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"lapakku/internal/domain/entity"
	"lapakku/internal/domain/repository"
)

type RoleMiddleware struct {
	userRepo repository.UserRepository
}

func NewRoleMiddleware(userRepo repository.UserRepository) *RoleMiddleware {
	return &RoleMiddleware{
		userRepo: userRepo,
	}
}

// StaffOnly admits staff and admin accounts.
func (m *RoleMiddleware) StaffOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := m.currentUser(c)
		if err != nil {
			return err
		}

		if !user.StaffCapable() {
			return echo.NewHTTPError(http.StatusForbidden, "Staff privileges required")
		}

		return next(c)
	}
}

func (m *RoleMiddleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := m.currentUser(c)
		if err != nil {
			return err
		}

		if user.Role != entity.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "Admin privileges required")
		}

		return next(c)
	}
}

func (m *RoleMiddleware) currentUser(c echo.Context) (*entity.User, error) {
	uid, ok := c.Get("uid").(string)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
	}

	user, err := m.userRepo.GetByID(c.Request().Context(), uid)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to verify privileges")
	}

	return user, nil
}
