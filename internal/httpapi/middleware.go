package httpapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"taskboard/internal/db"
	"taskboard/internal/models"
)

const userContextKey = "user"

// requireAuth resolves the bearer token to a user and stores it on the
// request context. A token naming a user that no longer exists is
// rejected the same way as a bad signature.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
		}

		username, err := s.issuer.Parse(strings.TrimPrefix(header, prefix))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
		}

		user, err := db.GetUserByUsername(username)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}

		c.Set(userContextKey, user)
		return next(c)
	}
}

// actingUser returns the user resolved by requireAuth
func actingUser(c echo.Context) *models.User {
	return c.Get(userContextKey).(*models.User)
}
