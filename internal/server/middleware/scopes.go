package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
)

func HasScope(user *AppUser, scope string) bool {
	if user == nil {
		return false
	}
	return slices.Contains(user.Scopes, scope)
}

func RequireScope(scope string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := c.(*AppContext).User
			if user == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			}

			if !HasScope(user, scope) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Forbidden: missing scope " + scope})
			}

			return next(c)
		}
	}
}
