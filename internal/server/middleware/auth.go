package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// The API knows exactly two scopes: read covers fetching objects and
// resolving networks, write covers every mutation.
var allScopes = []string{
	ScopeRead,
	ScopeWrite,
}

const (
	ScopeRead  = "read"
	ScopeWrite = "write"
)

func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}

		token := strings.Split(authHeader, " ")[1]
		app := c.(*AppContext).App

		// Master API Key bypass
		if app.MasterAPIKey != "" && token == app.MasterAPIKey {
			c.(*AppContext).User = &AppUser{
				Subject: "master",
				Scopes:  allScopes,
			}
			return next(c)
		}

		// Parse JWT token
		k := *c.(*AppContext).App.Key
		parsed, err := jwt.Parse(token, k.Keyfunc)
		if err != nil || !parsed.Valid {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}

		claims, ok := parsed.Claims.(jwt.MapClaims)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		}

		subject := ""
		if subClaim, ok := claims["sub"].(string); ok {
			subject = subClaim
		}

		var scopes []string
		if scopesClaim, ok := claims["scopes"].([]any); ok {
			for _, s := range scopesClaim {
				if sStr, ok := s.(string); ok {
					scopes = append(scopes, sStr)
				}
			}
		}

		if roleClaim, ok := claims["role"].(string); ok && roleClaim == "admin" && len(scopes) == 0 {
			scopes = allScopes
		}

		c.(*AppContext).User = &AppUser{
			Subject: subject,
			Scopes:  scopes,
		}

		return next(c)
	}
}
