package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gdsanger/IdeaGraph-v1-sub001/internal/server/middleware"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/logger"
)

// HealthHandler reports liveness including a database round trip.
func HealthHandler(c echo.Context) error {
	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn

	if err := conn.Ping(ctx); err != nil {
		logger.Error("Health check failed", "err", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
