package server

import (
	"github.com/gdsanger/IdeaGraph-v1-sub001/internal/server/middleware"
	"github.com/gdsanger/IdeaGraph-v1-sub001/internal/server/routes"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(e *echo.Echo) {
	// Liveness and metrics stay outside the auth wall.
	e.GET("/api/health", routes.HealthHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Network resolution
	apiRoutes.POST("/network", routes.ResolveNetworkHandler, middleware.RequireScope(middleware.ScopeRead))

	// Catalog objects
	apiRoutes.GET("/objects", routes.ListObjectsHandler, middleware.RequireScope(middleware.ScopeRead))
	apiRoutes.GET("/objects/:id", routes.GetObjectHandler, middleware.RequireScope(middleware.ScopeRead))
	apiRoutes.POST("/objects", routes.CreateObjectHandler, middleware.RequireScope(middleware.ScopeWrite))
	apiRoutes.PATCH("/objects/:id", routes.UpdateObjectHandler, middleware.RequireScope(middleware.ScopeWrite))
	apiRoutes.DELETE("/objects/:id", routes.DeleteObjectHandler, middleware.RequireScope(middleware.ScopeWrite))

	// Object content
	apiRoutes.PUT("/objects/:id/content", routes.UploadContentHandler, middleware.RequireScope(middleware.ScopeWrite))
	apiRoutes.GET("/objects/:id/content", routes.DownloadContentHandler, middleware.RequireScope(middleware.ScopeRead))
}
