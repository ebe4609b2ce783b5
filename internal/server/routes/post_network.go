package routes

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gdsanger/IdeaGraph-v1-sub001/internal/server/middleware"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/catalog"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/logger"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/network"
)

// ResolveNetworkHandler runs one semantic network resolution around the
// requested seed object.
func ResolveNetworkHandler(c echo.Context) error {
	type resolveRequest struct {
		ObjectType         string          `json:"objectType" validate:"required"`
		ObjectID           string          `json:"objectId" validate:"required"`
		Depth              int             `json:"depth"`
		Thresholds         map[int]float64 `json:"thresholds"`
		MaxResultsPerLevel int             `json:"maxResultsPerLevel"`
		IncludeHierarchy   bool            `json:"includeHierarchy"`
		GenerateSummaries  bool            `json:"generateSummaries"`
		TimeoutMs          int             `json:"timeoutMs"`
	}

	type resolveError struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}

	type resolveResponse struct {
		Success          bool                      `json:"success"`
		SourceID         string                    `json:"sourceId"`
		SourceType       catalog.ObjectType        `json:"sourceType"`
		Depth            int                       `json:"depth"`
		Nodes            []network.Node            `json:"nodes"`
		Edges            []network.Edge            `json:"edges"`
		Levels           map[int]network.LevelInfo `json:"levels"`
		TotalNodes       int                       `json:"totalNodes"`
		TotalEdges       int                       `json:"totalEdges"`
		IncludeHierarchy bool                      `json:"includeHierarchy"`
		Hierarchy        *network.HierarchyInfo    `json:"hierarchy,omitempty"`
		Truncated        bool                      `json:"truncated"`
	}

	data := new(resolveRequest)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, resolveError{Error: "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, resolveError{Error: "Invalid request body"})
	}

	objectType, err := catalog.ParseObjectType(data.ObjectType)
	if err != nil {
		return c.JSON(http.StatusBadRequest, resolveError{Error: err.Error()})
	}

	ctx := c.Request().Context()
	if data.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(data.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	app := c.(*middleware.AppContext).App

	// Config supplies the deployment's threshold policy; the request
	// overrides it per level.
	thresholds := app.Config.LevelThresholds()
	for level, cutoff := range data.Thresholds {
		thresholds[level] = cutoff
	}
	if data.MaxResultsPerLevel <= 0 {
		data.MaxResultsPerLevel = app.Config.Resolver.MaxResultsPerLevel
	}

	result, err := app.Builder.Build(ctx, network.Params{
		SourceType:         objectType,
		SourceID:           data.ObjectID,
		Depth:              data.Depth,
		Thresholds:         thresholds,
		MaxResultsPerLevel: data.MaxResultsPerLevel,
		IncludeHierarchy:   data.IncludeHierarchy,
		Summarize:          data.GenerateSummaries,
	})
	if err != nil {
		if errors.Is(err, network.ErrObjectNotFound) {
			return c.JSON(http.StatusNotFound, resolveError{Error: "Object not found"})
		}
		logger.Error("Failed to resolve network", "err", err, "object", data.ObjectID)
		return c.JSON(http.StatusBadGateway, resolveError{Error: "Catalog unavailable"})
	}

	return c.JSON(http.StatusOK, resolveResponse{
		Success:          true,
		SourceID:         result.SourceID,
		SourceType:       result.SourceType,
		Depth:            result.Depth,
		Nodes:            result.Nodes,
		Edges:            result.Edges,
		Levels:           result.Levels,
		TotalNodes:       len(result.Nodes),
		TotalEdges:       len(result.Edges),
		IncludeHierarchy: result.IncludeHierarchy,
		Hierarchy:        result.Hierarchy,
		Truncated:        result.Truncated,
	})
}
