package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gdsanger/IdeaGraph-v1-sub001/internal/server/middleware"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/catalog"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/logger"
)

// GetObjectHandler returns a single record by public id. The embedding
// itself never leaves the store.
func GetObjectHandler(c echo.Context) error {
	type getObjectParams struct {
		ID string `param:"id" validate:"required"`
	}

	type getObjectResponse struct {
		Message string          `json:"message,omitempty"`
		Object  *catalog.Record `json:"object,omitempty"`
	}

	params := new(getObjectParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getObjectResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getObjectResponse{
			Message: "Invalid request params",
		})
	}

	ctx := c.Request().Context()
	store := c.(*middleware.AppContext).App.Store

	rec, err := store.FetchByID(ctx, params.ID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return c.JSON(http.StatusNotFound, getObjectResponse{
				Message: "Object not found",
			})
		}
		logger.Error("Failed to fetch object", "err", err, "object", params.ID)
		return c.JSON(http.StatusInternalServerError, getObjectResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, getObjectResponse{
		Object: rec,
	})
}

// ListObjectsHandler lists records newest first, optionally filtered by
// type.
func ListObjectsHandler(c echo.Context) error {
	type listObjectsParams struct {
		Type   string `query:"type"`
		Limit  int    `query:"limit"`
		Offset int    `query:"offset"`
	}

	type listObjectsResponse struct {
		Message string           `json:"message,omitempty"`
		Objects []catalog.Record `json:"objects"`
		Count   int              `json:"count"`
	}

	params := new(listObjectsParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, listObjectsResponse{
			Message: "Invalid request params",
		})
	}

	var objectType catalog.ObjectType
	if params.Type != "" {
		t, err := catalog.ParseObjectType(params.Type)
		if err != nil {
			return c.JSON(http.StatusBadRequest, listObjectsResponse{
				Message: err.Error(),
			})
		}
		objectType = t
	}

	ctx := c.Request().Context()
	store := c.(*middleware.AppContext).App.Store

	records, err := store.ListObjects(ctx, objectType, params.Limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list objects", "err", err)
		return c.JSON(http.StatusInternalServerError, listObjectsResponse{
			Message: "Internal server error",
		})
	}
	if records == nil {
		records = []catalog.Record{}
	}

	return c.JSON(http.StatusOK, listObjectsResponse{
		Objects: records,
		Count:   len(records),
	})
}
