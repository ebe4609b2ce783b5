package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gdsanger/IdeaGraph-v1-sub001/internal/metrics"
	"github.com/gdsanger/IdeaGraph-v1-sub001/internal/server/middleware"
	"github.com/gdsanger/IdeaGraph-v1-sub001/internal/storage"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/catalog"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/logger"
)

// DeleteObjectHandler removes a record and its stored content. Children
// keep existing; the database nulls their parent reference.
func DeleteObjectHandler(c echo.Context) error {
	type deleteObjectParams struct {
		ID string `param:"id" validate:"required"`
	}

	type deleteObjectResponse struct {
		Message string `json:"message"`
	}

	params := new(deleteObjectParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, deleteObjectResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, deleteObjectResponse{
			Message: "Invalid request params",
		})
	}

	ctx := c.Request().Context()
	store := c.(*middleware.AppContext).App.Store

	rec, err := store.DeleteObject(ctx, params.ID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return c.JSON(http.StatusNotFound, deleteObjectResponse{
				Message: "Object not found",
			})
		}
		logger.Error("Failed to delete object", "err", err, "object", params.ID)
		return c.JSON(http.StatusInternalServerError, deleteObjectResponse{
			Message: "Internal server error",
		})
	}
	metrics.ObjectWrites.WithLabelValues("delete").Inc()

	// The row is gone either way; an orphaned blob only costs storage.
	if rec.ContentKey != "" {
		s3Client := c.(*middleware.AppContext).App.S3
		if err := storage.DeleteFile(ctx, s3Client, rec.ContentKey); err != nil {
			logger.Error("Failed to delete object content", "err", err, "object", params.ID)
		}
	}

	return c.JSON(http.StatusOK, deleteObjectResponse{
		Message: "Object deleted",
	})
}
