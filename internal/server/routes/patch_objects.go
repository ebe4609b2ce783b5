package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gdsanger/IdeaGraph-v1-sub001/internal/metrics"
	"github.com/gdsanger/IdeaGraph-v1-sub001/internal/queue"
	"github.com/gdsanger/IdeaGraph-v1-sub001/internal/server/middleware"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/catalog"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/logger"
)

// UpdateObjectHandler applies a partial update. Touching any field that
// feeds the embedding text re-queues the record for embedding; the old
// vector stays live until the worker replaces it.
func UpdateObjectHandler(c echo.Context) error {
	type updateObjectBody struct {
		ID              string             `param:"id" validate:"required"`
		Title           *string            `json:"title"`
		Description     *string            `json:"description"`
		Tags            *[]string          `json:"tags"`
		Extra           *map[string]string `json:"extra"`
		ParentID        *string            `json:"parentId"`
		InheritsContext *bool              `json:"inheritsContext"`
	}

	type updateObjectResponse struct {
		Message string          `json:"message"`
		Object  *catalog.Record `json:"object,omitempty"`
	}

	data := new(updateObjectBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, updateObjectResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, updateObjectResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	store := c.(*middleware.AppContext).App.Store

	rec, err := store.UpdateObject(ctx, data.ID, catalog.UpdateObjectParams{
		Title:           data.Title,
		Description:     data.Description,
		Tags:            data.Tags,
		Extra:           data.Extra,
		ParentID:        data.ParentID,
		InheritsContext: data.InheritsContext,
	})
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return c.JSON(http.StatusNotFound, updateObjectResponse{
				Message: "Object not found",
			})
		}
		logger.Error("Failed to update object", "err", err, "object", data.ID)
		return c.JSON(http.StatusInternalServerError, updateObjectResponse{
			Message: "Internal server error",
		})
	}
	metrics.ObjectWrites.WithLabelValues("update").Inc()

	if data.Title != nil || data.Description != nil || data.Tags != nil {
		ch := c.(*middleware.AppContext).App.Queue
		if err := queue.PublishEmbedJob(ch, rec.ID); err != nil {
			logger.Error("Failed to publish embed job", "err", err, "object", rec.ID)
		}
	}

	return c.JSON(http.StatusOK, updateObjectResponse{
		Message: "Object updated",
		Object:  rec,
	})
}
