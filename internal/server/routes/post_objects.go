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

// CreateObjectHandler inserts a new catalog record and queues it for
// embedding.
func CreateObjectHandler(c echo.Context) error {
	type createObjectBody struct {
		ObjectType      string            `json:"objectType" validate:"required"`
		Title           string            `json:"title" validate:"required"`
		Description     string            `json:"description"`
		Tags            []string          `json:"tags"`
		Extra           map[string]string `json:"extra"`
		ParentID        *string           `json:"parentId"`
		InheritsContext bool              `json:"inheritsContext"`
	}

	type createObjectResponse struct {
		Message string          `json:"message"`
		Object  *catalog.Record `json:"object,omitempty"`
	}

	data := new(createObjectBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createObjectResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createObjectResponse{
			Message: "Invalid request body",
		})
	}

	objectType, err := catalog.ParseObjectType(data.ObjectType)
	if err != nil {
		return c.JSON(http.StatusBadRequest, createObjectResponse{
			Message: err.Error(),
		})
	}

	ctx := c.Request().Context()
	store := c.(*middleware.AppContext).App.Store

	rec, err := store.CreateObject(ctx, catalog.CreateObjectParams{
		Type: objectType,
		Properties: catalog.Properties{
			Title:       data.Title,
			Description: data.Description,
			Tags:        data.Tags,
			Extra:       data.Extra,
		},
		ParentID:        data.ParentID,
		InheritsContext: data.InheritsContext,
	})
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return c.JSON(http.StatusBadRequest, createObjectResponse{
				Message: "Parent object not found",
			})
		}
		logger.Error("Failed to create object", "err", err)
		return c.JSON(http.StatusInternalServerError, createObjectResponse{
			Message: "Internal server error",
		})
	}
	metrics.ObjectWrites.WithLabelValues("create").Inc()

	ch := c.(*middleware.AppContext).App.Queue
	if err := queue.PublishEmbedJob(ch, rec.ID); err != nil {
		logger.Error("Failed to publish embed job", "err", err, "object", rec.ID)
	}

	return c.JSON(http.StatusCreated, createObjectResponse{
		Message: "Object created",
		Object:  rec,
	})
}
