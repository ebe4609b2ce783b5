package routes

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gdsanger/IdeaGraph-v1-sub001/internal/metrics"
	"github.com/gdsanger/IdeaGraph-v1-sub001/internal/queue"
	"github.com/gdsanger/IdeaGraph-v1-sub001/internal/server/middleware"
	"github.com/gdsanger/IdeaGraph-v1-sub001/internal/storage"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/catalog"
	"github.com/gdsanger/IdeaGraph-v1-sub001/pkg/logger"
)

// UploadContentHandler stores the raw request body as the object's
// content and queues a re-embed. Only file and message records carry
// content. The body stays opaque here, so no echo binding: Bind would
// reject anything but JSON and form payloads.
func UploadContentHandler(c echo.Context) error {
	type uploadContentResponse struct {
		Message    string `json:"message"`
		ContentKey string `json:"contentKey,omitempty"`
	}

	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, uploadContentResponse{
			Message: "Invalid request params",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	rec, err := app.Store.FetchByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return c.JSON(http.StatusNotFound, uploadContentResponse{
				Message: "Object not found",
			})
		}
		logger.Error("Failed to fetch object", "err", err, "object", id)
		return c.JSON(http.StatusInternalServerError, uploadContentResponse{
			Message: "Internal server error",
		})
	}
	if rec.Type != catalog.TypeFile && rec.Type != catalog.TypeMessage {
		return c.JSON(http.StatusBadRequest, uploadContentResponse{
			Message: "Only file and message objects carry content",
		})
	}

	contentType := c.Request().Header.Get(echo.HeaderContentType)
	key, err := storage.PutContent(ctx, app.S3, id, contentType, c.Request().Body)
	if err != nil {
		logger.Error("Failed to upload content", "err", err, "object", id)
		return c.JSON(http.StatusInternalServerError, uploadContentResponse{
			Message: "Internal server error",
		})
	}

	if err := app.Store.SetContent(ctx, id, key, contentType); err != nil {
		logger.Error("Failed to store content key", "err", err, "object", id)
		return c.JSON(http.StatusInternalServerError, uploadContentResponse{
			Message: "Internal server error",
		})
	}
	metrics.ObjectWrites.WithLabelValues("content").Inc()

	if err := queue.PublishEmbedJob(app.Queue, id); err != nil {
		logger.Error("Failed to publish embed job", "err", err, "object", id)
	}

	return c.JSON(http.StatusOK, uploadContentResponse{
		Message:    "Content stored",
		ContentKey: key,
	})
}

// DownloadContentHandler returns a presigned download link for the
// object's content.
func DownloadContentHandler(c echo.Context) error {
	type downloadContentParams struct {
		ID string `param:"id" validate:"required"`
	}

	type downloadContentResponse struct {
		Message string `json:"message,omitempty"`
		URL     string `json:"url,omitempty"`
	}

	params := new(downloadContentParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, downloadContentResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, downloadContentResponse{
			Message: "Invalid request params",
		})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	rec, err := app.Store.FetchByID(ctx, params.ID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return c.JSON(http.StatusNotFound, downloadContentResponse{
				Message: "Object not found",
			})
		}
		logger.Error("Failed to fetch object", "err", err, "object", params.ID)
		return c.JSON(http.StatusInternalServerError, downloadContentResponse{
			Message: "Internal server error",
		})
	}
	if rec.ContentKey == "" {
		return c.JSON(http.StatusNotFound, downloadContentResponse{
			Message: "Object has no content",
		})
	}

	url, err := storage.GenerateDownloadLink(ctx, app.S3, rec.ContentKey)
	if err != nil {
		logger.Error("Failed to generate download link", "err", err, "object", params.ID)
		return c.JSON(http.StatusInternalServerError, downloadContentResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, downloadContentResponse{
		URL: url,
	})
}
