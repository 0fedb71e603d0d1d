package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/obralink/marketplace/internal/api/metrics"
	"github.com/obralink/marketplace/internal/core/domain"
	"github.com/obralink/marketplace/internal/core/ports"
)

type AttachmentHandler struct {
	service ports.AttachmentService
}

func NewAttachmentHandler(service ports.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{service: service}
}

// Upload handles POST /v1/projects/:id/files as multipart/form-data.
//
// @Summary      Attach a file to a project
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id           path      string  true   "Project ID"
// @Param        file         formData  file    true   "File to upload"
// @Param        max_size_mb  formData  int     false  "Lower the size limit for this upload"
// @Success      201          {object}  attachmentResponse
// @Failure      400          {object}  map[string]string
// @Failure      403          {object}  map[string]string
// @Failure      413          {object}  map[string]string
// @Router       /v1/projects/{id}/files [post]
func (h *AttachmentHandler) Upload(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	header, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	maxSizeMB := 0
	if raw := c.FormValue("max_size_mb"); raw != "" {
		if maxSizeMB, err = strconv.Atoi(raw); err != nil || maxSizeMB <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "max_size_mb must be a positive integer")
		}
	}

	src, err := header.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable file")
	}
	defer src.Close()

	att, err := h.service.Upload(c.Request().Context(), actor, ports.UploadInput{
		ProjectID:   c.Param("id"),
		UploaderID:  actor.ID,
		FileName:    header.Filename,
		ContentType: header.Header.Get(echo.HeaderContentType),
		Size:        header.Size,
		Body:        src,
		MaxSizeMB:   maxSizeMB,
	})
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(uploadResult(err)).Inc()
		return err
	}
	metrics.UploadsTotal.WithLabelValues("ok").Inc()
	metrics.UploadBytes.Observe(float64(att.Size))
	return c.JSON(http.StatusCreated, toAttachmentResponse(att))
}

// List handles GET /v1/projects/:id/files.
//
// @Summary      Files of a project, newest first
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  listResponse[attachmentResponse]
// @Failure      403  {object}  map[string]string
// @Router       /v1/projects/{id}/files [get]
func (h *AttachmentHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	items, err := h.service.List(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newList(toAttachmentResponses(items)))
}

// Delete handles DELETE /v1/files/:id. Only the uploader may delete.
//
// @Summary      Delete a file
// @Tags         files
// @Security     BearerAuth
// @Param        id   path  string  true  "File ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/files/{id} [delete]
func (h *AttachmentHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func uploadResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrFileTooLarge),
		errors.Is(err, domain.ErrFileTypeNotAllowed),
		errors.Is(err, domain.ErrEmptyFile):
		return "rejected"
	}
	return "error"
}
