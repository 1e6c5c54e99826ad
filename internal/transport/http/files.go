package http

import (
	"context"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"project_gallery/internal/domain/models"
	"project_gallery/internal/lib/filetype"
	"project_gallery/internal/lib/logger/sl"
	"project_gallery/internal/transport/http/dto"
	"project_gallery/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

const healthTimeout = 3 * time.Second

// UploadPictures godoc
// @Summary Загрузка изображений
// @Description Каждая часть multipart запроса - изображение PNG/JPEG/WEBP. Если сохранить хотя бы один файл не удалось, удаляются все.
// @Tags admin-files
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} response.Response{data=dto.FilesUploadedResponse}
// @Failure 400 {object} response.ErrorResponse
// @Failure 413 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/admin/pictures [post]
func (r *Routers) UploadPictures(c echo.Context) error {
	return r.upload(c, models.MediaKindPicture)
}

// UploadVideos godoc
// @Summary Загрузка видео
// @Description Каждая часть multipart запроса - видео MP4/MKV/TS/AVI.
// @Tags admin-files
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} response.Response{data=dto.FilesUploadedResponse}
// @Failure 400 {object} response.ErrorResponse
// @Failure 413 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/admin/videos [post]
func (r *Routers) UploadVideos(c echo.Context) error {
	return r.upload(c, models.MediaKindVideo)
}

func (r *Routers) upload(c echo.Context, kind models.MediaKind) error {
	const op = "http.routers.upload"

	log := r.log.With(
		slog.String("op", op),
		slog.String("kind", string(kind)),
	)

	parts, err := r.readParts(c)
	if err != nil {
		return r.respondError(c, log, err)
	}

	names, err := r.ProjectService.UploadFiles(c.Request().Context(), kind, parts)
	if err != nil {
		return r.respondError(c, log, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(dto.FilesUploadedResponse{FileIDs: names}))
}

// DeleteFile godoc
// @Summary Удаление файла из хранилища
// @Description Файл, на который ссылается проект, не удаляется (409).
// @Tags admin-files
// @Param file_name path string true "Имя файла"
// @Success 204
// @Failure 404 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/admin/storage/{file_name} [delete]
func (r *Routers) DeleteFile(c echo.Context) error {
	const op = "http.routers.DeleteFile"

	log := r.log.With(
		slog.String("op", op),
	)

	if err := r.ProjectService.DeleteFile(c.Request().Context(), c.Param("file_name")); err != nil {
		return r.respondError(c, log, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ServeFile отдает файл из хранилища посетителю
func (r *Routers) ServeFile(c echo.Context) error {
	const op = "http.routers.ServeFile"

	name := c.Param("name")

	data, err := r.files.Read(c.Request().Context(), name)
	if err != nil {
		return r.respondError(c, r.log.With(slog.String("op", op)), err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = filetype.ContentType(data)
	}

	c.Response().Header().Set("Cache-Control", "private, max-age=86400")

	return c.Blob(http.StatusOK, contentType, data)
}

// Health godoc
// @Summary Проверка доступности зависимостей
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (r *Routers) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
	defer cancel()

	status := http.StatusOK
	result := make(map[string]string, len(r.opts.HealthChecks))

	for name, check := range r.opts.HealthChecks {
		if err := check.HealthCheck(ctx); err != nil {
			r.log.Error("health check failed", slog.String("component", name), sl.Err(err))
			result[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		result[name] = "ok"
	}

	return c.JSON(status, result)
}
