package http

import (
	"errors"
	"log/slog"
	"net/http"

	"project_gallery/internal/lib/logger/sl"
	admins "project_gallery/internal/services/admin_service"
	geo "project_gallery/internal/services/geo_service"
	metadata "project_gallery/internal/services/metadata_service"
	projects "project_gallery/internal/services/project_service"
	visitors "project_gallery/internal/services/visitor_service"
	"project_gallery/internal/storage"
	"project_gallery/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

var (
	ErrMalformedMultipart = errors.New("malformed multipart body")
	ErrInvalidID          = errors.New("invalid id")
	ErrInvalidQuery       = errors.New("invalid query parameter")
)

// classify единственное место, где ошибка домена превращается в HTTP статус
func classify(err error) (int, string) {
	var missing *projects.MissingInformationError

	switch {
	case errors.As(err, &missing):
		return http.StatusUnprocessableEntity, "missing_information"

	case errors.Is(err, ErrMalformedMultipart),
		errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrInvalidQuery),
		errors.Is(err, projects.ErrNoDescriptor),
		errors.Is(err, projects.ErrDuplicateDescriptor),
		errors.Is(err, projects.ErrNoFieldName),
		errors.Is(err, projects.ErrInvalidDescriptor),
		errors.Is(err, projects.ErrInvalidImageFormat),
		errors.Is(err, projects.ErrInvalidVideoFormat),
		errors.Is(err, projects.ErrNoFiles),
		errors.Is(err, metadata.ErrMetadataParse),
		errors.Is(err, visitors.ErrInvalidValidity),
		errors.Is(err, storage.ErrInvalidFileName):
		return http.StatusBadRequest, "invalid_request"

	case errors.Is(err, storage.ErrProjectNotFound),
		errors.Is(err, storage.ErrVisitorNotFound),
		errors.Is(err, storage.ErrFileNotFound):
		return http.StatusNotFound, "not_found"

	case errors.Is(err, admins.ErrInvalidCredentials),
		errors.Is(err, admins.ErrInvalidToken):
		return http.StatusUnauthorized, "authentication_failed"

	case errors.Is(err, admins.ErrRegistrationClosed):
		return http.StatusForbidden, "forbidden"

	case errors.Is(err, admins.ErrAdminExists),
		errors.Is(err, projects.ErrFileInUse):
		return http.StatusConflict, "conflict"

	case errors.Is(err, storage.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "file_too_large"

	case errors.Is(err, geo.ErrCountryFetch):
		return http.StatusBadGateway, "upstream_error"
	}

	return http.StatusInternalServerError, "internal_error"
}

func (r *Routers) respondError(c echo.Context, log *slog.Logger, err error) error {
	status, code := classify(err)

	details := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("request failed", sl.Err(err))
		details = "Internal server error"
	} else {
		log.Warn("request rejected", slog.Int("status", status), sl.Err(err))
	}

	return c.JSON(status, response.ErrorResponseWithDetails(code, details))
}
