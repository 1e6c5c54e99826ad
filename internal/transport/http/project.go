package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"project_gallery/internal/transport/http/dto"
	"project_gallery/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

// ListProjects godoc
// @Summary Список проектов
// @Description Фильтры year и country необязательны.
// @Tags projects
// @Produce json
// @Param year query int false "Год"
// @Param country query string false "Страна"
// @Success 200 {object} response.Response{data=[]models.Project}
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse "Ссылка недействительна"
// @Failure 417 {object} response.ErrorResponse "Нет ссылки посетителя"
// @Router /api/v1/projects [get]
func (r *Routers) ListProjects(c echo.Context) error {
	const op = "http.routers.ListProjects"

	log := r.log.With(
		slog.String("op", op),
	)

	year, err := optionalInt(c, "year")
	if err != nil {
		return r.respondError(c, log, err)
	}

	query := dto.ProjectListQuery{Year: year, Country: c.QueryParam("country")}
	if err := c.Validate(query); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	projects, err := r.ProjectService.List(c.Request().Context(), query.ToDomain())
	if err != nil {
		return r.respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(projects))
}

// GetProject godoc
// @Summary Проект по id
// @Tags projects
// @Produce json
// @Param id path int true "ID проекта"
// @Success 200 {object} response.Response{data=models.Project}
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/projects/{id} [get]
func (r *Routers) GetProject(c echo.Context) error {
	const op = "http.routers.GetProject"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := projectID(c)
	if err != nil {
		return r.respondError(c, log, err)
	}

	project, err := r.ProjectService.Get(c.Request().Context(), id)
	if err != nil {
		return r.respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(project))
}

// ListYears godoc
// @Summary Годы, за которые есть проекты
// @Tags projects
// @Produce json
// @Param country query string false "Страна"
// @Success 200 {object} response.Response{data=[]int}
// @Router /api/v1/projects/list-years [get]
func (r *Routers) ListYears(c echo.Context) error {
	const op = "http.routers.ListYears"

	years, err := r.ProjectService.ListYears(c.Request().Context(), c.QueryParam("country"))
	if err != nil {
		return r.respondError(c, r.log.With(slog.String("op", op)), err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(years))
}

// ListCountries godoc
// @Summary Страны, в которых есть проекты
// @Tags projects
// @Produce json
// @Param year query int false "Год"
// @Success 200 {object} response.Response{data=[]string}
// @Router /api/v1/projects/list-countries [get]
func (r *Routers) ListCountries(c echo.Context) error {
	const op = "http.routers.ListCountries"

	log := r.log.With(slog.String("op", op))

	year, err := optionalInt(c, "year")
	if err != nil {
		return r.respondError(c, log, err)
	}

	countries, err := r.ProjectService.ListCountries(c.Request().Context(), year)
	if err != nil {
		return r.respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(countries))
}

// CreateProject godoc
// @Summary Создание проекта из загруженных файлов
// @Description Файлы должны быть загружены заранее через /admin/pictures и /admin/videos.
// @Description Год и местоположение, если не заданы, читаются из EXIF фотографий.
// @Tags admin-projects
// @Accept json
// @Produce json
// @Param request body dto.CreateProjectRequest true "Проект"
// @Success 201 {object} response.Response{data=dto.ProjectCreatedResponse}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse "Файл не найден"
// @Failure 422 {object} response.ErrorResponse "Не удалось определить год или местоположение"
// @Failure 502 {object} response.ErrorResponse "Сервис геокодирования недоступен"
// @Security ApiKeyAuth
// @Router /api/v1/admin/project [post]
func (r *Routers) CreateProject(c echo.Context) error {
	const op = "http.routers.CreateProject"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.CreateProjectRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	project, err := r.ProjectService.CreateFromStored(c.Request().Context(), req)
	if err != nil {
		return r.respondError(c, log, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(dto.NewProjectCreatedResponse(project)))
}

// CreateProjectUpload godoc
// @Summary Создание проекта из multipart запроса
// @Description Поле `json` содержит dto.ProjectDescriptor, остальные поля - изображения PNG/JPEG/WEBP.
// @Tags admin-projects
// @Accept multipart/form-data
// @Produce json
// @Param json formData string true "dto.ProjectDescriptor"
// @Success 201 {object} response.Response{data=dto.ProjectCreatedResponse}
// @Failure 400 {object} response.ErrorResponse
// @Failure 413 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/admin/project/upload [post]
func (r *Routers) CreateProjectUpload(c echo.Context) error {
	const op = "http.routers.CreateProjectUpload"

	log := r.log.With(
		slog.String("op", op),
	)

	parts, err := r.readParts(c)
	if err != nil {
		return r.respondError(c, log, err)
	}

	project, err := r.ProjectService.CreateFromUpload(c.Request().Context(), parts)
	if err != nil {
		return r.respondError(c, log, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(dto.NewProjectCreatedResponse(project)))
}

// UpdateProjectUpload godoc
// @Summary Обновление проекта из multipart запроса
// @Description Поле `json` содержит dto.ProjectUpdateDescriptor. Переданные изображения заменяют прежние.
// @Tags admin-projects
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "ID проекта"
// @Param json formData string true "dto.ProjectUpdateDescriptor"
// @Success 200 {object} response.Response{data=dto.ProjectCreatedResponse}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/admin/project/{id}/upload [put]
func (r *Routers) UpdateProjectUpload(c echo.Context) error {
	const op = "http.routers.UpdateProjectUpload"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := projectID(c)
	if err != nil {
		return r.respondError(c, log, err)
	}

	parts, err := r.readParts(c)
	if err != nil {
		return r.respondError(c, log, err)
	}

	project, err := r.ProjectService.UpdateFromUpload(c.Request().Context(), id, parts)
	if err != nil {
		return r.respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.NewProjectCreatedResponse(project)))
}

// PatchProject godoc
// @Summary Частичное обновление проекта
// @Tags admin-projects
// @Accept json
// @Produce json
// @Param id path int true "ID проекта"
// @Param request body dto.PatchProjectRequest true "Изменяемые поля"
// @Success 200 {object} response.Response{data=models.Project}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/admin/project/{id} [patch]
func (r *Routers) PatchProject(c echo.Context) error {
	const op = "http.routers.PatchProject"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := projectID(c)
	if err != nil {
		return r.respondError(c, log, err)
	}

	var req dto.PatchProjectRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	project, err := r.ProjectService.Patch(c.Request().Context(), id, req.ToDomain())
	if err != nil {
		return r.respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(project))
}

// DeleteProject godoc
// @Summary Удаление проекта и его файлов
// @Tags admin-projects
// @Param id path int true "ID проекта"
// @Success 204
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/admin/project/{id} [delete]
func (r *Routers) DeleteProject(c echo.Context) error {
	const op = "http.routers.DeleteProject"

	log := r.log.With(
		slog.String("op", op),
	)

	id, err := projectID(c)
	if err != nil {
		return r.respondError(c, log, err)
	}

	if err := r.ProjectService.Delete(c.Request().Context(), id); err != nil {
		return r.respondError(c, log, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func projectID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}

	return id, nil
}

func optionalInt(c echo.Context, name string) (*int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, ErrInvalidQuery
	}

	return &v, nil
}
