package http

import (
	"log/slog"
	"net/http"

	"project_gallery/internal/lib/logger/sl"
	"project_gallery/internal/transport/http/dto"
	"project_gallery/internal/transport/http/dto/response"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	VisitorSessionName = "visitor-uuid"
	visitorSessionKey  = "uuid"
)

// CreateVisitor godoc
// @Summary Создание ссылки для посетителя
// @Description Если valid_for_sec не задан, используется срок по умолчанию из конфигурации (или бессрочно).
// @Tags visitors
// @Accept json
// @Produce json
// @Param request body dto.CreateVisitorRequest false "Срок действия"
// @Success 201 {object} response.Response{data=dto.VisitorResponse}
// @Failure 400 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/admin/visitor [post]
func (r *Routers) CreateVisitor(c echo.Context) error {
	const op = "http.routers.CreateVisitor"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.CreateVisitorRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	validFor := req.ValidFor()
	if validFor == nil && r.opts.DefaultVisitorTTL > 0 {
		ttl := r.opts.DefaultVisitorTTL
		validFor = &ttl
	}

	visitor, err := r.VisitorService.Issue(c.Request().Context(), validFor)
	if err != nil {
		return r.respondError(c, log, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(dto.VisitorResponse{
		UUID:      visitor.UUID,
		ValidTill: visitor.TimeOut,
	}))
}

// RevokeVisitor godoc
// @Summary Отзыв ссылки посетителя
// @Tags visitors
// @Param uuid path string true "Токен посетителя"
// @Success 204
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/admin/visitor/{uuid} [delete]
func (r *Routers) RevokeVisitor(c echo.Context) error {
	const op = "http.routers.RevokeVisitor"

	log := r.log.With(
		slog.String("op", op),
	)

	if err := r.VisitorService.Revoke(c.Request().Context(), c.Param("uuid")); err != nil {
		return r.respondError(c, log, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// Visit godoc
// @Summary Вход посетителя по ссылке
// @Description Проверяет токен и сохраняет его в cookie сессии visitor-uuid.
// @Tags visitors
// @Param uuid path string true "Токен посетителя"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Router /visit/{uuid} [get]
func (r *Routers) Visit(c echo.Context) error {
	const op = "http.routers.Visit"

	log := r.log.With(
		slog.String("op", op),
	)

	token := c.Param("uuid")

	ok, err := r.VisitorService.Validate(c.Request().Context(), token)
	if err != nil {
		return r.respondError(c, log, err)
	}
	if !ok {
		return c.JSON(http.StatusUnauthorized, response.ErrVisitorCredentialInvalid)
	}

	sess, err := session.Get(VisitorSessionName, c)
	if sess == nil {
		return r.respondError(c, log, err)
	}
	if err != nil {
		log.Warn("broken visitor session replaced", sl.Err(err))
	}
	sess.Values[visitorSessionKey] = token
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return r.respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.Response{
		Status:  "success",
		Message: "welcome",
	})
}

// VisitorOnly пропускает запросы с действующей ссылкой посетителя (cookie или Bearer)
// и запросы администратора. Без учетных данных 417, с недействительными 401.
func (r *Routers) VisitorOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		const op = "http.routers.VisitorOnly"

		bearer := bearerToken(c)
		if bearer != "" && r.AdminService.IsAdminToken(bearer) {
			return next(c)
		}

		token := bearer
		if token == "" {
			token = sessionToken(c)
		}
		if token == "" {
			return c.JSON(http.StatusExpectationFailed, response.ErrVisitorCredentialMissing)
		}

		ok, err := r.VisitorService.Validate(c.Request().Context(), token)
		if err != nil {
			return r.respondError(c, r.log.With(slog.String("op", op)), err)
		}
		if !ok {
			return c.JSON(http.StatusUnauthorized, response.ErrVisitorCredentialInvalid)
		}

		return next(c)
	}
}

func sessionToken(c echo.Context) string {
	sess, err := session.Get(VisitorSessionName, c)
	if err != nil {
		return ""
	}

	token, _ := sess.Values[visitorSessionKey].(string)

	return token
}
