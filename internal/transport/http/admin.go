package http

import (
	"log/slog"
	"net/http"
	"strings"

	jwtlib "project_gallery/internal/lib/jwt"
	"project_gallery/internal/lib/logger/sl"
	"project_gallery/internal/transport/http/dto"
	"project_gallery/internal/transport/http/dto/request"
	"project_gallery/internal/transport/http/dto/response"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Register godoc
// @Summary Регистрация администратора
// @Description Первый администратор регистрируется без токена, остальные только с токеном администратора.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body dto.AdminRegisterInput true "Данные для регистрации"
// @Success 201 {object} response.Response{data=dto.AdminResponse} "Успешная регистрация"
// @Failure 400 {object} response.ErrorResponse "Неверный формат запроса"
// @Failure 403 {object} response.ErrorResponse "Нужен токен администратора"
// @Failure 409 {object} response.ErrorResponse "Администратор уже существует"
// @Router /api/v1/admin/register [post]
func (r *Routers) Register(c echo.Context) error {
	const op = "http.routers.Register"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.AdminRegisterInput

	if err := c.Bind(&req); err != nil {
		log.Error("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	authorized := r.AdminService.IsAdminToken(bearerToken(c))

	admin, err := r.AdminService.Register(c.Request().Context(), req, authorized)
	if err != nil {
		return r.respondError(c, log, err)
	}

	log.Info("admin registered successfully", slog.String("admin_id", admin.ID.String()))

	return c.JSON(http.StatusCreated, response.SuccessResponse(dto.AdminResponse{
		ID:    admin.ID.String(),
		Name:  admin.Name,
		Email: admin.Email,
	}))
}

// Login godoc
// @Summary Вход администратора
// @Description Возвращает access и refresh токены.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Данные для входа"
// @Success 200 {object} response.Response{data=models.TokenPair} "Успешный вход"
// @Failure 400 {object} response.ErrorResponse "Неверный формат запроса"
// @Failure 401 {object} response.ErrorResponse "Ошибка аутентификации"
// @Router /api/v1/admin/login [post]
func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.LoginRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid format request", slog.String("email", req.Email))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	tokens, err := r.AdminService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return r.respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(tokens))
}

// Refresh godoc
// @Summary Обновление токенов
// @Tags admin
// @Accept json
// @Produce json
// @Param request body request.RefreshRequest true "Refresh токен"
// @Success 200 {object} response.Response{data=models.TokenPair}
// @Failure 401 {object} response.ErrorResponse
// @Router /api/v1/admin/refresh [post]
func (r *Routers) Refresh(c echo.Context) error {
	const op = "http.routers.Refresh"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.RefreshRequest

	if err := c.Bind(&req); err != nil {
		log.Error("validation bind", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	tokens, err := r.AdminService.Refresh(c.Request().Context(), uuid.MustParse(req.AdminID), req.RefreshToken)
	if err != nil {
		return r.respondError(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(tokens))
}

// Logout godoc
// @Summary Отзыв всех refresh токенов администратора
// @Tags admin
// @Success 204
// @Security ApiKeyAuth
// @Router /api/v1/admin/logout [post]
func (r *Routers) Logout(c echo.Context) error {
	const op = "http.routers.Logout"

	log := r.log.With(
		slog.String("op", op),
	)

	claims, err := adminClaims(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	if err := r.AdminService.Logout(c.Request().Context(), claims.AdminID); err != nil {
		return r.respondError(c, log, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// AdminOnly пропускает только токены с admin claim. Подпись и срок уже проверены echo-jwt
func (r *Routers) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := adminClaims(c); err != nil {
			return c.JSON(http.StatusForbidden, response.ErrorResponseWithDetails("forbidden", "admin access required"))
		}

		return next(c)
	}
}

func adminClaims(c echo.Context) (jwtlib.Claims, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return jwtlib.Claims{}, jwtlib.ErrInvalidToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return jwtlib.Claims{}, jwtlib.ErrInvalidTokenClaims
	}

	return jwtlib.ClaimsFromMap(mc)
}

func bearerToken(c echo.Context) string {
	const prefix = "Bearer "

	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}

	return ""
}
