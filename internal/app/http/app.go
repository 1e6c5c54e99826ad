package httpapp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"project_gallery/internal/lib/logger/sl"
	"project_gallery/internal/middleware"
	httprouters "project_gallery/internal/transport/http"

	"github.com/arl/statsviz"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

const shutdownTimeout = 10 * time.Second

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

type Options struct {
	Host          string
	Port          string
	Timeout       time.Duration
	SessionSecret string
	// Секрет подписи JWT, тот же что у admin_service
	JWTSecret     []byte
	// Лимит тела запросов на загрузку файлов, 0 без ограничения
	MaxUploadBody int64
}

type Server struct {
	m       *http.ServeMux
	log     *slog.Logger
	e       *echo.Echo
	routers *httprouters.Routers
	opts    Options
}

func New(log *slog.Logger, opts Options, routers *httprouters.Routers) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	validate := validator.New()
	e.Validator = &CustomValidator{validator: validate}

	if opts.Timeout > 0 {
		e.Server.ReadTimeout = opts.Timeout
		e.Server.WriteTimeout = opts.Timeout
	}

	e.Use(session.Middleware(sessions.NewCookieStore(sessionKey(log, opts.SessionSecret))))

	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowCredentials: true,
	}))
	e.Use(echomw.Recover())
	e.Use(middleware.PrometheusMetrics)

	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogRemoteIP: true,
		LogLatency:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.Info("request",
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote ip", v.RemoteIP),
				slog.Duration("latency", v.Latency),
			)

			return nil
		},
	}))

	mux := http.NewServeMux()
	err := statsviz.Register(mux)
	if err != nil {
		log.Info("Statsviz start with error", slog.Any("error:", err.Error()))
	}

	return &Server{
		m:       mux,
		log:     log,
		e:       e,
		routers: routers,
		opts:    opts,
	}
}

// sessionKey без секрета в конфиге генерирует случайный: cookie посетителей
// тогда живут до перезапуска процесса
func sessionKey(log *slog.Logger, secret string) []byte {
	if secret != "" {
		return []byte(secret)
	}

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic(err)
	}

	log.Warn("session secret is not configured, using random key")

	return key
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(net.JoinHostPort(s.opts.Host, s.opts.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	const op = "http.Server.Stop"

	optCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	s.log.Info("stopping", slog.String("op", op))

	if err := s.e.Shutdown(optCtx); err != nil {
		s.log.Error("could not shutdown server gracefully", sl.Err(err))

		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

// Handler нужен тестам, чтобы гонять запросы через полный набор middleware
func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) BuildRouters() {
	s.e.GET("/health", s.routers.Health)
	s.e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// ссылка, которую администратор отправляет посетителю
	s.e.GET("/visit/:uuid", s.routers.Visit)
	s.e.GET("/storage/:name", s.routers.ServeFile, s.routers.VisitorOnly)

	debug := s.e.Group("/debug")
	{
		debug.GET("/statsviz/", echo.WrapHandler(s.m))
		debug.GET("/statsviz/*", echo.WrapHandler(s.m))
	}

	swagger := s.e.Group("/swag")
	{
		swagger.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	api := s.e.Group("/api/v1")
	{
		projects := api.Group("/projects", s.routers.VisitorOnly)
		{
			projects.GET("", s.routers.ListProjects)
			projects.GET("/list-years", s.routers.ListYears)
			projects.GET("/list-countries", s.routers.ListCountries)
			projects.GET("/:id", s.routers.GetProject)
		}

		api.POST("/admin/register", s.routers.Register)
		api.POST("/admin/login", s.routers.Login)
		api.POST("/admin/refresh", s.routers.Refresh)

		upload := s.uploadLimit()

		admin := api.Group("/admin")
		admin.Use(echojwt.WithConfig(echojwt.Config{
			SigningKey: s.opts.JWTSecret,
		}))
		admin.Use(s.routers.AdminOnly)
		{
			admin.POST("/logout", s.routers.Logout)

			admin.POST("/visitor", s.routers.CreateVisitor)
			admin.DELETE("/visitor/:uuid", s.routers.RevokeVisitor)

			admin.POST("/pictures", s.routers.UploadPictures, upload...)
			admin.POST("/videos", s.routers.UploadVideos, upload...)
			admin.DELETE("/storage/:file_name", s.routers.DeleteFile)

			admin.POST("/project", s.routers.CreateProject)
			admin.POST("/project/upload", s.routers.CreateProjectUpload, upload...)
			admin.PUT("/project/:id/upload", s.routers.UpdateProjectUpload, upload...)
			admin.PATCH("/project/:id", s.routers.PatchProject)
			admin.DELETE("/project/:id", s.routers.DeleteProject)
		}
	}
}

// uploadLimit ограничивает тело multipart запроса целиком, лимит на отдельный
// файл проверяется при чтении частей
func (s *Server) uploadLimit() []echo.MiddlewareFunc {
	if s.opts.MaxUploadBody <= 0 {
		return nil
	}

	return []echo.MiddlewareFunc{
		echomw.BodyLimit(strconv.FormatInt(s.opts.MaxUploadBody, 10) + "B"),
	}
}
