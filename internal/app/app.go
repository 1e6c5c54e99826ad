package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"

	httpapp "project_gallery/internal/app/http"
	"project_gallery/internal/config"
	"project_gallery/internal/lib/logger/sl"
	"project_gallery/internal/repository"
	adminservice "project_gallery/internal/services/admin_service"
	geoservice "project_gallery/internal/services/geo_service"
	metadataservice "project_gallery/internal/services/metadata_service"
	projectservice "project_gallery/internal/services/project_service"
	visitorservice "project_gallery/internal/services/visitor_service"
	filestorage "project_gallery/internal/storage/filestorage"
	"project_gallery/internal/storage/postgresql"
	redisapp "project_gallery/internal/storage/redis"
	httprouters "project_gallery/internal/transport/http"
)

type App struct {
	log        *slog.Logger
	HTTPServer *httpapp.Server
	Sweeper    *visitorservice.Sweeper

	storage *postgresql.Storage
	redis   *redisapp.Client
}

func New(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.New"

	if err := postgresql.Migrate(ctx, cfg.DSN); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	storage, err := postgresql.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redisClient, err := redisapp.Connect(ctx, cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)
	if err != nil {
		storage.Stop()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	files, err := newFileStorage(ctx, cfg)
	if err != nil {
		storage.Stop()
		_ = redisClient.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	secret, err := jwtSecret(log, cfg.JWTSecret)
	if err != nil {
		storage.Stop()
		_ = redisClient.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	repo := repository.NewRepository(storage.Pool())
	tokens := repository.NewRedisTokenRepo(redisClient)

	geoService := geoservice.NewGeoService(log, cfg.Geocoder.BaseURL, cfg.Geocoder.Timeout, cfg.Geocoder.CacheTTL)
	metadataService := metadataservice.NewMetadataService(log, geoService, files)
	projectService := projectservice.NewProjectService(log, repo.Projects, files, metadataService)
	visitorService := visitorservice.NewVisitorService(log, repo.Visitors)
	adminService := adminservice.NewAdminService(log, repo.Admins, tokens, secret, cfg.TokenTTL, cfg.RefreshTTL)

	routers := httprouters.NewRouter(log, projectService, visitorService, adminService, files, httprouters.RouterOptions{
		MaxUploadSize:     cfg.FileStorage.MaxSize,
		DefaultVisitorTTL: cfg.Visitor.DefaultValidFor,
		HealthChecks: map[string]httprouters.HealthChecker{
			"postgres": storage,
			"redis":    redisClient,
		},
	})

	server := httpapp.New(log, httpapp.Options{
		Host:          cfg.HTTP.Host,
		Port:          cfg.HTTP.Port,
		Timeout:       cfg.HTTP.Timeout,
		SessionSecret: cfg.HTTP.SessionSecret,
		JWTSecret:     adminService.Secret(),
		MaxUploadBody: cfg.FileStorage.MaxRequestSize,
	}, routers)
	server.BuildRouters()

	return &App{
		log:        log,
		HTTPServer: server,
		Sweeper:    visitorservice.NewSweeper(log, repo.Visitors, cfg.Visitor.SweepInterval),
		storage:    storage,
		redis:      redisClient,
	}, nil
}

// Stop останавливает HTTP сервер и закрывает соединения. Sweeper останавливается отменой своего контекста
func (a *App) Stop(ctx context.Context) {
	const op = "app.Stop"

	log := a.log.With(slog.String("op", op))

	if err := a.HTTPServer.Stop(ctx); err != nil {
		log.Error("http server stop", sl.Err(err))
	}

	if err := a.redis.Close(); err != nil {
		log.Error("redis close", sl.Err(err))
	}

	a.storage.Stop()
}

func newFileStorage(ctx context.Context, cfg *config.Config) (filestorage.FileStorage, error) {
	switch cfg.FileStorage.Driver {
	case "minio":
		return filestorage.NewMinioFileStorage(ctx, filestorage.MinioOptions{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			UseSSL:    cfg.Minio.UseSSL,
		})
	case "", "local":
		return filestorage.NewLocalFileStorage(cfg.FileStorage.BaseDir)
	}

	return nil, fmt.Errorf("unknown file storage driver %q", cfg.FileStorage.Driver)
}

// jwtSecret без секрета в конфиге токены действительны только до перезапуска
func jwtSecret(log *slog.Logger, configured string) ([]byte, error) {
	if configured != "" {
		return []byte(configured), nil
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}

	log.Warn("jwt secret is not configured, generated a random one")

	return secret, nil
}
