package http

import (
	"context"
	"log/slog"
	"time"

	"project_gallery/internal/domain/models"
	"project_gallery/internal/transport/http/dto"

	"github.com/google/uuid"

	_ "project_gallery/docs"
)

type ProjectService interface {
	CreateFromUpload(ctx context.Context, parts []models.UploadedFile) (models.Project, error)
	UpdateFromUpload(ctx context.Context, id int64, parts []models.UploadedFile) (models.Project, error)
	CreateFromStored(ctx context.Context, input dto.CreateProjectRequest) (models.Project, error)
	Patch(ctx context.Context, id int64, patch models.ProjectPatch) (models.Project, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (models.Project, error)
	List(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error)
	ListCountries(ctx context.Context, year *int) ([]string, error)
	ListYears(ctx context.Context, country string) ([]int, error)
	UploadFiles(ctx context.Context, kind models.MediaKind, files []models.UploadedFile) ([]string, error)
	DeleteFile(ctx context.Context, name string) error
}

type VisitorService interface {
	Issue(ctx context.Context, validFor *time.Duration) (models.Visitor, error)
	Validate(ctx context.Context, token string) (bool, error)
	Revoke(ctx context.Context, token string) error
}

type AdminService interface {
	Register(ctx context.Context, input dto.AdminRegisterInput, authorized bool) (models.Admin, error)
	Login(ctx context.Context, email, password string) (models.TokenPair, error)
	Refresh(ctx context.Context, adminID uuid.UUID, refreshToken string) (models.TokenPair, error)
	Logout(ctx context.Context, adminID uuid.UUID) error
	IsAdminToken(token string) bool
}

type FileReader interface {
	Read(ctx context.Context, name string) ([]byte, error)
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type RouterOptions struct {
	// Максимальный размер одной части multipart запроса
	MaxUploadSize int64
	// Срок действия ссылки посетителя, если он не указан в запросе. 0 - бессрочно
	DefaultVisitorTTL time.Duration
	HealthChecks      map[string]HealthChecker
}

type Routers struct {
	log            *slog.Logger
	ProjectService ProjectService
	VisitorService VisitorService
	AdminService   AdminService
	files          FileReader
	opts           RouterOptions
}

func NewRouter(
	log *slog.Logger,
	projectService ProjectService,
	visitorService VisitorService,
	adminService AdminService,
	files FileReader,
	opts RouterOptions,
) *Routers {
	return &Routers{
		log:            log,
		ProjectService: projectService,
		VisitorService: visitorService,
		AdminService:   adminService,
		files:          files,
		opts:           opts,
	}
}
