package repository

import (
	"context"
	"time"

	"project_gallery/internal/domain/models"

	"github.com/google/uuid"
)

type ProjectRepository interface {
	CreateProject(ctx context.Context, project models.Project) (int64, error)
	UpdateProject(ctx context.Context, project models.Project) error
	DeleteProject(ctx context.Context, id int64) error
	GetProjectByID(ctx context.Context, id int64) (models.Project, error)
	ListProjects(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error)
	ListCountries(ctx context.Context, year *int) ([]string, error)
	ListYears(ctx context.Context, country string) ([]int, error)
	CountReferencing(ctx context.Context, names []string) (int, error)
}

type VisitorRepository interface {
	SaveVisitor(ctx context.Context, visitor models.Visitor) error
	CountActive(ctx context.Context, token string, now time.Time) (int, error)
	DeleteVisitor(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type AdminRepository interface {
	SaveAdmin(ctx context.Context, admin models.Admin) (uuid.UUID, error)
	AdminByEmail(ctx context.Context, email string) (models.Admin, error)
	AdminByID(ctx context.Context, id uuid.UUID) (models.Admin, error)
	SaveFirstAdmin(ctx context.Context, admin models.Admin) (uuid.UUID, error)
}

type TokenRepository interface {
	SaveRefreshToken(ctx context.Context, adminID, token string, exp time.Duration) error
	GetRefreshToken(ctx context.Context, adminID, token string) (bool, error)
	DeleteRefreshToken(ctx context.Context, adminID, token string) error
	DeleteAllAdminTokens(ctx context.Context, adminID string) error
}
