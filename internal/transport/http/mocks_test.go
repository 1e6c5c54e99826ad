package http_test

import (
	"context"
	"time"

	"project_gallery/internal/domain/models"
	"project_gallery/internal/transport/http/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) CreateFromUpload(ctx context.Context, parts []models.UploadedFile) (models.Project, error) {
	args := m.Called(ctx, parts)
	return args.Get(0).(models.Project), args.Error(1)
}

func (m *MockProjectService) UpdateFromUpload(ctx context.Context, id int64, parts []models.UploadedFile) (models.Project, error) {
	args := m.Called(ctx, id, parts)
	return args.Get(0).(models.Project), args.Error(1)
}

func (m *MockProjectService) CreateFromStored(ctx context.Context, input dto.CreateProjectRequest) (models.Project, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(models.Project), args.Error(1)
}

func (m *MockProjectService) Patch(ctx context.Context, id int64, patch models.ProjectPatch) (models.Project, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(models.Project), args.Error(1)
}

func (m *MockProjectService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProjectService) Get(ctx context.Context, id int64) (models.Project, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Project), args.Error(1)
}

func (m *MockProjectService) List(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error) {
	args := m.Called(ctx, filter)
	projects, _ := args.Get(0).([]models.Project)
	return projects, args.Error(1)
}

func (m *MockProjectService) ListCountries(ctx context.Context, year *int) ([]string, error) {
	args := m.Called(ctx, year)
	countries, _ := args.Get(0).([]string)
	return countries, args.Error(1)
}

func (m *MockProjectService) ListYears(ctx context.Context, country string) ([]int, error) {
	args := m.Called(ctx, country)
	years, _ := args.Get(0).([]int)
	return years, args.Error(1)
}

func (m *MockProjectService) UploadFiles(ctx context.Context, kind models.MediaKind, files []models.UploadedFile) ([]string, error) {
	args := m.Called(ctx, kind, files)
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

func (m *MockProjectService) DeleteFile(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

type MockVisitorService struct {
	mock.Mock
}

func (m *MockVisitorService) Issue(ctx context.Context, validFor *time.Duration) (models.Visitor, error) {
	args := m.Called(ctx, validFor)
	return args.Get(0).(models.Visitor), args.Error(1)
}

func (m *MockVisitorService) Validate(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockVisitorService) Revoke(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) Register(ctx context.Context, input dto.AdminRegisterInput, authorized bool) (models.Admin, error) {
	args := m.Called(ctx, input, authorized)
	return args.Get(0).(models.Admin), args.Error(1)
}

func (m *MockAdminService) Login(ctx context.Context, email, password string) (models.TokenPair, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(models.TokenPair), args.Error(1)
}

func (m *MockAdminService) Refresh(ctx context.Context, adminID uuid.UUID, refreshToken string) (models.TokenPair, error) {
	args := m.Called(ctx, adminID, refreshToken)
	return args.Get(0).(models.TokenPair), args.Error(1)
}

func (m *MockAdminService) Logout(ctx context.Context, adminID uuid.UUID) error {
	args := m.Called(ctx, adminID)
	return args.Error(0)
}

func (m *MockAdminService) IsAdminToken(token string) bool {
	args := m.Called(token)
	return args.Bool(0)
}

type MockFileReader struct {
	mock.Mock
}

func (m *MockFileReader) Read(ctx context.Context, name string) ([]byte, error) {
	args := m.Called(ctx, name)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
