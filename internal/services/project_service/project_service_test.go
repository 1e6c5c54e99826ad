package services_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"project_gallery/internal/domain/models"
	"project_gallery/internal/lib/exifinfo/exiftest"
	services "project_gallery/internal/services/project_service"
	storerr "project_gallery/internal/storage"
	"project_gallery/internal/transport/http/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) CreateProject(ctx context.Context, project models.Project) (int64, error) {
	args := m.Called(ctx, project)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProjectRepository) UpdateProject(ctx context.Context, project models.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) DeleteProject(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProjectRepository) GetProjectByID(ctx context.Context, id int64) (models.Project, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Project), args.Error(1)
}

func (m *MockProjectRepository) ListProjects(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error) {
	args := m.Called(ctx, filter)
	projects, _ := args.Get(0).([]models.Project)
	return projects, args.Error(1)
}

func (m *MockProjectRepository) ListCountries(ctx context.Context, year *int) ([]string, error) {
	args := m.Called(ctx, year)
	countries, _ := args.Get(0).([]string)
	return countries, args.Error(1)
}

func (m *MockProjectRepository) ListYears(ctx context.Context, country string) ([]int, error) {
	args := m.Called(ctx, country)
	years, _ := args.Get(0).([]int)
	return years, args.Error(1)
}

func (m *MockProjectRepository) CountReferencing(ctx context.Context, names []string) (int, error) {
	args := m.Called(ctx, names)
	return args.Int(0), args.Error(1)
}

type MockFileStorage struct {
	mock.Mock
}

func (m *MockFileStorage) Save(ctx context.Context, name string, data []byte) error {
	args := m.Called(ctx, name, data)
	return args.Error(0)
}

func (m *MockFileStorage) Read(ctx context.Context, name string) ([]byte, error) {
	args := m.Called(ctx, name)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockFileStorage) Exists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockFileStorage) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

type MockMetadataExtractor struct {
	mock.Mock
}

func (m *MockMetadataExtractor) Extract(ctx context.Context, data []byte) (models.PictureMetadata, error) {
	args := m.Called(ctx, data)
	return args.Get(0).(models.PictureMetadata), args.Error(1)
}

func (m *MockMetadataExtractor) ExtractStored(ctx context.Context, name string) (models.PictureMetadata, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(models.PictureMetadata), args.Error(1)
}

type fixture struct {
	repo    *MockProjectRepository
	files   *MockFileStorage
	meta    *MockMetadataExtractor
	service *services.ProjectService
}

func newFixture() *fixture {
	f := &fixture{
		repo:  new(MockProjectRepository),
		files: new(MockFileStorage),
		meta:  new(MockMetadataExtractor),
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.service = services.NewProjectService(log, f.repo, f.files, f.meta)

	return f
}

func (f *fixture) assertExpectations(t *testing.T) {
	f.repo.AssertExpectations(t)
	f.files.AssertExpectations(t)
	f.meta.AssertExpectations(t)
}

func descriptor(t *testing.T, body string) models.UploadedFile {
	t.Helper()
	return models.UploadedFile{FieldName: services.DescriptorField, Data: []byte(body)}
}

func picture(field string, data []byte) models.UploadedFile {
	return models.UploadedFile{FieldName: field, FileName: field + ".bin", Data: data}
}

// разные изображения, чтобы мок мог различать их по содержимому
func distinctJPEG(i int) []byte {
	return exiftest.JPEG(exiftest.TIFF(exiftest.Options{
		DateTimeOriginal: fmt.Sprintf("2000:01:%02d 00:00:00", i+1),
	}))
}

func ptr[T any](v T) *T {
	return &v
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
	return &t
}

func TestCreateFromUpload_ExplicitValuesRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.repo.On("CreateProject", ctx, mock.MatchedBy(func(p models.Project) bool {
		return p.Name == "Lisbon" &&
			p.Description == "trip" &&
			p.Year == 2017 &&
			p.Country == "Portugal" &&
			p.Latitude == 38.7223 &&
			p.Longitude == -9.1393 &&
			len(p.Pictures) == 0 && p.Videos != nil
	})).Return(int64(11), nil).Once()

	project, err := f.service.CreateFromUpload(ctx, []models.UploadedFile{
		descriptor(t, `{"name":"Lisbon","description":"trip","year":2017,
			"geo_data":{"country":"Portugal","latitude":38.7223,"longitude":-9.1393}}`),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(11), project.ID)
	assert.Equal(t, 2017, project.Year)
	assert.Equal(t, "Portugal", project.Country)
	assert.Equal(t, 38.7223, project.Latitude)
	assert.Equal(t, -9.1393, project.Longitude)

	f.meta.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestCreateFromUpload_InfersYearAndGeoFromFirstPictureThatHasThem(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	first, second := exiftest.JPEG(nil), exiftest.PNG(nil)

	f.meta.On("Extract", mock.Anything, first).Return(models.PictureMetadata{}, nil).Once()
	f.meta.On("Extract", mock.Anything, second).Return(models.PictureMetadata{
		TakenAt: date(2022, time.June, 1),
		Geo:     &models.GeoLocation{Country: "Japan", Latitude: 35.6762, Longitude: 139.6503},
	}, nil).Once()

	f.files.On("Save", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(nil).Twice()

	var saved models.Project
	f.repo.On("CreateProject", ctx, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).(models.Project) }).
		Return(int64(3), nil).Once()

	project, err := f.service.CreateFromUpload(ctx, []models.UploadedFile{
		picture("front", first),
		descriptor(t, `{"name":"Tokyo","description":""}`),
		picture("back", second),
	})
	require.NoError(t, err)

	assert.Equal(t, 2022, saved.Year)
	assert.Equal(t, "Japan", saved.Country)
	assert.Equal(t, 35.6762, saved.Latitude)
	assert.Equal(t, 139.6503, saved.Longitude)

	require.Len(t, project.Pictures, 2)
	assert.True(t, strings.HasSuffix(project.Pictures[0], "_front.jpeg"), project.Pictures[0])
	assert.True(t, strings.HasSuffix(project.Pictures[1], "_back.png"), project.Pictures[1])
	assert.NotEqual(t, project.Pictures[0], project.Pictures[1])

	f.assertExpectations(t)
}

func TestCreateFromUpload_ExplicitYearWinsOverInferred(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	img := exiftest.JPEG(nil)
	f.meta.On("Extract", mock.Anything, img).Return(models.PictureMetadata{
		TakenAt: date(2010, time.March, 3),
		Geo:     &models.GeoLocation{Country: "Chile", Latitude: -33.4, Longitude: -70.6},
	}, nil)
	f.files.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.repo.On("CreateProject", ctx, mock.MatchedBy(func(p models.Project) bool {
		return p.Year == 2012 && p.Country == "Chile" && p.Latitude == -33.4
	})).Return(int64(1), nil)

	_, err := f.service.CreateFromUpload(ctx, []models.UploadedFile{
		descriptor(t, `{"name":"Santiago","year":2012}`),
		picture("p", img),
	})
	require.NoError(t, err)
	f.assertExpectations(t)
}

func TestCreateFromUpload_MissingInformation(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{name: "no year", body: `{"name":"x"}`, wantField: "year"},
		{name: "no geo", body: `{"name":"x","year":2020}`, wantField: "geo data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			_, err := f.service.CreateFromUpload(context.Background(), []models.UploadedFile{descriptor(t, tt.body)})
			require.Error(t, err)

			var missing *services.MissingInformationError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, tt.wantField, missing.Field)

			f.repo.AssertNotCalled(t, "CreateProject", mock.Anything, mock.Anything)
			f.files.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCreateFromUpload_PicturesWithoutMetadataStillMissYear(t *testing.T) {
	f := newFixture()
	img := exiftest.JPEG(nil)

	f.meta.On("Extract", mock.Anything, img).Return(models.PictureMetadata{}, nil)

	_, err := f.service.CreateFromUpload(context.Background(), []models.UploadedFile{
		descriptor(t, `{"name":"x","geo_data":{"country":"Peru","latitude":-12,"longitude":-77}}`),
		picture("a", img),
	})

	var missing *services.MissingInformationError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "year", missing.Field)
	f.files.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	f.repo.AssertNotCalled(t, "CreateProject", mock.Anything, mock.Anything)
}

func TestCreateFromUpload_AnyInvalidSignatureFailsWholeRequest(t *testing.T) {
	for n := 1; n <= 5; n++ {
		for k := 0; k < n; k++ {
			t.Run(fmt.Sprintf("n=%d/k=%d", n, k), func(t *testing.T) {
				f := newFixture()
				f.meta.On("Extract", mock.Anything, mock.Anything).
					Return(models.PictureMetadata{TakenAt: date(2020, 1, 1)}, nil).Maybe()

				parts := []models.UploadedFile{
					descriptor(t, `{"name":"x","year":2020,"geo_data":{"country":"Italy","latitude":41.9,"longitude":12.5}}`),
				}
				for i := 0; i < n; i++ {
					data := distinctJPEG(i)
					if i == k {
						data = []byte("GIF89a not supported")
					}
					parts = append(parts, picture(fmt.Sprintf("f%d", i), data))
				}

				_, err := f.service.CreateFromUpload(context.Background(), parts)
				require.Error(t, err)
				assert.ErrorIs(t, err, services.ErrInvalidImageFormat)

				f.repo.AssertNotCalled(t, "CreateProject", mock.Anything, mock.Anything)
				f.files.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
			})
		}
	}
}

func TestCreateFromUpload_ExtractionFailureAborts(t *testing.T) {
	f := newFixture()
	img := exiftest.JPEG(nil)
	extractErr := errors.New("country fetch error")

	f.meta.On("Extract", mock.Anything, img).Return(models.PictureMetadata{}, extractErr)

	_, err := f.service.CreateFromUpload(context.Background(), []models.UploadedFile{
		descriptor(t, `{"name":"x","year":2020,"geo_data":{"country":"Italy","latitude":41.9,"longitude":12.5}}`),
		picture("a", img),
	})

	assert.ErrorIs(t, err, extractErr)
	f.repo.AssertNotCalled(t, "CreateProject", mock.Anything, mock.Anything)
}

func TestCreateFromUpload_DescriptorContract(t *testing.T) {
	valid := `{"name":"x","year":2020,"geo_data":{"country":"Italy","latitude":41.9,"longitude":12.5}}`

	tests := []struct {
		name    string
		parts   []models.UploadedFile
		wantErr error
	}{
		{
			name:    "no descriptor",
			parts:   []models.UploadedFile{picture("a", exiftest.JPEG(nil))},
			wantErr: services.ErrNoDescriptor,
		},
		{
			name: "descriptor twice",
			parts: []models.UploadedFile{
				{FieldName: services.DescriptorField, Data: []byte(valid)},
				{FieldName: services.DescriptorField, Data: []byte(valid)},
			},
			wantErr: services.ErrDuplicateDescriptor,
		},
		{
			name: "unnamed field",
			parts: []models.UploadedFile{
				{FieldName: services.DescriptorField, Data: []byte(valid)},
				{Data: exiftest.JPEG(nil)},
			},
			wantErr: services.ErrNoFieldName,
		},
		{
			name:    "malformed json",
			parts:   []models.UploadedFile{{FieldName: services.DescriptorField, Data: []byte(`{"name":`)}},
			wantErr: services.ErrInvalidDescriptor,
		},
		{
			name:    "name is required",
			parts:   []models.UploadedFile{{FieldName: services.DescriptorField, Data: []byte(`{"year":2020}`)}},
			wantErr: services.ErrInvalidDescriptor,
		},
		{
			name: "geo data without coordinates",
			parts: []models.UploadedFile{{FieldName: services.DescriptorField,
				Data: []byte(`{"name":"x","year":2020,"geo_data":{"country":"Italy"}}`)}},
			wantErr: services.ErrInvalidDescriptor,
		},
		{
			name: "geo data without longitude",
			parts: []models.UploadedFile{{FieldName: services.DescriptorField,
				Data: []byte(`{"name":"x","year":2020,"geo_data":{"country":"Italy","latitude":41.9}}`)}},
			wantErr: services.ErrInvalidDescriptor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			_, err := f.service.CreateFromUpload(context.Background(), tt.parts)
			assert.ErrorIs(t, err, tt.wantErr)
			f.repo.AssertNotCalled(t, "CreateProject", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateFromUpload_SaveFailureRemovesWrittenFiles(t *testing.T) {
	f := newFixture()
	saveErr := errors.New("disk full")

	imgs := [][]byte{distinctJPEG(0), distinctJPEG(1), distinctJPEG(2)}

	f.meta.On("Extract", mock.Anything, mock.Anything).Return(models.PictureMetadata{}, nil)
	f.files.On("Save", mock.Anything, mock.Anything, imgs[0]).Return(nil).Once()
	f.files.On("Save", mock.Anything, mock.Anything, imgs[1]).Return(saveErr).Once()
	f.files.On("Save", mock.Anything, mock.Anything, imgs[2]).Return(nil).Once()
	f.files.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(nil)

	_, err := f.service.CreateFromUpload(context.Background(), []models.UploadedFile{
		descriptor(t, `{"name":"x","year":2020,"geo_data":{"country":"Italy","latitude":41.9,"longitude":12.5}}`),
		picture("a", imgs[0]),
		picture("b", imgs[1]),
		picture("c", imgs[2]),
	})

	assert.ErrorIs(t, err, saveErr)
	f.files.AssertNumberOfCalls(t, "Delete", 2)
	f.files.AssertNotCalled(t, "Delete", mock.Anything, mock.MatchedBy(func(name string) bool {
		return strings.HasSuffix(name, "_b.jpeg")
	}))
	f.repo.AssertNotCalled(t, "CreateProject", mock.Anything, mock.Anything)
}

func TestCreateFromUpload_DatabaseFailureRemovesAllFiles(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	dbErr := errors.New("connection reset")

	imgs := [][]byte{distinctJPEG(0), distinctJPEG(1)}

	f.meta.On("Extract", mock.Anything, mock.Anything).Return(models.PictureMetadata{}, nil)
	f.files.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil).Twice()
	f.repo.On("CreateProject", ctx, mock.Anything).Return(int64(0), dbErr)
	f.files.On("Delete", mock.Anything, mock.AnythingOfType("string")).Return(nil).Twice()

	_, err := f.service.CreateFromUpload(ctx, []models.UploadedFile{
		descriptor(t, `{"name":"x","year":2020,"geo_data":{"country":"Italy","latitude":41.9,"longitude":12.5}}`),
		picture("a", imgs[0]),
		picture("b", imgs[1]),
	})

	assert.ErrorIs(t, err, dbErr)
	f.assertExpectations(t)
}

func existingProject() models.Project {
	return models.Project{
		ID:          5,
		Name:        "Alps",
		Description: "hiking",
		Pictures:    []string{"old_1.jpeg", "old_2.png"},
		Videos:      []string{"clip.mp4"},
		Year:        2018,
		Country:     "Switzerland",
		Latitude:    46.8,
		Longitude:   8.2,
	}
}

func TestPatch_OnlyCountryChanges(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	before := existingProject()
	f.repo.On("GetProjectByID", ctx, int64(5)).Return(before, nil)

	want := before
	want.Country = "Austria"
	f.repo.On("UpdateProject", ctx, want).Return(nil).Once()

	country := "Austria"
	got, err := f.service.Patch(ctx, 5, models.ProjectPatch{Country: &country})
	require.NoError(t, err)

	assert.Equal(t, want, got)
	assert.Equal(t, before.Name, got.Name)
	assert.Equal(t, before.Description, got.Description)
	assert.Equal(t, before.Year, got.Year)
	assert.Equal(t, before.Pictures, got.Pictures)
	f.assertExpectations(t)
}

func TestPatch(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		patch     func() models.ProjectPatch
		mockSetup func(f *fixture)
		wantErr   error
	}{
		{
			name:  "not found",
			patch: func() models.ProjectPatch { return models.ProjectPatch{} },
			mockSetup: func(f *fixture) {
				f.repo.On("GetProjectByID", ctx, int64(5)).Return(models.Project{}, storerr.ErrProjectNotFound)
			},
			wantErr: storerr.ErrProjectNotFound,
		},
		{
			name: "referenced picture missing",
			patch: func() models.ProjectPatch {
				pics := []string{"new.jpeg"}
				return models.ProjectPatch{Pictures: &pics}
			},
			mockSetup: func(f *fixture) {
				f.repo.On("GetProjectByID", ctx, int64(5)).Return(existingProject(), nil)
				f.files.On("Exists", ctx, "new.jpeg").Return(false, nil)
			},
			wantErr: storerr.ErrFileNotFound,
		},
		{
			name: "path traversal in reference",
			patch: func() models.ProjectPatch {
				vids := []string{"../etc/passwd"}
				return models.ProjectPatch{Videos: &vids}
			},
			mockSetup: func(f *fixture) {
				f.repo.On("GetProjectByID", ctx, int64(5)).Return(existingProject(), nil)
			},
			wantErr: storerr.ErrInvalidFileName,
		},
		{
			name: "replace pictures",
			patch: func() models.ProjectPatch {
				pics := []string{"new.jpeg"}
				return models.ProjectPatch{Pictures: &pics}
			},
			mockSetup: func(f *fixture) {
				f.repo.On("GetProjectByID", ctx, int64(5)).Return(existingProject(), nil)
				f.files.On("Exists", ctx, "new.jpeg").Return(true, nil)
				f.repo.On("UpdateProject", ctx, mock.MatchedBy(func(p models.Project) bool {
					return len(p.Pictures) == 1 && p.Pictures[0] == "new.jpeg" && p.Name == "Alps"
				})).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.mockSetup(f)

			_, err := f.service.Patch(ctx, 5, tt.patch())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				f.repo.AssertNotCalled(t, "UpdateProject", mock.Anything, mock.Anything)
				return
			}

			require.NoError(t, err)
			f.assertExpectations(t)
		})
	}
}

func TestUpdateFromUpload_KeepsUnsetFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	before := existingProject()
	f.repo.On("GetProjectByID", ctx, int64(5)).Return(before, nil)

	want := before
	want.Country = "Italy"
	want.Latitude = 45.46
	want.Longitude = 9.19
	f.repo.On("UpdateProject", ctx, want).Return(nil).Once()

	got, err := f.service.UpdateFromUpload(ctx, 5, []models.UploadedFile{
		descriptor(t, `{"country":"Italy","latitude":45.46,"longitude":9.19}`),
	})
	require.NoError(t, err)

	assert.Equal(t, want, got)
	f.files.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestUpdateFromUpload_OnlyCountryChanges(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	before := existingProject()
	f.repo.On("GetProjectByID", ctx, int64(5)).Return(before, nil)

	want := before
	want.Country = "Austria"
	f.repo.On("UpdateProject", ctx, want).Return(nil).Once()

	got, err := f.service.UpdateFromUpload(ctx, 5, []models.UploadedFile{
		descriptor(t, `{"country":"Austria"}`),
	})
	require.NoError(t, err)

	assert.Equal(t, "Austria", got.Country)
	assert.Equal(t, 46.8, got.Latitude)
	assert.Equal(t, 8.2, got.Longitude)
	assert.Equal(t, before.Year, got.Year)
	assert.Equal(t, before.Name, got.Name)
	f.assertExpectations(t)
}

func TestUpdateFromUpload_ReplacesPicturesAndRemovesOldFiles(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	before := existingProject()
	img := exiftest.JPEG(nil)

	f.repo.On("GetProjectByID", ctx, int64(5)).Return(before, nil)
	// метаданные новой фотографии не должны перекрыть сохраненные год и место
	f.meta.On("Extract", mock.Anything, img).Return(models.PictureMetadata{
		TakenAt: date(2024, 8, 8),
		Geo:     &models.GeoLocation{Country: "Peru", Latitude: -12, Longitude: -77},
	}, nil)
	f.files.On("Save", mock.Anything, mock.Anything, img).Return(nil).Once()
	f.repo.On("UpdateProject", ctx, mock.MatchedBy(func(p models.Project) bool {
		return p.Year == 2018 && len(p.Pictures) == 1 &&
			strings.HasSuffix(p.Pictures[0], "_cover.jpeg") &&
			p.Country == "Switzerland" && p.Latitude == 46.8 && p.Longitude == 8.2 &&
			p.Name == "Alps"
	})).Return(nil).Once()
	f.files.On("Delete", mock.Anything, "old_1.jpeg").Return(nil).Once()
	f.files.On("Delete", mock.Anything, "old_2.png").Return(errors.New("already gone")).Once()

	got, err := f.service.UpdateFromUpload(ctx, 5, []models.UploadedFile{
		descriptor(t, `{}`),
		picture("cover", img),
	})
	require.NoError(t, err)

	assert.Equal(t, 2018, got.Year)
	assert.Equal(t, "Switzerland", got.Country)
	assert.Equal(t, 46.8, got.Latitude)
	assert.Equal(t, 8.2, got.Longitude)
	assert.Equal(t, before.Videos, got.Videos)
	f.assertExpectations(t)
}

func TestUpdateFromUpload_ExplicitYearWithPictures(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	img := exiftest.JPEG(nil)

	f.repo.On("GetProjectByID", ctx, int64(5)).Return(existingProject(), nil)
	f.meta.On("Extract", mock.Anything, img).Return(models.PictureMetadata{TakenAt: date(2024, 8, 8)}, nil)
	f.files.On("Save", mock.Anything, mock.Anything, img).Return(nil).Once()
	f.repo.On("UpdateProject", ctx, mock.MatchedBy(func(p models.Project) bool {
		return p.Year == 2020 && p.Country == "Switzerland"
	})).Return(nil).Once()
	f.files.On("Delete", mock.Anything, mock.Anything).Return(nil)

	got, err := f.service.UpdateFromUpload(ctx, 5, []models.UploadedFile{
		descriptor(t, `{"year":2020}`),
		picture("cover", img),
	})
	require.NoError(t, err)
	assert.Equal(t, 2020, got.Year)
}

func TestUpdateFromUpload_InvalidCoordinates(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.service.UpdateFromUpload(ctx, 5, []models.UploadedFile{
		descriptor(t, `{"latitude":120}`),
	})
	assert.ErrorIs(t, err, services.ErrInvalidDescriptor)
	f.repo.AssertNotCalled(t, "GetProjectByID", mock.Anything, mock.Anything)
}

func TestUpdateFromUpload_NotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.repo.On("GetProjectByID", ctx, int64(9)).Return(models.Project{}, storerr.ErrProjectNotFound)

	_, err := f.service.UpdateFromUpload(ctx, 9, []models.UploadedFile{descriptor(t, `{"name":"y"}`)})
	assert.ErrorIs(t, err, storerr.ErrProjectNotFound)
	f.repo.AssertNotCalled(t, "UpdateProject", mock.Anything, mock.Anything)
}

func TestCreateFromStored(t *testing.T) {
	ctx := context.Background()

	t.Run("infers from stored pictures", func(t *testing.T) {
		f := newFixture()

		f.files.On("Exists", ctx, "a.jpeg").Return(true, nil)
		f.files.On("Exists", ctx, "b.jpeg").Return(true, nil)
		f.files.On("Exists", ctx, "v.mp4").Return(true, nil)
		f.meta.On("ExtractStored", mock.Anything, "a.jpeg").Return(models.PictureMetadata{}, nil)
		f.meta.On("ExtractStored", mock.Anything, "b.jpeg").Return(models.PictureMetadata{
			TakenAt: date(2021, 2, 2),
			Geo:     &models.GeoLocation{Country: "Kenya", Latitude: -1.29, Longitude: 36.82},
		}, nil)
		f.repo.On("CreateProject", ctx, mock.MatchedBy(func(p models.Project) bool {
			return p.Year == 2021 && p.Country == "Kenya" &&
				assert.ObjectsAreEqual([]string{"a.jpeg", "b.jpeg"}, p.Pictures) &&
				assert.ObjectsAreEqual([]string{"v.mp4"}, p.Videos)
		})).Return(int64(21), nil)

		got, err := f.service.CreateFromStored(ctx, dto.CreateProjectRequest{
			Name:     "Safari",
			Pictures: []string{"a.jpeg", "b.jpeg"},
			Videos:   []string{"v.mp4"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(21), got.ID)
		f.assertExpectations(t)
	})

	t.Run("explicit values skip extraction", func(t *testing.T) {
		f := newFixture()
		year := 1999

		f.files.On("Exists", ctx, "a.jpeg").Return(true, nil)
		f.repo.On("CreateProject", ctx, mock.Anything).Return(int64(1), nil)

		_, err := f.service.CreateFromStored(ctx, dto.CreateProjectRequest{
			Name:     "Old",
			Pictures: []string{"a.jpeg"},
			Year:     &year,
			GeoData:  &dto.GeoData{Country: "Spain", Latitude: ptr(40.4), Longitude: ptr(-3.7)},
		})
		require.NoError(t, err)
		f.meta.AssertNotCalled(t, "ExtractStored", mock.Anything, mock.Anything)
	})

	t.Run("missing file", func(t *testing.T) {
		f := newFixture()

		f.files.On("Exists", ctx, "a.jpeg").Return(false, nil)

		_, err := f.service.CreateFromStored(ctx, dto.CreateProjectRequest{
			Name:     "Nope",
			Pictures: []string{"a.jpeg"},
		})
		assert.ErrorIs(t, err, storerr.ErrFileNotFound)
		f.repo.AssertNotCalled(t, "CreateProject", mock.Anything, mock.Anything)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes row then files", func(t *testing.T) {
		f := newFixture()
		p := existingProject()

		f.repo.On("GetProjectByID", ctx, int64(5)).Return(p, nil)
		f.repo.On("DeleteProject", ctx, int64(5)).Return(nil)
		f.files.On("Delete", mock.Anything, "old_1.jpeg").Return(nil)
		f.files.On("Delete", mock.Anything, "old_2.png").Return(storerr.ErrFileNotFound)
		f.files.On("Delete", mock.Anything, "clip.mp4").Return(nil)

		require.NoError(t, f.service.Delete(ctx, 5))
		f.assertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture()

		f.repo.On("GetProjectByID", ctx, int64(5)).Return(models.Project{}, storerr.ErrProjectNotFound)

		assert.ErrorIs(t, f.service.Delete(ctx, 5), storerr.ErrProjectNotFound)
		f.repo.AssertNotCalled(t, "DeleteProject", mock.Anything, mock.Anything)
	})
}

func TestUploadFiles(t *testing.T) {
	ctx := context.Background()
	mp4 := []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p', 'i', 's', 'o', 'm'}

	t.Run("pictures", func(t *testing.T) {
		f := newFixture()
		f.files.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(nil).Twice()

		names, err := f.service.UploadFiles(ctx, models.MediaKindPicture, []models.UploadedFile{
			{FieldName: "files", FileName: "IMG 001.JPG", Data: exiftest.JPEG(nil)},
			{FieldName: "files", FileName: "scan.png", Data: exiftest.PNG(nil)},
		})
		require.NoError(t, err)
		require.Len(t, names, 2)
		assert.True(t, strings.HasSuffix(names[0], "_IMG_001.jpeg"), names[0])
		assert.True(t, strings.HasSuffix(names[1], "_scan.png"), names[1])
		f.assertExpectations(t)
	})

	t.Run("video", func(t *testing.T) {
		f := newFixture()
		f.files.On("Save", mock.Anything, mock.Anything, mp4).Return(nil).Once()

		names, err := f.service.UploadFiles(ctx, models.MediaKindVideo, []models.UploadedFile{
			{FieldName: "clip", Data: mp4},
		})
		require.NoError(t, err)
		require.Len(t, names, 1)
		assert.True(t, strings.HasSuffix(names[0], "_clip.mp4"), names[0])
	})

	t.Run("picture endpoint rejects video", func(t *testing.T) {
		f := newFixture()

		_, err := f.service.UploadFiles(ctx, models.MediaKindPicture, []models.UploadedFile{
			{FieldName: "clip", Data: mp4},
		})
		assert.ErrorIs(t, err, services.ErrInvalidImageFormat)
		f.files.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no files", func(t *testing.T) {
		f := newFixture()

		_, err := f.service.UploadFiles(ctx, models.MediaKindVideo, nil)
		assert.ErrorIs(t, err, services.ErrNoFiles)
	})

	t.Run("failed save removes the rest", func(t *testing.T) {
		f := newFixture()
		a, b := exiftest.JPEG(nil), exiftest.PNG(nil)

		f.files.On("Save", mock.Anything, mock.Anything, a).Return(nil).Once()
		f.files.On("Save", mock.Anything, mock.Anything, b).Return(errors.New("quota")).Once()
		f.files.On("Delete", mock.Anything, mock.MatchedBy(func(name string) bool {
			return strings.HasSuffix(name, "_a.jpeg")
		})).Return(nil).Once()

		_, err := f.service.UploadFiles(ctx, models.MediaKindPicture, []models.UploadedFile{
			{FieldName: "a", Data: a},
			{FieldName: "b", Data: b},
		})
		require.Error(t, err)
		f.assertExpectations(t)
	})
}

func TestDeleteFile(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		file      string
		mockSetup func(f *fixture)
		wantErr   error
	}{
		{
			name: "unreferenced",
			file: "x.jpeg",
			mockSetup: func(f *fixture) {
				f.repo.On("CountReferencing", ctx, []string{"x.jpeg"}).Return(0, nil)
				f.files.On("Delete", ctx, "x.jpeg").Return(nil)
			},
		},
		{
			name: "in use",
			file: "x.jpeg",
			mockSetup: func(f *fixture) {
				f.repo.On("CountReferencing", ctx, []string{"x.jpeg"}).Return(2, nil)
			},
			wantErr: services.ErrFileInUse,
		},
		{
			name:      "invalid name",
			file:      "../x.jpeg",
			mockSetup: func(f *fixture) {},
			wantErr:   storerr.ErrInvalidFileName,
		},
		{
			name: "missing",
			file: "x.jpeg",
			mockSetup: func(f *fixture) {
				f.repo.On("CountReferencing", ctx, []string{"x.jpeg"}).Return(0, nil)
				f.files.On("Delete", ctx, "x.jpeg").Return(storerr.ErrFileNotFound)
			},
			wantErr: storerr.ErrFileNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.mockSetup(f)

			err := f.service.DeleteFile(ctx, tt.file)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			f.assertExpectations(t)
		})
	}
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	year := 2020

	f.repo.On("ListProjects", ctx, models.ProjectFilter{Year: &year}).Return([]models.Project{existingProject()}, nil)
	f.repo.On("ListCountries", ctx, &year).Return([]string{"Austria", "Switzerland"}, nil)
	f.repo.On("ListYears", ctx, "Switzerland").Return([]int{2020, 2018}, nil)
	f.repo.On("GetProjectByID", ctx, int64(5)).Return(existingProject(), nil)

	projects, err := f.service.List(ctx, models.ProjectFilter{Year: &year})
	require.NoError(t, err)
	assert.Len(t, projects, 1)

	countries, err := f.service.ListCountries(ctx, &year)
	require.NoError(t, err)
	assert.Equal(t, []string{"Austria", "Switzerland"}, countries)

	years, err := f.service.ListYears(ctx, "Switzerland")
	require.NoError(t, err)
	assert.Equal(t, []int{2020, 2018}, years)

	p, err := f.service.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Alps", p.Name)

	f.assertExpectations(t)
}
