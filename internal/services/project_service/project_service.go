package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"project_gallery/internal/domain/models"
	"project_gallery/internal/lib/logger/sl"
	"project_gallery/internal/metrics"
	"project_gallery/internal/repository"
	storerr "project_gallery/internal/storage"
	storage "project_gallery/internal/storage/filestorage"
	"project_gallery/internal/transport/http/dto"
)

var (
	ErrFileInUse = errors.New("file is referenced by a project")
	ErrNoFiles   = errors.New("no files supplied")
)

// MissingInformationError поле проекта не задано явно и не выводится из загруженных файлов
type MissingInformationError struct {
	Field string
}

func (e *MissingInformationError) Error() string {
	return "missing information: " + e.Field
}

type MetadataExtractor interface {
	Extract(ctx context.Context, data []byte) (models.PictureMetadata, error)
	ExtractStored(ctx context.Context, name string) (models.PictureMetadata, error)
}

type ProjectService struct {
	log         *slog.Logger
	repo        repository.ProjectRepository
	fileStorage storage.FileStorage
	metadata    MetadataExtractor
}

func NewProjectService(
	log *slog.Logger,
	repo repository.ProjectRepository,
	fileStorage storage.FileStorage,
	metadata MetadataExtractor,
) *ProjectService {
	return &ProjectService{
		log:         log,
		repo:        repo,
		fileStorage: fileStorage,
		metadata:    metadata,
	}
}

// CreateFromUpload создает проект из multipart запроса: одно поле `json` с описанием
// и произвольное число изображений. Год и местоположение, не заданные явно,
// берутся из первой фотографии, где они есть.
func (s *ProjectService) CreateFromUpload(ctx context.Context, parts []models.UploadedFile) (models.Project, error) {
	const op = "project_service.CreateFromUpload"

	log := s.log.With(
		slog.String("op", op),
		slog.Int("parts", len(parts)),
	)

	var input dto.ProjectDescriptor
	files, err := splitParts(parts, &input)
	if err != nil {
		return s.fail(op, "create", err)
	}

	pictures, err := s.processPictures(ctx, files)
	if err != nil {
		log.Warn("failed to process pictures", sl.Err(err))

		return s.fail(op, "create", err)
	}

	meta := metadataOf(pictures)

	year, err := resolveYear(input.Year, meta)
	if err != nil {
		return s.fail(op, "create", err)
	}

	geo, err := resolveGeo(input.GeoData.ToDomain(), meta)
	if err != nil {
		return s.fail(op, "create", err)
	}

	names, err := s.writeFiles(ctx, pictures)
	if err != nil {
		log.Error("failed to write pictures", sl.Err(err))

		return s.fail(op, "create", err)
	}

	project := models.Project{
		Name:        input.Name,
		Description: input.Description,
		Pictures:    names,
		Videos:      []string{},
		Year:        year,
		Country:     geo.Country,
		Latitude:    geo.Latitude,
		Longitude:   geo.Longitude,
	}

	id, err := s.repo.CreateProject(ctx, project)
	if err != nil {
		log.Error("failed to insert project", sl.Err(err))
		s.removeFiles(ctx, names)

		return s.fail(op, "create", err)
	}
	project.ID = id

	log.Info("project created", slog.Int64("id", id), slog.Int("pictures", len(names)))
	metrics.ProjectsIngested.WithLabelValues("create", "ok").Inc()

	return project, nil
}

// UpdateFromUpload обновляет проект из multipart запроса. Заданные поля описания
// перекрывают сохраненные, остальные не меняются. Если переданы изображения,
// они полностью заменяют прежний список, а старые файлы удаляются после записи в БД.
func (s *ProjectService) UpdateFromUpload(ctx context.Context, id int64, parts []models.UploadedFile) (models.Project, error) {
	const op = "project_service.UpdateFromUpload"

	log := s.log.With(
		slog.String("op", op),
		slog.Int64("id", id),
	)

	var input dto.ProjectUpdateDescriptor
	files, err := splitParts(parts, &input)
	if err != nil {
		return s.fail(op, "update", err)
	}

	existing, err := s.repo.GetProjectByID(ctx, id)
	if err != nil {
		return s.fail(op, "update", err)
	}

	pictures, err := s.processPictures(ctx, files)
	if err != nil {
		log.Warn("failed to process pictures", sl.Err(err))

		return s.fail(op, "update", err)
	}

	// незаданные поля остаются как в сохраненном проекте, метаданные новых
	// фотографий на них не влияют
	project := input.ToPatch().Apply(existing)

	var obsolete []string
	if len(pictures) > 0 {
		names, err := s.writeFiles(ctx, pictures)
		if err != nil {
			log.Error("failed to write pictures", sl.Err(err))

			return s.fail(op, "update", err)
		}

		project.Pictures = names
		obsolete = existing.Pictures
	}

	if err := s.repo.UpdateProject(ctx, project); err != nil {
		log.Error("failed to update project", sl.Err(err))
		if len(pictures) > 0 {
			s.removeFiles(ctx, project.Pictures)
		}

		return s.fail(op, "update", err)
	}

	s.removeFiles(ctx, obsolete)

	log.Info("project updated", slog.Int("pictures", len(project.Pictures)))
	metrics.ProjectsIngested.WithLabelValues("update", "ok").Inc()

	return project, nil
}

// CreateFromStored создает проект из файлов, загруженных ранее через UploadFiles
func (s *ProjectService) CreateFromStored(ctx context.Context, input dto.CreateProjectRequest) (models.Project, error) {
	const op = "project_service.CreateFromStored"

	log := s.log.With(slog.String("op", op))

	pictures := nonNil(input.Pictures)
	videos := nonNil(input.Videos)

	if err := s.ensureExist(ctx, append(append([]string{}, pictures...), videos...)); err != nil {
		log.Warn("referenced files are missing", sl.Err(err))

		return s.fail(op, "create", err)
	}

	var meta []models.PictureMetadata
	if input.Year == nil || input.GeoData == nil {
		var err error
		meta, err = s.storedMetadata(ctx, pictures)
		if err != nil {
			log.Warn("failed to read stored metadata", sl.Err(err))

			return s.fail(op, "create", err)
		}
	}

	year, err := resolveYear(input.Year, meta)
	if err != nil {
		return s.fail(op, "create", err)
	}

	geo, err := resolveGeo(input.GeoData.ToDomain(), meta)
	if err != nil {
		return s.fail(op, "create", err)
	}

	project := models.Project{
		Name:        input.Name,
		Description: input.Description,
		Pictures:    pictures,
		Videos:      videos,
		Year:        year,
		Country:     geo.Country,
		Latitude:    geo.Latitude,
		Longitude:   geo.Longitude,
	}

	id, err := s.repo.CreateProject(ctx, project)
	if err != nil {
		log.Error("failed to insert project", sl.Err(err))

		return s.fail(op, "create", err)
	}
	project.ID = id

	log.Info("project created", slog.Int64("id", id))
	metrics.ProjectsIngested.WithLabelValues("create", "ok").Inc()

	return project, nil
}

// Patch меняет только заданные поля
func (s *ProjectService) Patch(ctx context.Context, id int64, patch models.ProjectPatch) (models.Project, error) {
	const op = "project_service.Patch"

	log := s.log.With(
		slog.String("op", op),
		slog.Int64("id", id),
	)

	existing, err := s.repo.GetProjectByID(ctx, id)
	if err != nil {
		return models.Project{}, fmt.Errorf("%s: %w", op, err)
	}

	var referenced []string
	if patch.Pictures != nil {
		referenced = append(referenced, *patch.Pictures...)
	}
	if patch.Videos != nil {
		referenced = append(referenced, *patch.Videos...)
	}

	if err := s.ensureExist(ctx, referenced); err != nil {
		log.Warn("referenced files are missing", sl.Err(err))

		return models.Project{}, fmt.Errorf("%s: %w", op, err)
	}

	project := patch.Apply(existing)
	project.Pictures = nonNil(project.Pictures)
	project.Videos = nonNil(project.Videos)

	if err := s.repo.UpdateProject(ctx, project); err != nil {
		log.Error("failed to update project", sl.Err(err))

		return models.Project{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("project patched")

	return project, nil
}

// Delete удаляет проект, затем его файлы. Ошибки удаления файлов только логируются
func (s *ProjectService) Delete(ctx context.Context, id int64) error {
	const op = "project_service.Delete"

	log := s.log.With(
		slog.String("op", op),
		slog.Int64("id", id),
	)

	project, err := s.repo.GetProjectByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.DeleteProject(ctx, id); err != nil {
		log.Error("failed to delete project", sl.Err(err))

		return fmt.Errorf("%s: %w", op, err)
	}

	s.removeFiles(ctx, append(append([]string{}, project.Pictures...), project.Videos...))

	log.Info("project deleted")

	return nil
}

func (s *ProjectService) Get(ctx context.Context, id int64) (models.Project, error) {
	const op = "project_service.Get"

	project, err := s.repo.GetProjectByID(ctx, id)
	if err != nil {
		return models.Project{}, fmt.Errorf("%s: %w", op, err)
	}

	return project, nil
}

func (s *ProjectService) List(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error) {
	const op = "project_service.List"

	projects, err := s.repo.ListProjects(ctx, filter)
	if err != nil {
		s.log.Error("failed to list projects", slog.String("op", op), sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return projects, nil
}

func (s *ProjectService) ListCountries(ctx context.Context, year *int) ([]string, error) {
	const op = "project_service.ListCountries"

	countries, err := s.repo.ListCountries(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return countries, nil
}

func (s *ProjectService) ListYears(ctx context.Context, country string) ([]int, error) {
	const op = "project_service.ListYears"

	years, err := s.repo.ListYears(ctx, country)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return years, nil
}

// DeleteFile удаляет файл из хранилища, если на него не ссылается ни один проект
func (s *ProjectService) DeleteFile(ctx context.Context, name string) error {
	const op = "project_service.DeleteFile"

	log := s.log.With(
		slog.String("op", op),
		slog.String("name", name),
	)

	if err := storage.ValidateName(name); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	refs, err := s.repo.CountReferencing(ctx, []string{name})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if refs > 0 {
		log.Warn("refusing to delete referenced file", slog.Int("projects", refs))

		return fmt.Errorf("%s: %w", op, ErrFileInUse)
	}

	if err := s.fileStorage.Delete(ctx, name); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("file deleted")

	return nil
}

func (s *ProjectService) ensureExist(ctx context.Context, names []string) error {
	for _, name := range names {
		if err := storage.ValidateName(name); err != nil {
			return err
		}

		ok, err := s.fileStorage.Exists(ctx, name)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", storerr.ErrFileNotFound, name)
		}
	}

	return nil
}

func (s *ProjectService) fail(op, operation string, err error) (models.Project, error) {
	metrics.ProjectsIngested.WithLabelValues(operation, "error").Inc()

	return models.Project{}, fmt.Errorf("%s: %w", op, err)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}

	return s
}
