package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"project_gallery/internal/domain/models"
	"project_gallery/internal/lib/filetype"
	"project_gallery/internal/lib/logger/sl"
	"project_gallery/internal/transport/http/dto"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DescriptorField имя multipart поля с JSON описанием проекта
const DescriptorField = "json"

const maxLabelLen = 64

var (
	ErrNoDescriptor        = errors.New("no json field supplied, use `json` as field name")
	ErrDuplicateDescriptor = errors.New("json field supplied more than once")
	ErrNoFieldName         = errors.New("no field name supplied")
	ErrInvalidDescriptor   = errors.New("invalid json descriptor")
	ErrInvalidImageFormat  = filetype.ErrInvalidImageFormat
	ErrInvalidVideoFormat  = filetype.ErrInvalidVideoFormat
)

// splitParts отделяет поле `json` от бинарных частей и декодирует его в descriptor
func splitParts(parts []models.UploadedFile, descriptor any) ([]models.UploadedFile, error) {
	files := make([]models.UploadedFile, 0, len(parts))
	seen := false

	for _, part := range parts {
		switch part.FieldName {
		case "":
			return nil, ErrNoFieldName
		case DescriptorField:
			if seen {
				return nil, ErrDuplicateDescriptor
			}
			seen = true

			if err := json.Unmarshal(part.Data, descriptor); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
			}
			if err := dto.Validate(descriptor); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
			}
		default:
			files = append(files, part)
		}
	}

	if !seen {
		return nil, ErrNoDescriptor
	}

	return files, nil
}

// processPictures параллельно проверяет сигнатуру, извлекает метаданные и
// генерирует имя для каждого файла. Порядок результата совпадает с порядком частей.
func (s *ProjectService) processPictures(ctx context.Context, files []models.UploadedFile) ([]models.StoredFile, error) {
	out := make([]models.StoredFile, len(files))

	g, gctx := errgroup.WithContext(ctx)
	for i, file := range files {
		g.Go(func() error {
			format, err := filetype.DetectImage(file.Data)
			if err != nil {
				return fmt.Errorf("field %q: %w", file.FieldName, err)
			}

			meta, err := s.metadata.Extract(gctx, file.Data)
			if err != nil {
				return fmt.Errorf("field %q: %w", file.FieldName, err)
			}

			out[i] = models.StoredFile{
				Name:     generateName(file.FieldName, format),
				Data:     file.Data,
				Metadata: meta,
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

func (s *ProjectService) storedMetadata(ctx context.Context, names []string) ([]models.PictureMetadata, error) {
	out := make([]models.PictureMetadata, len(names))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			meta, err := s.metadata.ExtractStored(gctx, name)
			if err != nil {
				return fmt.Errorf("file %q: %w", name, err)
			}
			out[i] = meta

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}

// writeFiles параллельно сохраняет файлы. При любой ошибке уже записанные файлы удаляются
func (s *ProjectService) writeFiles(ctx context.Context, files []models.StoredFile) ([]string, error) {
	names := make([]string, len(files))
	written := make([]bool, len(files))

	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, file := range files {
		names[i] = file.Name

		g.Go(func() error {
			if err := s.fileStorage.Save(gctx, file.Name, file.Data); err != nil {
				return fmt.Errorf("save %q: %w", file.Name, err)
			}

			mu.Lock()
			written[i] = true
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var partial []string
		for i, ok := range written {
			if ok {
				partial = append(partial, names[i])
			}
		}
		s.removeFiles(ctx, partial)

		return nil, err
	}

	return names, nil
}

// removeFiles удаляет файлы, не прерываясь на ошибках. Запрос мог быть отменен,
// поэтому удаление выполняется с контекстом без отмены.
func (s *ProjectService) removeFiles(ctx context.Context, names []string) {
	if len(names) == 0 {
		return
	}

	ctx = context.WithoutCancel(ctx)

	for _, name := range names {
		if err := s.fileStorage.Delete(ctx, name); err != nil {
			s.log.Warn("failed to delete file",
				slog.String("name", name),
				sl.Err(err),
			)
		}
	}
}

// UploadFiles сохраняет файлы одного вида без привязки к проекту и возвращает их имена
func (s *ProjectService) UploadFiles(ctx context.Context, kind models.MediaKind, files []models.UploadedFile) ([]string, error) {
	const op = "project_service.UploadFiles"

	log := s.log.With(
		slog.String("op", op),
		slog.String("kind", string(kind)),
		slog.Int("files", len(files)),
	)

	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNoFiles)
	}

	detect := filetype.DetectImage
	if kind == models.MediaKindVideo {
		detect = filetype.DetectVideo
	}

	stored := make([]models.StoredFile, len(files))
	for i, file := range files {
		format, err := detect(file.Data)
		if err != nil {
			log.Warn("rejected upload", slog.String("field", file.FieldName), sl.Err(err))

			return nil, fmt.Errorf("%s: %w", op, err)
		}

		stored[i] = models.StoredFile{
			Name: generateName(file.Label(), format),
			Data: file.Data,
		}
	}

	names, err := s.writeFiles(ctx, stored)
	if err != nil {
		log.Error("failed to save files", sl.Err(err))

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("files uploaded")

	return names, nil
}

func metadataOf(files []models.StoredFile) []models.PictureMetadata {
	meta := make([]models.PictureMetadata, len(files))
	for i, f := range files {
		meta[i] = f.Metadata
	}

	return meta
}

// resolveYear: явное значение, иначе год первой фотографии с датой съемки
func resolveYear(explicit *int, meta []models.PictureMetadata) (int, error) {
	if explicit != nil {
		return *explicit, nil
	}

	for _, m := range meta {
		if m.TakenAt != nil {
			return m.TakenAt.Year(), nil
		}
	}

	return 0, &MissingInformationError{Field: "year"}
}

// resolveGeo: явное значение, иначе первое найденное в фотографиях
func resolveGeo(explicit *models.GeoLocation, meta []models.PictureMetadata) (models.GeoLocation, error) {
	if explicit != nil {
		return *explicit, nil
	}

	for _, m := range meta {
		if m.Geo != nil {
			return *m.Geo, nil
		}
	}

	return models.GeoLocation{}, &MissingInformationError{Field: "geo data"}
}

// generateName возвращает "<uuid>_<label>.<ext>"
func generateName(label string, format filetype.Format) string {
	return fmt.Sprintf("%s_%s.%s", uuid.NewString(), sanitizeLabel(label), format.Ext())
}

func sanitizeLabel(label string) string {
	label = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, label)

	if len(label) > maxLabelLen {
		label = label[:maxLabelLen]
	}
	if label == "" {
		label = "file"
	}

	return label
}
