package services

import (
	"context"
	"fmt"
	"log/slog"

	"project_gallery/internal/domain/models"
	"project_gallery/internal/lib/exifinfo"
	"project_gallery/internal/lib/logger/sl"
)

var ErrMetadataParse = exifinfo.ErrMetadataParse

type Geocoder interface {
	Country(ctx context.Context, latitude, longitude float64) (string, error)
}

type FileReader interface {
	Read(ctx context.Context, name string) ([]byte, error)
}

// MetadataService извлекает время съемки и местоположение из изображений
type MetadataService struct {
	log      *slog.Logger
	geocoder Geocoder
	files    FileReader
}

func NewMetadataService(log *slog.Logger, geocoder Geocoder, files FileReader) *MetadataService {
	return &MetadataService{
		log:      log,
		geocoder: geocoder,
		files:    files,
	}
}

// Extract разбирает EXIF изображения. Геокодер вызывается только если в
// изображении есть GPS координаты.
func (s *MetadataService) Extract(ctx context.Context, data []byte) (models.PictureMetadata, error) {
	const op = "metadata_service.Extract"

	log := s.log.With(slog.String("op", op))

	info, err := exifinfo.Parse(data)
	if err != nil {
		log.Warn("failed to parse picture metadata", sl.Err(err))

		return models.PictureMetadata{}, fmt.Errorf("%s: %w", op, err)
	}

	meta := models.PictureMetadata{TakenAt: info.TakenAt}

	if info.GPS == nil {
		return meta, nil
	}

	country, err := s.geocoder.Country(ctx, info.GPS.Latitude, info.GPS.Longitude)
	if err != nil {
		return models.PictureMetadata{}, fmt.Errorf("%s: %w", op, err)
	}

	meta.Geo = &models.GeoLocation{
		Country:   country,
		Latitude:  info.GPS.Latitude,
		Longitude: info.GPS.Longitude,
	}

	return meta, nil
}

// ExtractStored читает уже загруженный файл и передает его в Extract
func (s *MetadataService) ExtractStored(ctx context.Context, name string) (models.PictureMetadata, error) {
	const op = "metadata_service.ExtractStored"

	data, err := s.files.Read(ctx, name)
	if err != nil {
		s.log.Error("failed to read stored file",
			slog.String("op", op),
			slog.String("name", name),
			sl.Err(err),
		)

		return models.PictureMetadata{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.Extract(ctx, data)
}
