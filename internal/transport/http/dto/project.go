package dto

import (
	"project_gallery/internal/domain/models"
)

// GeoData явно заданное местоположение проекта. Координаты обязательны:
// частично заданное местоположение не принимается
type GeoData struct {
	Country   string   `json:"country" validate:"required"`
	Latitude  *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"required,min=-180,max=180"`
}

func (g *GeoData) ToDomain() *models.GeoLocation {
	if g == nil {
		return nil
	}

	geo := &models.GeoLocation{Country: g.Country}
	if g.Latitude != nil {
		geo.Latitude = *g.Latitude
	}
	if g.Longitude != nil {
		geo.Longitude = *g.Longitude
	}

	return geo
}

// ProjectDescriptor JSON часть multipart запроса (поле `json`).
// Год и местоположение выводятся из фотографий, если не заданы
type ProjectDescriptor struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description"`
	Year        *int     `json:"year,omitempty" validate:"omitempty,min=1800,max=3000"`
	GeoData     *GeoData `json:"geo_data,omitempty"`
}

// ProjectUpdateDescriptor JSON часть multipart запроса на обновление.
// Каждое поле опционально и меняется независимо от остальных
type ProjectUpdateDescriptor struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Description *string  `json:"description,omitempty"`
	Year        *int     `json:"year,omitempty" validate:"omitempty,min=1800,max=3000"`
	Country     *string  `json:"country,omitempty" validate:"omitempty,min=1"`
	Latitude    *float64 `json:"latitude,omitempty" validate:"omitempty,min=-90,max=90"`
	Longitude   *float64 `json:"longitude,omitempty" validate:"omitempty,min=-180,max=180"`
}

func (d ProjectUpdateDescriptor) ToPatch() models.ProjectPatch {
	return models.ProjectPatch{
		Name:        d.Name,
		Description: d.Description,
		Year:        d.Year,
		Country:     d.Country,
		Latitude:    d.Latitude,
		Longitude:   d.Longitude,
	}
}

// CreateProjectRequest создание проекта из заранее загруженных файлов
type CreateProjectRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description"`
	Pictures    []string `json:"pictures"`
	Videos      []string `json:"videos"`
	Year        *int     `json:"year,omitempty" validate:"omitempty,min=1800,max=3000"`
	GeoData     *GeoData `json:"geo_data,omitempty"`
}

// PatchProjectRequest частичное обновление, незаданные поля не меняются
type PatchProjectRequest struct {
	Name        *string   `json:"name,omitempty" validate:"omitempty,max=200"`
	Description *string   `json:"description,omitempty"`
	Year        *int      `json:"year,omitempty" validate:"omitempty,min=1800,max=3000"`
	Country     *string   `json:"country,omitempty" validate:"omitempty,min=1"`
	Latitude    *float64  `json:"latitude,omitempty" validate:"omitempty,min=-90,max=90"`
	Longitude   *float64  `json:"longitude,omitempty" validate:"omitempty,min=-180,max=180"`
	Pictures    *[]string `json:"pictures,omitempty"`
	Videos      *[]string `json:"videos,omitempty"`
}

func (r PatchProjectRequest) ToDomain() models.ProjectPatch {
	return models.ProjectPatch{
		Name:        r.Name,
		Description: r.Description,
		Year:        r.Year,
		Country:     r.Country,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Pictures:    r.Pictures,
		Videos:      r.Videos,
	}
}

// ProjectCreatedResponse ответ на создание/обновление проекта
type ProjectCreatedResponse struct {
	ID        int64    `json:"id"`
	Year      int      `json:"year"`
	Country   string   `json:"country"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Pictures  []string `json:"pictures"`
	Videos    []string `json:"videos"`
}

func NewProjectCreatedResponse(p models.Project) ProjectCreatedResponse {
	return ProjectCreatedResponse{
		ID:        p.ID,
		Year:      p.Year,
		Country:   p.Country,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Pictures:  p.Pictures,
		Videos:    p.Videos,
	}
}

type ProjectListQuery struct {
	Year    *int   `query:"year" validate:"omitempty,min=1800,max=3000"`
	Country string `query:"country"`
}

func (q ProjectListQuery) ToDomain() models.ProjectFilter {
	return models.ProjectFilter{Year: q.Year, Country: q.Country}
}
