package models

// Project представляет одну запись галереи: набор фото/видео, место и год
type Project struct {
	ID          int64    `json:"id" db:"id"`
	Name        string   `json:"name" db:"name"`
	Description string   `json:"description" db:"description"`
	Pictures    []string `json:"pictures" db:"pictures"` // имена файлов в хранилище, порядок сохраняется
	Videos      []string `json:"videos" db:"videos"`
	Year        int      `json:"year" db:"year"`
	Country     string   `json:"country" db:"country"`
	Latitude    float64  `json:"latitude" db:"latitude"`
	Longitude   float64  `json:"longitude" db:"longitude"`
}

// ProjectPatch частичное обновление проекта. nil означает "оставить как есть"
type ProjectPatch struct {
	Name        *string
	Description *string
	Year        *int
	Country     *string
	Latitude    *float64
	Longitude   *float64
	Pictures    *[]string
	Videos      *[]string
}

// Apply накладывает заданные поля на копию проекта
func (p ProjectPatch) Apply(project Project) Project {
	if p.Name != nil {
		project.Name = *p.Name
	}
	if p.Description != nil {
		project.Description = *p.Description
	}
	if p.Year != nil {
		project.Year = *p.Year
	}
	if p.Country != nil {
		project.Country = *p.Country
	}
	if p.Latitude != nil {
		project.Latitude = *p.Latitude
	}
	if p.Longitude != nil {
		project.Longitude = *p.Longitude
	}
	if p.Pictures != nil {
		project.Pictures = *p.Pictures
	}
	if p.Videos != nil {
		project.Videos = *p.Videos
	}

	return project
}

// ProjectFilter фильтр для выборки проектов, пустые поля не применяются
type ProjectFilter struct {
	Year    *int
	Country string
}
