package repository

import (
	"context"
	"errors"
	"fmt"

	"project_gallery/internal/domain/models"
	"project_gallery/internal/storage"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/lib/pq"
)

const projectsTable = "projects"

var projectColumns = []string{
	"id",
	"name",
	"description",
	"pictures",
	"videos",
	"year",
	"country",
	"latitude",
	"longitude",
}

type ProjectRepo struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

func NewProjectRepo(db *pgxpool.Pool) *ProjectRepo {
	return &ProjectRepo{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateProject создает проект и возвращает его ID
func (r *ProjectRepo) CreateProject(ctx context.Context, project models.Project) (int64, error) {
	const op = "repository.ProjectRepo.CreateProject"

	query, args, err := r.sb.Insert(projectsTable).
		Columns(
			"name",
			"description",
			"pictures",
			"videos",
			"year",
			"country",
			"latitude",
			"longitude",
		).
		Values(
			project.Name,
			project.Description,
			nonNil(project.Pictures),
			nonNil(project.Videos),
			project.Year,
			project.Country,
			project.Latitude,
			project.Longitude,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var id int64
	err = r.db.QueryRow(ctx, query, args...).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

// UpdateProject перезаписывает все поля проекта
func (r *ProjectRepo) UpdateProject(ctx context.Context, project models.Project) error {
	const op = "repository.ProjectRepo.UpdateProject"

	query, args, err := r.sb.Update(projectsTable).
		Set("name", project.Name).
		Set("description", project.Description).
		Set("pictures", nonNil(project.Pictures)).
		Set("videos", nonNil(project.Videos)).
		Set("year", project.Year).
		Set("country", project.Country).
		Set("latitude", project.Latitude).
		Set("longitude", project.Longitude).
		Where(squirrel.Eq{"id": project.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrProjectNotFound)
	}

	return nil
}

// DeleteProject удаляет проект по ID
func (r *ProjectRepo) DeleteProject(ctx context.Context, id int64) error {
	const op = "repository.ProjectRepo.DeleteProject"

	query, args, err := r.sb.Delete(projectsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrProjectNotFound)
	}

	return nil
}

// GetProjectByID возвращает проект по ID
func (r *ProjectRepo) GetProjectByID(ctx context.Context, id int64) (models.Project, error) {
	const op = "repository.ProjectRepo.GetProjectByID"

	query, args, err := r.sb.Select(projectColumns...).
		From(projectsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.Project{}, fmt.Errorf("%s: %w", op, err)
	}

	project, err := scanProject(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Project{}, fmt.Errorf("%s: %w", op, storage.ErrProjectNotFound)
		}
		return models.Project{}, fmt.Errorf("%s: %w", op, err)
	}

	return project, nil
}

// ListProjects возвращает проекты, отфильтрованные по году и стране
func (r *ProjectRepo) ListProjects(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error) {
	const op = "repository.ProjectRepo.ListProjects"

	queryBuilder := r.sb.Select(projectColumns...).From(projectsTable)

	if filter.Year != nil {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"year": *filter.Year})
	}
	if filter.Country != "" {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"country": filter.Country})
	}

	query, args, err := queryBuilder.OrderBy("year DESC", "id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	projects := make([]models.Project, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return projects, nil
}

// ListCountries возвращает уникальные страны, опционально за указанный год
func (r *ProjectRepo) ListCountries(ctx context.Context, year *int) ([]string, error) {
	const op = "repository.ProjectRepo.ListCountries"

	queryBuilder := r.sb.Select("country").Distinct().From(projectsTable)
	if year != nil {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"year": *year})
	}

	query, args, err := queryBuilder.OrderBy("country").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	countries := make([]string, 0)
	for rows.Next() {
		var country string
		if err := rows.Scan(&country); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		countries = append(countries, country)
	}

	return countries, rows.Err()
}

// ListYears возвращает уникальные годы по убыванию, опционально для страны
func (r *ProjectRepo) ListYears(ctx context.Context, country string) ([]int, error) {
	const op = "repository.ProjectRepo.ListYears"

	queryBuilder := r.sb.Select("year").Distinct().From(projectsTable)
	if country != "" {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"country": country})
	}

	query, args, err := queryBuilder.OrderBy("year DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	years := make([]int, 0)
	for rows.Next() {
		var year int
		if err := rows.Scan(&year); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		years = append(years, year)
	}

	return years, rows.Err()
}

// CountReferencing считает проекты, ссылающиеся на любой из файлов
func (r *ProjectRepo) CountReferencing(ctx context.Context, names []string) (int, error) {
	const op = "repository.ProjectRepo.CountReferencing"

	if len(names) == 0 {
		return 0, nil
	}

	query, args, err := r.sb.Select("COUNT(*)").
		From(projectsTable).
		Where(squirrel.Or{
			squirrel.Expr("pictures && ?", pq.Array(names)),
			squirrel.Expr("videos && ?", pq.Array(names)),
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var count int
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}

func scanProject(row pgx.Row) (models.Project, error) {
	var project models.Project
	err := row.Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.Pictures,
		&project.Videos,
		&project.Year,
		&project.Country,
		&project.Latitude,
		&project.Longitude,
	)

	return project, err
}

// text[] NOT NULL: nil срез pgx отправит как NULL
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
