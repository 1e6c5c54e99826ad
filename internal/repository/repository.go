package repository

import (
	"github.com/jackc/pgx/v4/pgxpool"
)

// Repository собирает postgres-репозитории над общим пулом
type Repository struct {
	Projects ProjectRepository
	Visitors VisitorRepository
	Admins   AdminRepository
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{
		Projects: NewProjectRepo(db),
		Visitors: NewVisitorRepo(db),
		Admins:   NewAdminRepository(db),
	}
}
