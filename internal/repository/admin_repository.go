package repository

import (
	"context"
	"errors"
	"fmt"

	"project_gallery/internal/domain/models"
	"project_gallery/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ключ pg_advisory_xact_lock для регистрации первого администратора
const firstAdminLockKey int64 = 0x61646d696e

type AdminRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewAdminRepository(db *pgxpool.Pool) *AdminRepo {
	return &AdminRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *AdminRepo) SaveAdmin(ctx context.Context, admin models.Admin) (uuid.UUID, error) {
	const op = "repository.admin_repository.SaveAdmin"

	query, args, err := r.sb.Insert("admins").
		Columns(
			"name",
			"email",
			"password",
		).
		Values(
			admin.Name,
			admin.Email,
			admin.Password,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	var id uuid.UUID
	err = r.db.QueryRow(ctx, query, args...).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationErr {
			return uuid.Nil, fmt.Errorf("%s: %w", op, storage.ErrAdminExists)
		}
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (r *AdminRepo) AdminByEmail(ctx context.Context, email string) (models.Admin, error) {
	const op = "repository.admin_repository.AdminByEmail"

	return r.adminBy(ctx, op, sq.Eq{"email": email})
}

func (r *AdminRepo) AdminByID(ctx context.Context, id uuid.UUID) (models.Admin, error) {
	const op = "repository.admin_repository.AdminByID"

	return r.adminBy(ctx, op, sq.Eq{"id": id})
}

// SaveFirstAdmin сохраняет администратора, только если таблица пуста.
// Advisory lock сериализует параллельные регистрации первого администратора
func (r *AdminRepo) SaveFirstAdmin(ctx context.Context, admin models.Admin) (uuid.UUID, error) {
	const op = "repository.admin_repository.SaveFirstAdmin"

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, firstAdminLockKey); err != nil {
		return uuid.Nil, fmt.Errorf("%s: failed to acquire lock: %w", op, err)
	}

	query, args, err := r.sb.Insert("admins").
		Columns(
			"name",
			"email",
			"password",
		).
		Select(sq.Select().
			Column("?::text", admin.Name).
			Column("?::text", admin.Email).
			Column("?::bytea", admin.Password).
			Where("NOT EXISTS (SELECT 1 FROM admins)"),
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var id uuid.UUID
	err = tx.QueryRow(ctx, query, args...).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("%s: %w", op, storage.ErrAdminsRegistered)
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationErr {
			return uuid.Nil, fmt.Errorf("%s: %w", op, storage.ErrAdminExists)
		}
		return uuid.Nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("%s: failed to commit: %w", op, err)
	}

	return id, nil
}

func (r *AdminRepo) adminBy(ctx context.Context, op string, where sq.Eq) (models.Admin, error) {
	query, args, err := r.sb.Select("id", "name", "email", "password", "created_at").
		From("admins").
		Where(where).
		ToSql()
	if err != nil {
		return models.Admin{}, fmt.Errorf("%s: can't build sql: %w", op, err)
	}

	var admin models.Admin
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&admin.ID,
		&admin.Name,
		&admin.Email,
		&admin.Password,
		&admin.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Admin{}, fmt.Errorf("%s: %w", op, storage.ErrAdminNotFound)
		}
		return models.Admin{}, fmt.Errorf("%s: %w", op, err)
	}

	return admin, nil
}
