package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"project_gallery/internal/domain/models"
	"project_gallery/internal/storage"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"
)

const (
	visitorsTable      = "visitors"
	uniqueViolationErr = "23505"
)

type VisitorRepo struct {
	db *pgxpool.Pool
	sb sq.StatementBuilderType
}

func NewVisitorRepo(db *pgxpool.Pool) *VisitorRepo {
	return &VisitorRepo{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *VisitorRepo) SaveVisitor(ctx context.Context, visitor models.Visitor) error {
	const op = "repository.VisitorRepo.SaveVisitor"

	query, args, err := r.sb.Insert(visitorsTable).
		Columns("uuid", "time_out").
		Values(visitor.UUID, visitor.TimeOut).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationErr {
			return fmt.Errorf("%s: %w", op, storage.ErrVisitorExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// CountActive считает строки с данным токеном, не истекшие к моменту now
func (r *VisitorRepo) CountActive(ctx context.Context, token string, now time.Time) (int, error) {
	const op = "repository.VisitorRepo.CountActive"

	query, args, err := r.sb.Select("COUNT(*)").
		From(visitorsTable).
		Where(sq.Eq{"uuid": token}).
		Where(sq.Or{
			sq.Eq{"time_out": nil},
			sq.Gt{"time_out": now},
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

func (r *VisitorRepo) DeleteVisitor(ctx context.Context, token string) error {
	const op = "repository.VisitorRepo.DeleteVisitor"

	query, args, err := r.sb.Delete(visitorsTable).
		Where(sq.Eq{"uuid": token}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrVisitorNotFound)
	}

	return nil
}

// DeleteExpired удаляет визитеров с time_out <= now, бессрочные не трогает
func (r *VisitorRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const op = "repository.VisitorRepo.DeleteExpired"

	query, args, err := r.sb.Delete(visitorsTable).
		Where(sq.LtOrEq{"time_out": now}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return tag.RowsAffected(), nil
}
