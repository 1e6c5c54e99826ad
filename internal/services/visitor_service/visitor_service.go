package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"project_gallery/internal/domain/models"
	"project_gallery/internal/lib/logger/sl"
	"project_gallery/internal/repository"

	"github.com/google/uuid"
)

var ErrInvalidValidity = errors.New("validity must not be negative")

// VisitorService выдает и проверяет ссылки доступа для посетителей
type VisitorService struct {
	log  *slog.Logger
	repo repository.VisitorRepository
	now  func() time.Time
}

func NewVisitorService(log *slog.Logger, repo repository.VisitorRepository) *VisitorService {
	return &VisitorService{
		log:  log,
		repo: repo,
		now:  time.Now,
	}
}

// WithClock подменяет источник времени
func (s *VisitorService) WithClock(now func() time.Time) *VisitorService {
	s.now = now
	return s
}

// Issue создает новый токен. validFor == nil - токен бессрочный
func (s *VisitorService) Issue(ctx context.Context, validFor *time.Duration) (models.Visitor, error) {
	const op = "visitor_service.Issue"

	log := s.log.With(slog.String("op", op))

	if validFor != nil && *validFor < 0 {
		return models.Visitor{}, fmt.Errorf("%s: %w", op, ErrInvalidValidity)
	}

	visitor := models.Visitor{UUID: uuid.NewString()}
	if validFor != nil {
		timeOut := s.now().UTC().Add(*validFor)
		visitor.TimeOut = &timeOut
	}

	if err := s.repo.SaveVisitor(ctx, visitor); err != nil {
		log.Error("failed to save visitor", sl.Err(err))

		return models.Visitor{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("visitor issued", slog.Any("valid_till", visitor.TimeOut))

	return visitor, nil
}

// Validate возвращает true только если найдена ровно одна действующая запись.
// Несколько записей с одним токеном считаются нарушением целостности и не дают доступа.
func (s *VisitorService) Validate(ctx context.Context, token string) (bool, error) {
	const op = "visitor_service.Validate"

	if _, err := uuid.Parse(token); err != nil {
		return false, nil
	}

	count, err := s.repo.CountActive(ctx, token, s.now().UTC())
	if err != nil {
		s.log.Error("failed to count visitors", slog.String("op", op), sl.Err(err))

		return false, fmt.Errorf("%s: %w", op, err)
	}

	if count > 1 {
		s.log.Warn("more than one active credential for token",
			slog.String("op", op),
			slog.Int("count", count),
		)
	}

	return count == 1, nil
}

func (s *VisitorService) Revoke(ctx context.Context, token string) error {
	const op = "visitor_service.Revoke"

	if err := s.repo.DeleteVisitor(ctx, token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("visitor revoked", slog.String("op", op))

	return nil
}
