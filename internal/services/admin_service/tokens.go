package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"project_gallery/internal/domain/models"
	"project_gallery/internal/lib/jwt"
	"project_gallery/internal/lib/logger/sl"

	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Secret ключ подписи, тот же что проверяет middleware админских маршрутов
func (s *AdminService) Secret() []byte {
	return s.secret
}

// IsAdminToken true, если токен подписан этим процессом и не истек
func (s *AdminService) IsAdminToken(token string) bool {
	_, err := jwt.ParseToken(token, s.secret)
	return err == nil
}

func (s *AdminService) generateTokens(ctx context.Context, admin models.Admin) (models.TokenPair, error) {
	accessToken, err := jwt.NewToken(admin, s.secret, s.accessTTL)
	if err != nil {
		return models.TokenPair{}, err
	}

	refreshToken, err := jwt.NewToken(admin, s.secret, s.refreshTTL)
	if err != nil {
		return models.TokenPair{}, err
	}

	if err := s.tokens.SaveRefreshToken(ctx, admin.ID.String(), refreshToken, s.refreshTTL); err != nil {
		return models.TokenPair{}, err
	}

	return models.TokenPair{
		AdminID:      admin.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh обменивает refresh токен на новую пару. Старый токен удаляется из хранилища
func (s *AdminService) Refresh(ctx context.Context, adminID uuid.UUID, refreshToken string) (models.TokenPair, error) {
	const op = "admin_service.Refresh"

	log := s.log.With(
		slog.String("op", op),
		slog.String("admin_id", adminID.String()),
	)

	claims, err := jwt.ParseToken(refreshToken, s.secret)
	if err != nil {
		log.Warn("refresh token rejected", sl.Err(err))

		return models.TokenPair{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	if claims.AdminID != adminID {
		log.Warn("refresh token issued to another admin")

		return models.TokenPair{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	exists, err := s.tokens.GetRefreshToken(ctx, adminID.String(), refreshToken)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		log.Warn("refresh token not in storage")

		return models.TokenPair{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if err := s.tokens.DeleteRefreshToken(ctx, adminID.String(), refreshToken); err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	pair, err := s.generateTokens(ctx, models.Admin{ID: claims.AdminID, Email: claims.Email})
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	return pair, nil
}

// Logout отзывает все refresh токены администратора
func (s *AdminService) Logout(ctx context.Context, adminID uuid.UUID) error {
	const op = "admin_service.Logout"

	if err := s.tokens.DeleteAllAdminTokens(ctx, adminID.String()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
