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
	"project_gallery/internal/storage"
	"project_gallery/internal/transport/http/dto"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminExists        = errors.New("admin already exists")
	ErrRegistrationClosed = errors.New("registration requires an admin token")
)

type AdminService struct {
	log        *slog.Logger
	admins     repository.AdminRepository
	tokens     repository.TokenRepository
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewAdminService secret создается один раз при старте и используется для всех токенов процесса
func NewAdminService(
	log *slog.Logger,
	admins repository.AdminRepository,
	tokens repository.TokenRepository,
	secret []byte,
	accessTTL, refreshTTL time.Duration,
) *AdminService {
	return &AdminService{
		log:        log,
		admins:     admins,
		tokens:     tokens,
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Register создает администратора. Первый администратор регистрируется свободно,
// следующие только по токену существующего (authorized).
func (s *AdminService) Register(ctx context.Context, input dto.AdminRegisterInput, authorized bool) (models.Admin, error) {
	const op = "admin_service.Register"

	log := s.log.With(
		slog.String("op", op),
		slog.String("email", input.Email),
	)

	log.Info("register admin")

	passHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))

		return models.Admin{}, fmt.Errorf("%s: %w", op, err)
	}

	admin := input.ToDomain(passHash)

	// без токена администратора сохраняется только первый, проверка и вставка атомарны
	save := s.admins.SaveAdmin
	if !authorized {
		save = s.admins.SaveFirstAdmin
	}

	id, err := save(ctx, admin)
	if err != nil {
		if errors.Is(err, storage.ErrAdminsRegistered) {
			log.Warn("registration without admin token refused")

			return models.Admin{}, fmt.Errorf("%s: %w", op, ErrRegistrationClosed)
		}

		if errors.Is(err, storage.ErrAdminExists) {
			log.Warn("admin already exists", sl.Err(err))

			return models.Admin{}, fmt.Errorf("%s: %w", op, ErrAdminExists)
		}

		log.Error("failed to save admin", sl.Err(err))

		return models.Admin{}, fmt.Errorf("%s: %w", op, err)
	}
	admin.ID = id

	log.Info("admin registered")

	return admin, nil
}

func (s *AdminService) Login(ctx context.Context, email, password string) (models.TokenPair, error) {
	const op = "admin_service.Login"

	log := s.log.With(
		slog.String("op", op),
		slog.String("email", email),
	)

	log.Info("attempting to login admin")

	admin, err := s.admins.AdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrAdminNotFound) {
			log.Warn("admin not found", sl.Err(err))

			return models.TokenPair{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		log.Error("failed to get admin", sl.Err(err))

		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(admin.Password, []byte(password)); err != nil {
		log.Info("invalid credentials", sl.Err(err))

		return models.TokenPair{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	pair, err := s.generateTokens(ctx, admin)
	if err != nil {
		log.Error("failed to generate tokens", sl.Err(err))

		return models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("admin logged in successfully")

	return pair, nil
}
