package jwt

import (
	"errors"
	"fmt"
	"time"

	"project_gallery/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidTokenClaims = errors.New("invalid token claims")
)

// Claims данные администратора, зашитые в токен
type Claims struct {
	AdminID uuid.UUID
	Email   string
}

// NewToken подписывает HS256 токен секретом процесса. jti делает каждый токен уникальным
func NewToken(admin models.Admin, secret []byte, duration time.Duration) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":   admin.ID.String(),
		"email": admin.Email,
		"admin": true,
		"jti":   uuid.NewString(),
		"iat":   now.Unix(),
		"exp":   now.Add(duration).Unix(),
	})

	return token.SignedString(secret)
}

// ParseToken проверяет подпись и срок действия
func ParseToken(tokenString string, secret []byte) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidTokenClaims
	}

	return ClaimsFromMap(mc)
}

// ClaimsFromMap достает Claims из уже проверенного токена (echo-jwt кладет его в контекст)
func ClaimsFromMap(mc jwt.MapClaims) (Claims, error) {
	if isAdmin, _ := mc["admin"].(bool); !isAdmin {
		return Claims{}, ErrInvalidTokenClaims
	}

	uid, _ := mc["uid"].(string)
	id, err := uuid.Parse(uid)
	if err != nil {
		return Claims{}, ErrInvalidTokenClaims
	}

	email, _ := mc["email"].(string)

	return Claims{AdminID: id, Email: email}, nil
}
