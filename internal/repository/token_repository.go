package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	redisapp "project_gallery/internal/storage/redis"

	"github.com/redis/go-redis/v9"
)

// RedisTokenRepo хранит выданные refresh-токены администраторов
type RedisTokenRepo struct {
	Client *redisapp.Client
}

func NewRedisTokenRepo(client *redisapp.Client) *RedisTokenRepo {
	return &RedisTokenRepo{Client: client}
}

func (r *RedisTokenRepo) SaveRefreshToken(ctx context.Context, adminID, token string, exp time.Duration) error {
	const op = "repository.RedisTokenRepo.SaveRefreshToken"

	if err := r.Client.Set(ctx, refreshTokenKey(adminID, token), "1", exp).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisTokenRepo) GetRefreshToken(ctx context.Context, adminID, token string) (bool, error) {
	const op = "repository.RedisTokenRepo.GetRefreshToken"

	val, err := r.Client.Get(ctx, refreshTokenKey(adminID, token)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return val == "1", nil
}

func (r *RedisTokenRepo) DeleteRefreshToken(ctx context.Context, adminID, token string) error {
	const op = "repository.RedisTokenRepo.DeleteRefreshToken"

	if err := r.Client.Del(ctx, refreshTokenKey(adminID, token)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisTokenRepo) DeleteAllAdminTokens(ctx context.Context, adminID string) error {
	const op = "repository.RedisTokenRepo.DeleteAllAdminTokens"

	keys, err := r.Client.Keys(ctx, refreshTokenKey(adminID, "*")).Result()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if len(keys) == 0 {
		return nil
	}

	if err := r.Client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func refreshTokenKey(adminID, token string) string {
	return "refresh:" + adminID + ":" + token
}
