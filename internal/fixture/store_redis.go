package fixture

import (
	"context"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"

	"traceguard/pkg/platform/sentinel"
)

// Redis key prefix for the per-account current token id.
const currentTokenKeyPrefix = "tg:token:"

// RedisTokenStore shares the current-token state across fixture instances.
// SET on login or password change atomically supersedes the previous id.
type RedisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func (s *RedisTokenStore) SetCurrent(ctx context.Context, email, tokenID string) error {
	key := currentTokenKeyPrefix + strings.ToLower(email)
	// The key lives as long as the account; token TTL is enforced by the
	// JWT expiry, not by Redis.
	return s.client.Set(ctx, key, tokenID, 0).Err()
}

func (s *RedisTokenStore) Current(ctx context.Context, email string) (string, error) {
	key := currentTokenKeyPrefix + strings.ToLower(email)
	id, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return id, nil
}
