package user

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ayazaki/hakoba/internal/platform/apperr"
	"github.com/ayazaki/hakoba/internal/platform/constants"
)

// RedisSessionStore keeps refresh sessions in Redis so logout and expiry are
// instant and survive neither restarts nor failovers — a lost session only
// forces a re-login.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(token string) string {
	return constants.RedisPrefixSession + token
}

func (store *RedisSessionStore) Save(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	if err := store.client.Set(ctx, sessionKey(token), userID, ttl).Err(); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (store *RedisSessionStore) Get(ctx context.Context, token string) (int64, error) {
	userID, err := store.client.Get(ctx, sessionKey(token)).Int64()
	if err == redis.Nil {
		return 0, apperr.Unauthorized("Session expired or revoked")
	}
	if err != nil {
		return 0, apperr.Internal(err)
	}
	return userID, nil
}

func (store *RedisSessionStore) Delete(ctx context.Context, token string) error {
	if err := store.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return apperr.Internal(err)
	}
	return nil
}
