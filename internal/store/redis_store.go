package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/danaam/danaam-go/domain"
)

// RedisStore keeps the credential set in a Redis hash under a single key.
// It exists for headless deployments (CI agents, schedulers) where several
// processes share one service account session.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a RedisStore writing under the given key.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

// Load implements domain.TokenStore. An absent key yields an empty session.
func (s *RedisStore) Load(ctx context.Context) (*domain.Session, error) {
	kv, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	return sessionFromMap(kv), nil
}

// Save implements domain.TokenStore. The hash is replaced in one
// transaction so concurrent readers never see mixed generations of fields.
func (s *RedisStore) Save(ctx context.Context, session *domain.Session) error {
	kv := sessionToMap(session)
	fields := make(map[string]interface{}, len(kv))
	for k, v := range kv {
		fields[k] = v
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		pipe.HSet(ctx, s.key, fields)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

// Clear implements domain.TokenStore.
func (s *RedisStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

var _ domain.TokenStore = (*RedisStore)(nil)
